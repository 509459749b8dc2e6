package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rgalloway/tally/internal/auth"
	"github.com/rgalloway/tally/internal/store"
)

type AuthHandler struct {
	users    *store.UserStore
	profiles *store.ProfileStore
	sessions *store.SessionStore
	tokens   *auth.Tokens
	logger   *slog.Logger
}

func NewAuthHandler(users *store.UserStore, profiles *store.ProfileStore, sessions *store.SessionStore, tokens *auth.Tokens, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		profiles: profiles,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user, err := h.users.Create(req.Email, req.Name, string(hash))
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if _, err := h.profiles.Create(user.ID, req.Name); err != nil {
		h.logger.Error("create profile", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.issue(w, user.ID, user.Email, user.Name)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.users.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.issue(w, user.ID, user.Email, user.Name)
}

// Logout handles POST /api/auth/logout. Revokes the presented token's
// session so the JWT dies before its expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenID := auth.TokenID(r.Context())
	if err := h.sessions.DeleteByTokenID(tokenID); err != nil {
		h.logger.Error("revoke session", "error", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) issue(w http.ResponseWriter, userID int64, email, name string) {
	token, tokenID, expiresAt, err := h.tokens.Issue(userID)
	if err != nil {
		h.logger.Error("issue token", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	if _, err := h.sessions.Create(tokenID, userID, expiresAt); err != nil {
		h.logger.Error("create session", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, UserID: userID, Email: email, Name: name})
}
