package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rgalloway/tally/internal/auth"
	"github.com/rgalloway/tally/internal/model"
	"github.com/rgalloway/tally/internal/store"
)

// deleteConfirmation must be echoed back verbatim before an account is
// destroyed.
const deleteConfirmation = "DELETE_MY_ACCOUNT"

type AccountHandler struct {
	users        *store.UserStore
	profiles     *store.ProfileStore
	habits       *store.HabitStore
	completions  *store.CompletionStore
	achievements *store.AchievementStore
	emailLogs    *store.EmailLogStore
	logger       *slog.Logger
}

func NewAccountHandler(users *store.UserStore, profiles *store.ProfileStore, habits *store.HabitStore, completions *store.CompletionStore, achievements *store.AchievementStore, emailLogs *store.EmailLogStore, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		users:        users,
		profiles:     profiles,
		habits:       habits,
		completions:  completions,
		achievements: achievements,
		emailLogs:    emailLogs,
		logger:       logger,
	}
}

type accountExport struct {
	ExportDate   time.Time           `json:"export_date"`
	UserID       int64               `json:"user_id"`
	Profile      *model.Profile      `json:"profile"`
	Habits       []model.Habit       `json:"habits"`
	Completions  []model.Completion  `json:"completions"`
	Achievements []model.Achievement `json:"achievements"`
	EmailLogs    []model.EmailLog    `json:"email_logs"`
}

// Export handles POST /api/account/export. Returns everything we store
// about the caller as a downloadable JSON document.
func (h *AccountHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	export := accountExport{
		ExportDate: time.Now().UTC(),
		UserID:     userID,
	}

	var err error
	if export.Profile, err = h.profiles.GetByUserID(userID); err != nil {
		h.exportError(w, "profile", err)
		return
	}
	if export.Habits, err = h.habits.ListByUser(userID); err != nil {
		h.exportError(w, "habits", err)
		return
	}
	if export.Completions, err = h.completions.ListByUser(userID); err != nil {
		h.exportError(w, "completions", err)
		return
	}
	if export.Achievements, err = h.achievements.ListByUser(userID); err != nil {
		h.exportError(w, "achievements", err)
		return
	}
	if export.EmailLogs, err = h.emailLogs.ListByUser(userID); err != nil {
		h.exportError(w, "email logs", err)
		return
	}

	filename := fmt.Sprintf("tally-export-%s.json", export.ExportDate.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(export); err != nil {
		h.logger.Error("encode export", "error", err)
	}
}

func (h *AccountHandler) exportError(w http.ResponseWriter, what string, err error) {
	h.logger.Error("account export", "part", what, "error", err)
	writeError(w, http.StatusInternalServerError, "failed to export account")
}

type deleteAccountRequest struct {
	Confirm string `json:"confirm"`
}

// Delete handles DELETE /api/account. Foreign keys cascade from the user
// row, so one delete removes habits, completions, sessions and the rest.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req deleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Confirm != deleteConfirmation {
		writeError(w, http.StatusBadRequest, "Confirmation required")
		return
	}

	if err := h.users.Delete(userID); err != nil {
		h.logger.Error("delete account", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	h.logger.Info("account deleted", "user_id", userID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "account deleted"})
}
