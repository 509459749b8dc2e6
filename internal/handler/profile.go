package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/rgalloway/tally/internal/auth"
	"github.com/rgalloway/tally/internal/store"
)

var reminderTimeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type ProfileHandler struct {
	profiles *store.ProfileStore
	logger   *slog.Logger
}

func NewProfileHandler(profiles *store.ProfileStore, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// Get handles GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	profile, err := h.profiles.GetByUserID(userID)
	if err != nil {
		h.logger.Error("get profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	FullName           *string `json:"full_name"`
	ReminderEnabled    *bool   `json:"reminder_enabled"`
	ReminderTime       *string `json:"reminder_time"`
	ReminderThreshold  *int    `json:"reminder_threshold"`
	CelebrationEnabled *bool   `json:"celebration_enabled"`
	Timezone           *string `json:"timezone"`
	WeekStart          *int    `json:"week_start"`
}

// Update handles PUT /api/profile. Unknown fields are rejected so a typoed
// setting name fails loudly instead of being silently dropped.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req updateProfileRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.ReminderTime != nil && !reminderTimeRe.MatchString(*req.ReminderTime) {
		writeError(w, http.StatusBadRequest, "reminder_time must be HH:MM")
		return
	}
	if req.ReminderThreshold != nil && (*req.ReminderThreshold < 1 || *req.ReminderThreshold > 100) {
		writeError(w, http.StatusBadRequest, "reminder_threshold must be 1-100")
		return
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			writeError(w, http.StatusBadRequest, "unknown timezone")
			return
		}
	}
	if req.WeekStart != nil && (*req.WeekStart < 0 || *req.WeekStart > 6) {
		writeError(w, http.StatusBadRequest, "week_start must be 0-6")
		return
	}

	profile, err := h.profiles.Update(userID, store.ProfileUpdate{
		FullName:           req.FullName,
		ReminderEnabled:    req.ReminderEnabled,
		ReminderTime:       req.ReminderTime,
		ReminderThreshold:  req.ReminderThreshold,
		CelebrationEnabled: req.CelebrationEnabled,
		Timezone:           req.Timezone,
		WeekStart:          req.WeekStart,
	})
	if err != nil {
		h.logger.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
