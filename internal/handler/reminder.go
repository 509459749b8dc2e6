package handler

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rgalloway/tally/internal/auth"
	"github.com/rgalloway/tally/internal/calendar"
	"github.com/rgalloway/tally/internal/email"
	"github.com/rgalloway/tally/internal/model"
	"github.com/rgalloway/tally/internal/reminder"
	"github.com/rgalloway/tally/internal/store"
)

type ReminderHandler struct {
	users       *store.UserStore
	profiles    *store.ProfileStore
	completions *store.CompletionStore
	emailLogs   *store.EmailLogStore
	mail        *email.Client
	runner      *reminder.Runner
	cronSecret  string
	logger      *slog.Logger
	now         func() time.Time
}

func NewReminderHandler(users *store.UserStore, profiles *store.ProfileStore, completions *store.CompletionStore, emailLogs *store.EmailLogStore, mail *email.Client, runner *reminder.Runner, cronSecret string, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{
		users:       users,
		profiles:    profiles,
		completions: completions,
		emailLogs:   emailLogs,
		mail:        mail,
		runner:      runner,
		cronSecret:  cronSecret,
		logger:      logger,
		now:         time.Now,
	}
}

type checkResponse struct {
	UserID          int64  `json:"user_id"`
	Today           string `json:"today"`
	CompletionRate  int    `json:"completion_rate"`
	ShouldRemind    bool   `json:"should_remind"`
	ShouldCelebrate bool   `json:"should_celebrate"`
	Message         string `json:"message"`
}

// Check handles POST /api/reminders/check. It runs the reminder decision
// for the caller right now, without sending anything or touching the
// email log.
func (h *ReminderHandler) Check(w http.ResponseWriter, r *http.Request) {
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

	today := calendar.Today(h.now().UTC())
	completed, total, err := h.completions.DailyCounts(userID, today)
	if err != nil {
		h.logger.Error("daily counts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load completions")
		return
	}

	rate := 0
	if total > 0 {
		rate = (completed*100 + total/2) / total
	}
	result := reminder.Check(completed, total, rate, profile.ReminderThreshold)

	writeJSON(w, http.StatusOK, checkResponse{
		UserID:          userID,
		Today:           today,
		CompletionRate:  rate,
		ShouldRemind:    result.ShouldRemind,
		ShouldCelebrate: result.ShouldCelebrate,
		Message:         result.Message,
	})
}

// TestEmail handles POST /api/reminders/test. Sends a throwaway email to
// the caller so delivery problems surface outside the nightly batch.
func (h *ReminderHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.users.GetByID(userID)
	if err != nil || user == nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	msg := reminder.TestMessage(user.Name)
	err = h.mail.Send(r.Context(), user.Email, msg.Subject, msg.HTML, msg.Text)
	if errors.Is(err, email.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "email delivery is not configured")
		return
	}

	entry := model.EmailLog{
		UserID:    userID,
		EmailType: model.EmailTypeTest,
		Subject:   msg.Subject,
		Status:    model.EmailStatusSent,
	}
	if err != nil {
		entry.Status = model.EmailStatusFailed
		entry.ErrorMessage = err.Error()
	}
	if logErr := h.emailLogs.Insert(entry); logErr != nil {
		h.logger.Error("log test email", "error", logErr)
	}

	if err != nil {
		h.logger.Error("send test email", "user_id", userID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to send test email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent", "to": user.Email})
}

// Cron handles POST /api/cron/send-reminders. The route sits outside the
// session middleware; callers authenticate with the X-Cron-Trigger header
// set by the in-process scheduler or with the shared cron secret.
func (h *ReminderHandler) Cron(w http.ResponseWriter, r *http.Request) {
	if !h.cronAuthorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.runner.Run(r.Context())
	if err != nil {
		h.logger.Error("reminder batch", "error", err)
		writeError(w, http.StatusInternalServerError, "reminder batch failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ReminderHandler) cronAuthorized(r *http.Request) bool {
	if r.Header.Get("X-Cron-Trigger") == "1" {
		return true
	}
	if h.cronSecret == "" {
		return false
	}
	bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(bearer), []byte(h.cronSecret)) == 1
}
