package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/rgalloway/tally/internal/email"
	"github.com/rgalloway/tally/internal/push"
	"github.com/rgalloway/tally/internal/store"
)

// PublicHandler serves the unauthenticated surface: the health check and
// the anonymous usage counters.
type PublicHandler struct {
	db          *sql.DB
	users       *store.UserStore
	habits      *store.HabitStore
	completions *store.CompletionStore
	emailLogs   *store.EmailLogStore
	mail        *email.Client
	pusher      *push.Service
	logger      *slog.Logger
}

func NewPublicHandler(db *sql.DB, users *store.UserStore, habits *store.HabitStore, completions *store.CompletionStore, emailLogs *store.EmailLogStore, mail *email.Client, pusher *push.Service, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		db:          db,
		users:       users,
		habits:      habits,
		completions: completions,
		emailLogs:   emailLogs,
		mail:        mail,
		pusher:      pusher,
		logger:      logger,
	}
}

// Health handles GET /health. Reports 503 when the database is
// unreachable; optional integrations only change the checks map.
func (h *PublicHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database": "ok",
		"email":    "not configured",
		"push":     "not configured",
	}
	status := "ok"
	code := http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error("health check", "error", err)
		checks["database"] = "unreachable"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if h.mail != nil && h.mail.Configured() {
		checks["email"] = "ok"
	}
	if h.pusher != nil && h.pusher.Configured() {
		checks["push"] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Stats handles GET /api/stats: whole-instance counts with nothing
// user-identifying in them.
func (h *PublicHandler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.CountAll()
	if err != nil {
		h.statsError(w, err)
		return
	}
	habits, err := h.habits.CountAll()
	if err != nil {
		h.statsError(w, err)
		return
	}
	completions, err := h.completions.CountAll()
	if err != nil {
		h.statsError(w, err)
		return
	}
	emailsSent, err := h.emailLogs.CountSent()
	if err != nil {
		h.statsError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users":       users,
		"habits":      habits,
		"completions": completions,
		"emails_sent": emailsSent,
		"timestamp":   time.Now().UTC(),
	})
}

func (h *PublicHandler) statsError(w http.ResponseWriter, err error) {
	h.logger.Error("public stats", "error", err)
	writeError(w, http.StatusInternalServerError, "failed to load stats")
}
