package handler

import (
	"log/slog"
	"net/http"

	"github.com/rgalloway/tally/internal/auth"
	"github.com/rgalloway/tally/internal/model"
	"github.com/rgalloway/tally/internal/store"
)

type AchievementHandler struct {
	achievements *store.AchievementStore
	logger       *slog.Logger
}

func NewAchievementHandler(achievements *store.AchievementStore, logger *slog.Logger) *AchievementHandler {
	return &AchievementHandler{achievements: achievements, logger: logger}
}

// List handles GET /api/achievements. Returns the full catalog with the
// caller's earned timestamps merged in, so the client can render locked
// and unlocked badges from one response.
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	earned, err := h.achievements.ListByUser(userID)
	if err != nil {
		h.logger.Error("list achievements", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list achievements")
		return
	}

	earnedAt := make(map[string]string, len(earned))
	for _, a := range earned {
		earnedAt[a.AchievementID] = a.EarnedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}

	type badge struct {
		model.AchievementDef
		Earned   bool   `json:"earned"`
		EarnedAt string `json:"earned_at,omitempty"`
	}

	badges := make([]badge, 0, len(model.AchievementCatalog))
	for _, def := range model.AchievementCatalog {
		b := badge{AchievementDef: def}
		if at, ok := earnedAt[def.ID]; ok {
			b.Earned = true
			b.EarnedAt = at
		}
		badges = append(badges, b)
	}
	writeJSON(w, http.StatusOK, badges)
}
