package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rgalloway/tally/internal/auth"
	"github.com/rgalloway/tally/internal/calendar"
	"github.com/rgalloway/tally/internal/model"
	"github.com/rgalloway/tally/internal/stats"
	"github.com/rgalloway/tally/internal/store"
	"github.com/rgalloway/tally/internal/tracker"
)

// streakLookback bounds how far back we load completions when a streak
// length feeds the response. Streaks longer than a year report as a year.
const streakLookback = 365

type StatsHandler struct {
	habits      *store.HabitStore
	completions *store.CompletionStore
	logger      *slog.Logger
	now         func() time.Time
}

func NewStatsHandler(habits *store.HabitStore, completions *store.CompletionStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		habits:      habits,
		completions: completions,
		logger:      logger,
		now:         time.Now,
	}
}

// load pulls the caller's habits and a completion lookup covering
// [start, end] in one pass.
func (h *StatsHandler) load(w http.ResponseWriter, r *http.Request, start, end string) ([]model.Habit, stats.Lookup, bool) {
	userID := auth.UserID(r.Context())

	habits, err := h.habits.ListByUser(userID)
	if err != nil {
		h.logger.Error("list habits", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load habits")
		return nil, nil, false
	}

	set := tracker.NewSet(h.completions)
	if err := set.Load(userID, start, end); err != nil {
		h.logger.Error("load completions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load completions")
		return nil, nil, false
	}
	return habits, set.Lookup(), true
}

// Today handles GET /api/stats/today
func (h *StatsHandler) Today(w http.ResponseWriter, r *http.Request) {
	today := calendar.Today(h.now())
	habits, done, ok := h.load(w, r, today, today)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats.TodayStats(habits, done, today))
}

// Week handles GET /api/stats/week
func (h *StatsHandler) Week(w http.ResponseWriter, r *http.Request) {
	today := calendar.Today(h.now())
	habits, done, ok := h.load(w, r, calendar.WeekStart(today), today)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats.WeekStats(habits, done, today))
}

// yearMonth reads optional year and month query params, defaulting to the
// current UTC month.
func (h *StatsHandler) yearMonth(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	now := h.now().UTC()
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2000 || n > 2100 {
			writeError(w, http.StatusBadRequest, "invalid year")
			return 0, 0, false
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return 0, 0, false
		}
		month = n
	}
	return year, month, true
}

// Month handles GET /api/stats/month?year=&month=
func (h *StatsHandler) Month(w http.ResponseWriter, r *http.Request) {
	today := calendar.Today(h.now())
	year, month, ok := h.yearMonth(w, r)
	if !ok {
		return
	}

	start, end := calendar.MonthRange(year, month)
	habits, done, ok := h.load(w, r, start, end)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": stats.MonthStats(habits, done, today, year, month),
		"daily":   stats.DailyData(habits, done, today, year, month),
		"weekly":  stats.WeeklyData(habits, done, today, year, month),
	})
}

// Heatmap handles GET /api/stats/heatmap?year=
func (h *StatsHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	today := calendar.Today(h.now())
	year := h.now().UTC().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2000 || n > 2100 {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}

	start, _ := calendar.MonthRange(year, 1)
	_, end := calendar.MonthRange(year, 12)
	habits, done, ok := h.load(w, r, start, end)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats.YearHeatmap(habits, done, today, year))
}

// Top handles GET /api/stats/top?limit=
func (h *StatsHandler) Top(w http.ResponseWriter, r *http.Request) {
	today := calendar.Today(h.now())
	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	habits, done, ok := h.load(w, r, calendar.AddDays(today, -streakLookback), today)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats.TopHabits(habits, done, today, limit))
}

// Comparison handles GET /api/stats/comparison
func (h *StatsHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	today := calendar.Today(h.now())
	start := calendar.AddDays(calendar.WeekStart(today), -7)
	habits, done, ok := h.load(w, r, start, today)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats.WeekComparison(habits, done, today))
}

// Correlation handles GET /api/stats/correlation?a=&b=&days=
func (h *StatsHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	today := calendar.Today(h.now())

	habitA, err := strconv.ParseInt(r.URL.Query().Get("a"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id a")
		return
	}
	habitB, err := strconv.ParseInt(r.URL.Query().Get("b"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id b")
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 || n > streakLookback {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}
		days = n
	}

	for _, id := range []int64{habitA, habitB} {
		habit, err := h.habits.GetByID(id)
		if err != nil {
			h.logger.Error("get habit", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load habits")
			return
		}
		if habit == nil || habit.UserID != userID {
			writeError(w, http.StatusNotFound, "habit not found")
			return
		}
	}

	_, done, ok := h.load(w, r, calendar.AddDays(today, -(days-1)), today)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"habit_a":     habitA,
		"habit_b":     habitB,
		"days":        days,
		"correlation": stats.Correlation(habitA, habitB, done, today, days),
	})
}
