package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rgalloway/tally/internal/auth"
	"github.com/rgalloway/tally/internal/calendar"
	"github.com/rgalloway/tally/internal/model"
	"github.com/rgalloway/tally/internal/reminder"
	"github.com/rgalloway/tally/internal/store"
	"github.com/rgalloway/tally/internal/tracker"
)

type HabitHandler struct {
	habits      *store.HabitStore
	completions *store.CompletionStore
	checker     *reminder.AchievementChecker
	logger      *slog.Logger
}

func NewHabitHandler(habits *store.HabitStore, completions *store.CompletionStore, checker *reminder.AchievementChecker, logger *slog.Logger) *HabitHandler {
	return &HabitHandler{
		habits:      habits,
		completions: completions,
		checker:     checker,
		logger:      logger,
	}
}

type createHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	MonthlyGoal int    `json:"monthly_goal"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sort_order"`
}

// Create handles POST /api/habits
func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req createHabitRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Category == "" {
		req.Category = model.CategoryOther
	}

	habit, err := h.habits.Create(userID, req.Name, req.Description, req.Category, req.MonthlyGoal, req.Color, req.SortOrder)
	if err != nil {
		h.logger.Error("create habit", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create habit")
		return
	}

	earned, err := h.checker.CheckHabitCount(userID)
	if err != nil {
		h.logger.Error("achievement check", "user_id", userID, "error", err)
	}
	if earned == nil {
		earned = []model.AchievementDef{}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"habit":        habit,
		"achievements": earned,
	})
}

// List handles GET /api/habits
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	habits, err := h.habits.ListByUser(userID)
	if err != nil {
		h.logger.Error("list habits", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list habits")
		return
	}
	if habits == nil {
		habits = []model.Habit{}
	}
	writeJSON(w, http.StatusOK, habits)
}

// Get handles GET /api/habits/{id}
func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	habit, ok := h.ownedHabit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

type updateHabitRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	MonthlyGoal *int    `json:"monthly_goal"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   *int    `json:"sort_order"`
}

// Update handles PUT /api/habits/{id}
func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	habit, ok := h.ownedHabit(w, r)
	if !ok {
		return
	}

	var req updateHabitRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}

	updated, err := h.habits.Update(habit.ID, store.HabitUpdate{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		MonthlyGoal: req.MonthlyGoal,
		Color:       req.Color,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		h.logger.Error("update habit", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update habit")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/habits/{id}
func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	habit, ok := h.ownedHabit(w, r)
	if !ok {
		return
	}
	if err := h.habits.Delete(habit.ID); err != nil {
		h.logger.Error("delete habit", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete habit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sortRequest struct {
	IDs []int64 `json:"ids"`
}

// UpdateSortOrder handles PUT /api/habits/sort
func (h *HabitHandler) UpdateSortOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req sortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	if err := h.habits.UpdateSortOrder(userID, req.IDs); err != nil {
		h.logger.Error("update sort order", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update sort order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type toggleRequest struct {
	Date string `json:"date"`
}

type toggleResponse struct {
	HabitID      int64                  `json:"habit_id"`
	Date         string                 `json:"date"`
	Completed    bool                   `json:"completed"`
	Achievements []model.AchievementDef `json:"achievements"`
}

// Toggle handles POST /api/habits/{id}/toggle. The flip is applied to an
// in-memory set first and rolled back if persistence fails.
func (h *HabitHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	habit, ok := h.ownedHabit(w, r)
	if !ok {
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	date := req.Date
	if date == "" {
		date = calendar.Today(time.Now())
	}
	if _, err := calendar.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	set := tracker.NewSet(h.completions)
	if err := set.Load(userID, date, date); err != nil {
		h.logger.Error("load completions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load completions")
		return
	}

	completed, err := set.Toggle(habit.ID, userID, date)
	if err != nil {
		h.logger.Error("toggle completion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save completion")
		return
	}

	var earned []model.AchievementDef
	if completed {
		earned, err = h.checker.CheckCompletions(userID, habit.ID, date)
		if err != nil {
			h.logger.Error("achievement check", "user_id", userID, "error", err)
		}
	}
	if earned == nil {
		earned = []model.AchievementDef{}
	}

	writeJSON(w, http.StatusOK, toggleResponse{
		HabitID:      habit.ID,
		Date:         date,
		Completed:    completed,
		Achievements: earned,
	})
}

// ListCompletions handles GET /api/completions?start=&end=
func (h *HabitHandler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if _, err := calendar.ParseDate(start); err != nil {
		writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return
	}
	if _, err := calendar.ParseDate(end); err != nil {
		writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return
	}

	completions, err := h.completions.ListByUserRange(userID, start, end)
	if err != nil {
		h.logger.Error("list completions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	if completions == nil {
		completions = []model.Completion{}
	}
	writeJSON(w, http.StatusOK, completions)
}

// ownedHabit loads the {id} habit and checks it belongs to the caller.
// Habits of other users read as not found.
func (h *HabitHandler) ownedHabit(w http.ResponseWriter, r *http.Request) (*model.Habit, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	habit, err := h.habits.GetByID(id)
	if err != nil {
		h.logger.Error("get habit", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get habit")
		return nil, false
	}
	if habit == nil || habit.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "habit not found")
		return nil, false
	}
	return habit, true
}
