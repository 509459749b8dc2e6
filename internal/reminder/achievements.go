package reminder

import (
	"fmt"

	"github.com/rgalloway/tally/internal/calendar"
	"github.com/rgalloway/tally/internal/model"
	"github.com/rgalloway/tally/internal/stats"
	"github.com/rgalloway/tally/internal/store"
)

// streakWindow bounds how far back the checker loads completions. Long
// enough to detect the 100-day badge.
const streakWindow = 120

// AchievementChecker awards badges after habit and completion changes.
type AchievementChecker struct {
	habits       *store.HabitStore
	completions  *store.CompletionStore
	achievements *store.AchievementStore
}

func NewAchievementChecker(habits *store.HabitStore, completions *store.CompletionStore, achievements *store.AchievementStore) *AchievementChecker {
	return &AchievementChecker{habits: habits, completions: completions, achievements: achievements}
}

func (c *AchievementChecker) award(userID int64, earned *[]model.AchievementDef, achievementID string) error {
	isNew, err := c.achievements.Award(userID, achievementID)
	if err != nil {
		return err
	}
	if !isNew {
		return nil
	}
	for _, def := range model.AchievementCatalog {
		if def.ID == achievementID {
			*earned = append(*earned, def)
			break
		}
	}
	return nil
}

// CheckHabitCount awards the milestone badges after a habit is created.
func (c *AchievementChecker) CheckHabitCount(userID int64) ([]model.AchievementDef, error) {
	count, err := c.habits.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("count habits: %w", err)
	}

	var earned []model.AchievementDef
	if count >= 1 {
		if err := c.award(userID, &earned, model.AchievementFirstHabit); err != nil {
			return earned, err
		}
	}
	if count >= 10 {
		if err := c.award(userID, &earned, model.AchievementHabits10); err != nil {
			return earned, err
		}
	}
	if count >= 25 {
		if err := c.award(userID, &earned, model.AchievementHabits25); err != nil {
			return earned, err
		}
	}
	return earned, nil
}

// CheckCompletions awards streak and perfect-day badges after a toggle.
// The habit argument is the one just toggled; streak badges are judged
// against it, perfect day and week against all active habits.
func (c *AchievementChecker) CheckCompletions(userID, habitID int64, today string) ([]model.AchievementDef, error) {
	habits, err := c.habits.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	start := calendar.AddDays(today, -(streakWindow - 1))
	rows, err := c.completions.ListByUserRange(userID, start, today)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}
	done := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		done[fmt.Sprintf("%d/%s", r.HabitID, r.Date)] = struct{}{}
	}
	lookup := func(habitID int64, date string) bool {
		_, ok := done[fmt.Sprintf("%d/%s", habitID, date)]
		return ok
	}

	var earned []model.AchievementDef

	streak := stats.Streak(habitID, lookup, today)
	if streak >= 7 {
		if err := c.award(userID, &earned, model.AchievementStreak7); err != nil {
			return earned, err
		}
	}
	if streak >= 30 {
		if err := c.award(userID, &earned, model.AchievementStreak30); err != nil {
			return earned, err
		}
	}
	if streak >= 100 {
		if err := c.award(userID, &earned, model.AchievementStreak100); err != nil {
			return earned, err
		}
	}

	if s := stats.TodayStats(habits, lookup, today); s.Total > 0 && s.Rate == 100 {
		if err := c.award(userID, &earned, model.AchievementPerfectDay); err != nil {
			return earned, err
		}
	}
	if stats.OverallStreak(habits, lookup, today) >= 7 {
		if err := c.award(userID, &earned, model.AchievementPerfectWeek); err != nil {
			return earned, err
		}
	}

	return earned, nil
}
