package model

import "time"

// Achievement IDs awarded by the checker.
const (
	AchievementFirstHabit  = "first_habit"
	AchievementStreak7     = "streak_7"
	AchievementStreak30    = "streak_30"
	AchievementStreak100   = "streak_100"
	AchievementPerfectDay  = "perfect_day"
	AchievementPerfectWeek = "perfect_week"
	AchievementHabits10    = "habits_10"
	AchievementHabits25    = "habits_25"
)

type Achievement struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
}

// AchievementDef describes a badge in the catalog.
type AchievementDef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// AchievementCatalog lists every badge the app can award.
var AchievementCatalog = []AchievementDef{
	{ID: AchievementFirstHabit, Title: "First Step", Description: "Create your first habit", Type: "milestone"},
	{ID: AchievementStreak7, Title: "Week Warrior", Description: "7 day streak", Type: "streak"},
	{ID: AchievementStreak30, Title: "Monthly Master", Description: "30 day streak", Type: "streak"},
	{ID: AchievementStreak100, Title: "Century Club", Description: "100 day streak", Type: "streak"},
	{ID: AchievementPerfectDay, Title: "Perfect Day", Description: "Complete all habits in a day", Type: "completion"},
	{ID: AchievementPerfectWeek, Title: "Perfect Week", Description: "100% completion for a week", Type: "completion"},
	{ID: AchievementHabits10, Title: "Habit Builder", Description: "Track 10 habits", Type: "milestone"},
	{ID: AchievementHabits25, Title: "Habit Master", Description: "Track 25 habits", Type: "milestone"},
}
