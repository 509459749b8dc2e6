package model

import "time"

// Habit categories mirror the picker in the web client; the server only
// treats them as opaque tags.
const (
	CategoryHealth       = "health"
	CategoryFitness      = "fitness"
	CategoryProductivity = "productivity"
	CategoryLearning     = "learning"
	CategoryMindfulness  = "mindfulness"
	CategoryOther        = "other"
)

type Habit struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	MonthlyGoal int       `json:"monthly_goal"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Completion records that a habit was done on a calendar date. Presence of
// the row is the only state: unmarking deletes it, so there is never a
// completed=false row. At most one row exists per (habit_id, date).
type Completion struct {
	ID        int64     `json:"id"`
	HabitID   int64     `json:"habit_id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
}

// IncompleteHabit is the reminder email's view of a habit not yet done today.
type IncompleteHabit struct {
	HabitName string `json:"habit_name"`
	Category  string `json:"category"`
	Color     string `json:"color"`
}
