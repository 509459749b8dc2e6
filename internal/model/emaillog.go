package model

import "time"

// Email type constants
const (
	EmailTypeReminder    = "reminder"
	EmailTypeCelebration = "celebration"
	EmailTypeTest        = "test"
)

// Email status constants
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailLog is an append-only audit row. The reminder engine also uses it as
// the idempotency oracle: one email of a given type per user per calendar day.
type EmailLog struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	EmailType       string    `json:"email_type"`
	Subject         string    `json:"subject"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CompletionRate  int       `json:"completion_rate"`
	HabitsCompleted int       `json:"habits_completed"`
	HabitsTotal     int       `json:"habits_total"`
	SentAt          time.Time `json:"sent_at"`
}
