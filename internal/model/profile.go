package model

import "time"

// Default reminder settings applied when a profile is created.
const (
	DefaultReminderTime      = "22:00"
	DefaultReminderThreshold = 70
	DefaultTimezone          = "UTC"
)

type Profile struct {
	UserID             int64     `json:"user_id"`
	FullName           string    `json:"full_name"`
	ReminderEnabled    bool      `json:"reminder_enabled"`
	ReminderTime       string    `json:"reminder_time"` // HH:MM, local to Timezone
	ReminderThreshold  int       `json:"reminder_threshold"`
	CelebrationEnabled bool      `json:"celebration_enabled"`
	Timezone           string    `json:"timezone"` // IANA name, "UTC" fallback
	WeekStart          int       `json:"week_start"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ReminderHour parses the hour component of ReminderTime, defaulting to the
// hour of DefaultReminderTime when the value is missing or malformed.
func (p *Profile) ReminderHour() int {
	t := p.ReminderTime
	if t == "" {
		t = DefaultReminderTime
	}
	hour := 0
	for i := 0; i < len(t) && t[i] != ':'; i++ {
		if t[i] < '0' || t[i] > '9' {
			return 22
		}
		hour = hour*10 + int(t[i]-'0')
	}
	if hour > 23 {
		return 22
	}
	return hour
}
