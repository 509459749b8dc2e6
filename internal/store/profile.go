package store

import (
	"database/sql"
	"fmt"

	"github.com/rgalloway/tally/internal/model"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(scanner interface{ Scan(...any) error }) (*model.Profile, error) {
	var p model.Profile
	err := scanner.Scan(
		&p.UserID, &p.FullName, &p.ReminderEnabled, &p.ReminderTime,
		&p.ReminderThreshold, &p.CelebrationEnabled, &p.Timezone, &p.WeekStart,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const profileCols = `user_id, full_name, reminder_enabled, reminder_time, reminder_threshold, celebration_enabled, timezone, week_start, created_at, updated_at`

// Create inserts a profile with default reminder settings.
func (s *ProfileStore) Create(userID int64, fullName string) (*model.Profile, error) {
	_, err := s.db.Exec(
		`INSERT INTO profiles (user_id, full_name) VALUES (?, ?)`,
		userID, fullName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return s.GetByUserID(userID)
}

func (s *ProfileStore) GetByUserID(userID int64) (*model.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// ProfileUpdate carries partial-field changes; nil pointers leave the stored
// value untouched.
type ProfileUpdate struct {
	FullName           *string
	ReminderEnabled    *bool
	ReminderTime       *string
	ReminderThreshold  *int
	CelebrationEnabled *bool
	Timezone           *string
	WeekStart          *int
}

func (s *ProfileStore) Update(userID int64, upd ProfileUpdate) (*model.Profile, error) {
	existing, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if upd.FullName != nil {
		existing.FullName = *upd.FullName
	}
	if upd.ReminderEnabled != nil {
		existing.ReminderEnabled = *upd.ReminderEnabled
	}
	if upd.ReminderTime != nil {
		existing.ReminderTime = *upd.ReminderTime
	}
	if upd.ReminderThreshold != nil {
		existing.ReminderThreshold = *upd.ReminderThreshold
	}
	if upd.CelebrationEnabled != nil {
		existing.CelebrationEnabled = *upd.CelebrationEnabled
	}
	if upd.Timezone != nil {
		existing.Timezone = *upd.Timezone
	}
	if upd.WeekStart != nil {
		existing.WeekStart = *upd.WeekStart
	}

	_, err = s.db.Exec(
		`UPDATE profiles SET full_name = ?, reminder_enabled = ?, reminder_time = ?, reminder_threshold = ?, celebration_enabled = ?, timezone = ?, week_start = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`,
		existing.FullName, existing.ReminderEnabled, existing.ReminderTime,
		existing.ReminderThreshold, existing.CelebrationEnabled, existing.Timezone,
		existing.WeekStart, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetByUserID(userID)
}

// ReminderRecipient pairs a user's contact details with reminder settings
// for the batch scheduler.
type ReminderRecipient struct {
	UserID             int64
	Email              string
	FullName           string
	ReminderTime       string
	ReminderThreshold  int
	CelebrationEnabled bool
	Timezone           string
}

// ListReminderRecipients returns every user with reminders enabled and a
// non-empty email address.
func (s *ProfileStore) ListReminderRecipients() ([]ReminderRecipient, error) {
	rows, err := s.db.Query(
		`SELECT p.user_id, u.email, p.full_name, p.reminder_time, p.reminder_threshold, p.celebration_enabled, p.timezone
		 FROM profiles p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.reminder_enabled = 1 AND u.email != ''
		 ORDER BY p.user_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminder recipients: %w", err)
	}
	defer rows.Close()

	var recipients []ReminderRecipient
	for rows.Next() {
		var rec ReminderRecipient
		if err := rows.Scan(&rec.UserID, &rec.Email, &rec.FullName, &rec.ReminderTime, &rec.ReminderThreshold, &rec.CelebrationEnabled, &rec.Timezone); err != nil {
			return nil, fmt.Errorf("scan reminder recipient: %w", err)
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

func (s *ProfileStore) CountAll() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}
