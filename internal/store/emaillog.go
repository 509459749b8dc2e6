package store

import (
	"database/sql"
	"fmt"

	"github.com/rgalloway/tally/internal/model"
)

type EmailLogStore struct {
	db *sql.DB
}

func NewEmailLogStore(db *sql.DB) *EmailLogStore {
	return &EmailLogStore{db: db}
}

// Insert appends an audit row. Rows are never updated or deleted.
func (s *EmailLogStore) Insert(entry model.EmailLog) error {
	_, err := s.db.Exec(
		`INSERT INTO email_logs (user_id, email_type, subject, status, error_message, completion_rate, habits_completed, habits_total)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.EmailType, entry.Subject, entry.Status,
		entry.ErrorMessage, entry.CompletionRate, entry.HabitsCompleted, entry.HabitsTotal,
	)
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}

// SentToday reports whether an email of the given type was already sent to
// the user on the given calendar day. Failed attempts do not count, so a
// delivery failure can be retried on a later tick.
func (s *EmailLogStore) SentToday(userID int64, emailType, date string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM email_logs
		 WHERE user_id = ? AND email_type = ? AND status = ? AND date(sent_at) = ?`,
		userID, emailType, model.EmailStatusSent, date,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check email sent today: %w", err)
	}
	return n > 0, nil
}

func (s *EmailLogStore) ListByUser(userID int64) ([]model.EmailLog, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, email_type, subject, status, error_message, completion_rate, habits_completed, habits_total, sent_at
		 FROM email_logs WHERE user_id = ? ORDER BY sent_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	defer rows.Close()

	var logs []model.EmailLog
	for rows.Next() {
		var l model.EmailLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.EmailType, &l.Subject, &l.Status, &l.ErrorMessage, &l.CompletionRate, &l.HabitsCompleted, &l.HabitsTotal, &l.SentAt); err != nil {
			return nil, fmt.Errorf("scan email log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *EmailLogStore) CountSent() (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM email_logs WHERE status = ?`, model.EmailStatusSent,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sent emails: %w", err)
	}
	return n, nil
}
