package store

import (
	"database/sql"
	"fmt"

	"github.com/rgalloway/tally/internal/model"
)

type CompletionStore struct {
	db *sql.DB
}

func NewCompletionStore(db *sql.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.Completion, error) {
	var c model.Completion
	err := scanner.Scan(&c.ID, &c.HabitID, &c.UserID, &c.Date, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const completionCols = `id, habit_id, user_id, date, created_at`

// SetCompleted marks or unmarks a habit for a date. Marking inserts at most
// one row per (habit_id, date); unmarking deletes the row rather than
// writing an explicit false.
func (s *CompletionStore) SetCompleted(habitID, userID int64, date string, completed bool) (*model.Completion, error) {
	if !completed {
		_, err := s.db.Exec(`DELETE FROM completions WHERE habit_id = ? AND date = ?`, habitID, date)
		if err != nil {
			return nil, fmt.Errorf("delete completion: %w", err)
		}
		return nil, nil
	}

	_, err := s.db.Exec(
		`INSERT INTO completions (habit_id, user_id, date) VALUES (?, ?, ?)
		 ON CONFLICT(habit_id, date) DO NOTHING`,
		habitID, userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT `+completionCols+` FROM completions WHERE habit_id = ? AND date = ?`,
		habitID, date,
	)
	c, err := scanCompletion(row)
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

func (s *CompletionStore) IsCompleted(habitID int64, date string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM completions WHERE habit_id = ? AND date = ?`,
		habitID, date,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check completion: %w", err)
	}
	return n > 0, nil
}

func (s *CompletionStore) ListByUserRange(userID int64, startDate, endDate string) ([]model.Completion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM completions WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date ASC`,
		userID, startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

// ListByUser returns every completion a user has ever recorded, oldest
// first. Used by the account export.
func (s *CompletionStore) ListByUser(userID int64) ([]model.Completion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM completions WHERE user_id = ? ORDER BY date ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

// DailyCounts returns completed and total active-habit counts for a user on
// a date. Inactive habits are excluded from both figures.
func (s *CompletionStore) DailyCounts(userID int64, date string) (completed, total int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM habits WHERE user_id = ? AND is_active = 1`, userID,
	).Scan(&total)
	if err != nil {
		return 0, 0, fmt.Errorf("count active habits: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM completions c
		 JOIN habits h ON h.id = c.habit_id
		 WHERE c.user_id = ? AND c.date = ? AND h.is_active = 1`,
		userID, date,
	).Scan(&completed)
	if err != nil {
		return 0, 0, fmt.Errorf("count completions: %w", err)
	}
	return completed, total, nil
}

// ListIncomplete returns active habits without a completion row on the date.
func (s *CompletionStore) ListIncomplete(userID int64, date string) ([]model.IncompleteHabit, error) {
	rows, err := s.db.Query(
		`SELECT h.name, h.category, h.color FROM habits h
		 WHERE h.user_id = ? AND h.is_active = 1
		   AND NOT EXISTS (SELECT 1 FROM completions c WHERE c.habit_id = h.id AND c.date = ?)
		 ORDER BY h.sort_order ASC, h.name ASC`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list incomplete habits: %w", err)
	}
	defer rows.Close()

	var habits []model.IncompleteHabit
	for rows.Next() {
		var h model.IncompleteHabit
		if err := rows.Scan(&h.HabitName, &h.Category, &h.Color); err != nil {
			return nil, fmt.Errorf("scan incomplete habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *CompletionStore) CountAll() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM completions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count all completions: %w", err)
	}
	return n, nil
}
