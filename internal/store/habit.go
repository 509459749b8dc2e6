package store

import (
	"database/sql"
	"fmt"

	"github.com/rgalloway/tally/internal/model"
)

type HabitStore struct {
	db *sql.DB
}

func NewHabitStore(db *sql.DB) *HabitStore {
	return &HabitStore{db: db}
}

func scanHabit(scanner interface{ Scan(...any) error }) (*model.Habit, error) {
	var h model.Habit
	err := scanner.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Category,
		&h.MonthlyGoal, &h.Color, &h.IsActive, &h.SortOrder,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const habitCols = `id, user_id, name, description, category, monthly_goal, color, is_active, sort_order, created_at, updated_at`

func (s *HabitStore) Create(userID int64, name, description, category string, monthlyGoal int, color string, sortOrder int) (*model.Habit, error) {
	result, err := s.db.Exec(
		`INSERT INTO habits (user_id, name, description, category, monthly_goal, color, sort_order) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, name, description, category, monthlyGoal, color, sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HabitStore) GetByID(id int64) (*model.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitCols+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

func (s *HabitStore) ListByUser(userID int64) ([]model.Habit, error) {
	rows, err := s.db.Query(
		`SELECT `+habitCols+` FROM habits WHERE user_id = ? ORDER BY sort_order ASC, name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, *h)
	}
	return habits, rows.Err()
}

// HabitUpdate carries partial-field changes; nil pointers leave the stored
// value untouched.
type HabitUpdate struct {
	Name        *string
	Description *string
	Category    *string
	MonthlyGoal *int
	Color       *string
	IsActive    *bool
	SortOrder   *int
}

func (s *HabitStore) Update(id int64, upd HabitUpdate) (*model.Habit, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if upd.Name != nil {
		existing.Name = *upd.Name
	}
	if upd.Description != nil {
		existing.Description = *upd.Description
	}
	if upd.Category != nil {
		existing.Category = *upd.Category
	}
	if upd.MonthlyGoal != nil {
		existing.MonthlyGoal = *upd.MonthlyGoal
	}
	if upd.Color != nil {
		existing.Color = *upd.Color
	}
	if upd.IsActive != nil {
		existing.IsActive = *upd.IsActive
	}
	if upd.SortOrder != nil {
		existing.SortOrder = *upd.SortOrder
	}

	_, err = s.db.Exec(
		`UPDATE habits SET name = ?, description = ?, category = ?, monthly_goal = ?, color = ?, is_active = ?, sort_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		existing.Name, existing.Description, existing.Category, existing.MonthlyGoal,
		existing.Color, existing.IsActive, existing.SortOrder, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the habit and, via foreign keys, its completions.
func (s *HabitStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

func (s *HabitStore) UpdateSortOrder(userID int64, ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.Exec(`UPDATE habits SET sort_order = ? WHERE id = ? AND user_id = ?`, i, id, userID); err != nil {
			return fmt.Errorf("update sort order: %w", err)
		}
	}
	return tx.Commit()
}

func (s *HabitStore) CountByUser(userID int64) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM habits WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count habits: %w", err)
	}
	return n, nil
}

func (s *HabitStore) CountAll() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM habits`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count all habits: %w", err)
	}
	return n, nil
}
