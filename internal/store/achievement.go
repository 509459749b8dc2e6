package store

import (
	"database/sql"
	"fmt"

	"github.com/rgalloway/tally/internal/model"
)

type AchievementStore struct {
	db *sql.DB
}

func NewAchievementStore(db *sql.DB) *AchievementStore {
	return &AchievementStore{db: db}
}

// Award records an achievement for a user. Returns true if the badge was
// newly earned; awarding an already-earned badge is a no-op.
func (s *AchievementStore) Award(userID int64, achievementID string) (bool, error) {
	result, err := s.db.Exec(
		`INSERT INTO achievements (user_id, achievement_id) VALUES (?, ?)
		 ON CONFLICT(user_id, achievement_id) DO NOTHING`,
		userID, achievementID,
	)
	if err != nil {
		return false, fmt.Errorf("award achievement: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *AchievementStore) ListByUser(userID int64) ([]model.Achievement, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, achievement_id, earned_at FROM achievements WHERE user_id = ? ORDER BY earned_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		var a model.Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.AchievementID, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}
