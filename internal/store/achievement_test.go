package store

import (
	"testing"

	"github.com/rgalloway/tally/internal/database"
	"github.com/rgalloway/tally/internal/model"
)

func setupAchievementTestDB(t *testing.T) (*AchievementStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user, err := NewUserStore(db).Create("alice@example.com", "Alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewAchievementStore(db), user.ID
}

func TestAwardOnce(t *testing.T) {
	as, userID := setupAchievementTestDB(t)

	isNew, err := as.Award(userID, model.AchievementFirstHabit)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if !isNew {
		t.Error("first award should report new")
	}

	isNew, err = as.Award(userID, model.AchievementFirstHabit)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if isNew {
		t.Error("repeat award should not report new")
	}

	earned, err := as.ListByUser(userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(earned) != 1 {
		t.Errorf("len = %d, want 1", len(earned))
	}
	if earned[0].AchievementID != model.AchievementFirstHabit {
		t.Errorf("achievement = %q", earned[0].AchievementID)
	}
}
