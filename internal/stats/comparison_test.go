package stats

import (
	"testing"

	"github.com/rgalloway/tally/internal/model"
)

func TestWeekComparisonSameSpan(t *testing.T) {
	habits := []model.Habit{activeHabit(1, "Exercise")}
	done := completionMap{}
	// This week: Sun through Wed, all done.
	done.add(1, "2024-06-09", "2024-06-10", "2024-06-11", "2024-06-12")
	// Last week: only the matching Sun and Mon, plus a Friday that must
	// not count because it falls outside the compared span.
	done.add(1, "2024-06-02", "2024-06-03", "2024-06-07")

	c := WeekComparison(habits, done.lookup, today)
	if c.ThisWeek.Completed != 4 || c.ThisWeek.Rate != 100 {
		t.Errorf("this week = %+v, want 4 at 100%%", c.ThisWeek)
	}
	if c.LastWeek.Completed != 2 || c.LastWeek.Rate != 50 {
		t.Errorf("last week = %+v, want 2 at 50%%", c.LastWeek)
	}
	if c.Change != 50 {
		t.Errorf("change = %d, want 50", c.Change)
	}
}

func TestWeekComparisonNegativeChange(t *testing.T) {
	habits := []model.Habit{activeHabit(1, "Exercise")}
	done := completionMap{}
	done.add(1, "2024-06-02", "2024-06-03", "2024-06-04", "2024-06-05")

	c := WeekComparison(habits, done.lookup, today)
	if c.Change != -100 {
		t.Errorf("change = %d, want -100", c.Change)
	}
}

func TestWeekComparisonNoHabits(t *testing.T) {
	c := WeekComparison(nil, completionMap{}.lookup, today)
	if c.ThisWeek.Rate != 0 || c.LastWeek.Rate != 0 || c.Change != 0 {
		t.Errorf("comparison = %+v, want zeros", c)
	}
}

func TestCorrelationPerfect(t *testing.T) {
	done := completionMap{}
	done.add(1, "2024-06-12", "2024-06-11", "2024-06-10")
	done.add(2, "2024-06-12", "2024-06-11", "2024-06-10")

	if phi := Correlation(1, 2, done.lookup, today, 7); phi != 1 {
		t.Errorf("phi = %v, want 1", phi)
	}
}

func TestCorrelationSymmetry(t *testing.T) {
	done := completionMap{}
	done.add(1, "2024-06-12", "2024-06-10", "2024-06-08")
	done.add(2, "2024-06-12", "2024-06-09")

	ab := Correlation(1, 2, done.lookup, today, 14)
	ba := Correlation(2, 1, done.lookup, today, 14)
	if ab != ba {
		t.Errorf("phi(a,b) = %v but phi(b,a) = %v", ab, ba)
	}
	if ab < -1 || ab > 1 {
		t.Errorf("phi = %v out of [-1, 1]", ab)
	}
}

func TestCorrelationDegenerateMarginals(t *testing.T) {
	done := completionMap{}
	// Habit 2 never completed: phi is undefined, reported as 0.
	done.add(1, "2024-06-12", "2024-06-11")
	if phi := Correlation(1, 2, done.lookup, today, 7); phi != 0 {
		t.Errorf("phi with absent habit = %v, want 0", phi)
	}

	// Habit 1 completed every day of the window: also undefined.
	all := completionMap{}
	for _, d := range []string{"2024-06-06", "2024-06-07", "2024-06-08", "2024-06-09", "2024-06-10", "2024-06-11", "2024-06-12"} {
		all.add(1, d)
	}
	all.add(2, "2024-06-10")
	if phi := Correlation(1, 2, all.lookup, today, 7); phi != 0 {
		t.Errorf("phi with saturated habit = %v, want 0", phi)
	}
}

func TestCorrelationNegative(t *testing.T) {
	done := completionMap{}
	// Perfectly alternating over an even window.
	done.add(1, "2024-06-12", "2024-06-10", "2024-06-08", "2024-06-06")
	done.add(2, "2024-06-11", "2024-06-09", "2024-06-07", "2024-06-05")

	if phi := Correlation(1, 2, done.lookup, today, 8); phi != -1 {
		t.Errorf("phi = %v, want -1", phi)
	}
}
