// Package stats computes completion statistics over a habit list and a
// completion lookup. Every function is pure given (habits, lookup, today);
// I/O stays in the callers.
package stats

import (
	"math"
	"sort"

	"github.com/rgalloway/tally/internal/calendar"
	"github.com/rgalloway/tally/internal/model"
)

// Lookup reports whether a habit was completed on a date.
type Lookup func(habitID int64, date string) bool

// Summary aggregates completion counts over a window. Rate is a whole
// percentage in [0, 100]; every denominator guards zero by yielding 0.
type Summary struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Remaining int `json:"remaining,omitempty"`
	Rate      int `json:"rate"`
	DaysCount int `json:"days_count,omitempty"`
}

// ActiveHabits filters to habits with the active flag set. Inactive habits
// are excluded from every aggregate in this package.
func ActiveHabits(habits []model.Habit) []model.Habit {
	var active []model.Habit
	for _, h := range habits {
		if h.IsActive {
			active = append(active, h)
		}
	}
	return active
}

func pct(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// TodayStats counts completed active habits on the today date.
func TodayStats(habits []model.Habit, done Lookup, today string) Summary {
	active := ActiveHabits(habits)
	completed := 0
	for _, h := range active {
		if done(h.ID, today) {
			completed++
		}
	}
	return Summary{
		Completed: completed,
		Total:     len(active),
		Remaining: len(active) - completed,
		Rate:      pct(completed, len(active)),
	}
}

// WeekStats aggregates the current week's passed days (Sunday-anchored,
// future days excluded from numerator and denominator alike).
func WeekStats(habits []model.Habit, done Lookup, today string) Summary {
	active := ActiveHabits(habits)
	passed := calendar.PassedWeekDays(today)
	if len(active) == 0 || len(passed) == 0 {
		return Summary{}
	}

	completed := 0
	for _, date := range passed {
		for _, h := range active {
			if done(h.ID, date) {
				completed++
			}
		}
	}
	possible := len(passed) * len(active)
	return Summary{
		Completed: completed,
		Total:     possible,
		Rate:      pct(completed, possible),
		DaysCount: len(passed),
	}
}

// MonthStats aggregates a calendar month, clipped to days on or before
// today.
func MonthStats(habits []model.Habit, done Lookup, today string, year, month int) Summary {
	active := ActiveHabits(habits)
	if len(active) == 0 {
		return Summary{}
	}

	start, end := calendar.MonthRange(year, month)
	var passed []string
	for _, date := range calendar.EnumerateDays(start, end) {
		if date <= today {
			passed = append(passed, date)
		}
	}
	if len(passed) == 0 {
		return Summary{}
	}

	completed := 0
	for _, date := range passed {
		for _, h := range active {
			if done(h.ID, date) {
				completed++
			}
		}
	}
	possible := len(passed) * len(active)
	return Summary{
		Completed: completed,
		Total:     possible,
		Rate:      pct(completed, possible),
		DaysCount: len(passed),
	}
}

// HabitWeekCount counts a single habit's completions over the current
// week's passed days.
func HabitWeekCount(habitID int64, done Lookup, today string) (completed, total int) {
	passed := calendar.PassedWeekDays(today)
	for _, date := range passed {
		if done(habitID, date) {
			completed++
		}
	}
	return completed, len(passed)
}

// HabitWeekRate is the canonical "current performance" figure for a habit:
// completed passed days this week over total passed days, as a whole
// percent. Distinct from HabitMonthRate.
func HabitWeekRate(habitID int64, done Lookup, today string) int {
	completed, total := HabitWeekCount(habitID, done, today)
	return pct(completed, total)
}

// HabitMonthRate is a habit's completion percentage over a month's days on
// or before today.
func HabitMonthRate(habitID int64, done Lookup, today string, year, month int) int {
	start, end := calendar.MonthRange(year, month)
	completed, total := 0, 0
	for _, date := range calendar.EnumerateDays(start, end) {
		if date > today {
			continue
		}
		total++
		if done(habitID, date) {
			completed++
		}
	}
	return pct(completed, total)
}

// Streak counts consecutive completed days ending at today. An incomplete
// today does not break the streak until the day ends: the walk then starts
// from yesterday. Terminates because lookups return false past the loaded
// window.
func Streak(habitID int64, done Lookup, today string) int {
	date := today
	if !done(habitID, date) {
		date = calendar.AddDays(date, -1)
	}

	streak := 0
	for done(habitID, date) {
		streak++
		date = calendar.AddDays(date, -1)
	}
	return streak
}

// OverallStreak counts consecutive days on which every active habit was
// completed. Zero active habits means no streak.
func OverallStreak(habits []model.Habit, done Lookup, today string) int {
	active := ActiveHabits(habits)
	if len(active) == 0 {
		return 0
	}

	allDone := func(date string) bool {
		for _, h := range active {
			if !done(h.ID, date) {
				return false
			}
		}
		return true
	}

	date := today
	if !allDone(date) {
		date = calendar.AddDays(date, -1)
	}

	streak := 0
	for allDone(date) {
		streak++
		date = calendar.AddDays(date, -1)
	}
	return streak
}

// HabitRank is one row of the top-habits leaderboard.
type HabitRank struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Rate   int    `json:"rate"`
	Streak int    `json:"streak"`
}

// TopHabits ranks active habits by weekly completion rate, descending,
// stable on ties, truncated to limit.
func TopHabits(habits []model.Habit, done Lookup, today string, limit int) []HabitRank {
	active := ActiveHabits(habits)
	ranks := make([]HabitRank, 0, len(active))
	for _, h := range active {
		ranks = append(ranks, HabitRank{
			ID:     h.ID,
			Name:   h.Name,
			Color:  h.Color,
			Rate:   HabitWeekRate(h.ID, done, today),
			Streak: Streak(h.ID, done, today),
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Rate > ranks[j].Rate
	})

	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}
