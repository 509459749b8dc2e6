package stats

import (
	"math"

	"github.com/rgalloway/tally/internal/calendar"
	"github.com/rgalloway/tally/internal/model"
)

// WindowStats is one side of a week-over-week comparison.
type WindowStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Rate      int `json:"rate"`
}

// Comparison holds this week to date against the same span of last week.
type Comparison struct {
	ThisWeek WindowStats `json:"this_week"`
	LastWeek WindowStats `json:"last_week"`
	Change   int         `json:"change"`
}

func windowStats(habits []model.Habit, done Lookup, days []string) WindowStats {
	completed := 0
	for _, date := range days {
		for _, h := range habits {
			if done(h.ID, date) {
				completed++
			}
		}
	}
	total := len(days) * len(habits)
	return WindowStats{Completed: completed, Total: total, Rate: pct(completed, total)}
}

// WeekComparison compares this week to date with the same span of last
// week: both windows run from their Sunday through the same weekday.
func WeekComparison(habits []model.Habit, done Lookup, today string) Comparison {
	active := ActiveHabits(habits)

	thisDays := calendar.PassedWeekDays(today)
	var lastDays []string
	for _, d := range thisDays {
		lastDays = append(lastDays, calendar.AddDays(d, -7))
	}

	this := windowStats(active, done, thisDays)
	last := windowStats(active, done, lastDays)
	return Comparison{
		ThisWeek: this,
		LastWeek: last,
		Change:   this.Rate - last.Rate,
	}
}

// Correlation computes the phi coefficient between two habits over the n
// trailing days ending at today. Returns 0 (not an error) when either
// habit's marginal probability is 0 or 1, where phi is undefined. The
// result is symmetric in its habit arguments and lies in [-1, 1], rounded
// to two decimals.
func Correlation(habitA, habitB int64, done Lookup, today string, days int) float64 {
	dates := calendar.LastNDays(today, days)
	if len(dates) == 0 {
		return 0
	}

	both := 0
	onlyA := 0
	onlyB := 0
	for _, date := range dates {
		a := done(habitA, date)
		b := done(habitB, date)
		switch {
		case a && b:
			both++
		case a:
			onlyA++
		case b:
			onlyB++
		}
	}

	n := float64(len(dates))
	pA := float64(both+onlyA) / n
	pB := float64(both+onlyB) / n
	pBoth := float64(both) / n

	if pA == 0 || pB == 0 || pA == 1 || pB == 1 {
		return 0
	}

	phi := (pBoth - pA*pB) / math.Sqrt(pA*(1-pA)*pB*(1-pB))
	return math.Round(phi*100) / 100
}
