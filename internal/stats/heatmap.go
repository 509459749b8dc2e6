package stats

import (
	"time"

	"github.com/rgalloway/tally/internal/calendar"
	"github.com/rgalloway/tally/internal/model"
)

// HeatmapDay is one cell of the year heatmap.
type HeatmapDay struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Level int     `json:"level"`
}

// HeatmapLevel buckets a daily completion ratio into an ordinal level 0-4.
// Any rate above zero maps to level 1 until the 0.5 band, so the >0 and
// >=0.25 bands intentionally collapse to the same level.
func HeatmapLevel(rate float64) int {
	level := 0
	if rate > 0 {
		level = 1
	}
	if rate >= 0.25 {
		level = 1
	}
	if rate >= 0.5 {
		level = 2
	}
	if rate >= 0.75 {
		level = 3
	}
	if rate >= 1 {
		level = 4
	}
	return level
}

// YearHeatmap produces one cell per day of the year up to today.
func YearHeatmap(habits []model.Habit, done Lookup, today string, year int) []HeatmapDay {
	active := ActiveHabits(habits)

	var cells []HeatmapDay
	for month := 1; month <= 12; month++ {
		start, end := calendar.MonthRange(year, month)
		for _, date := range calendar.EnumerateDays(start, end) {
			if date > today {
				continue
			}

			completed := 0
			for _, h := range active {
				if done(h.ID, date) {
					completed++
				}
			}
			rate := 0.0
			if len(active) > 0 {
				rate = float64(completed) / float64(len(active))
			}
			cells = append(cells, HeatmapDay{Date: date, Value: rate, Level: HeatmapLevel(rate)})
		}
	}
	return cells
}

// DayCount is one day of chart data for a month.
type DayCount struct {
	Date      string `json:"date"`
	Day       int    `json:"day"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Rate      int    `json:"rate"`
}

// DailyData returns per-day completion counts for a month, clipped to
// today.
func DailyData(habits []model.Habit, done Lookup, today string, year, month int) []DayCount {
	active := ActiveHabits(habits)
	start, end := calendar.MonthRange(year, month)

	var days []DayCount
	for _, date := range calendar.EnumerateDays(start, end) {
		if date > today {
			continue
		}

		completed := 0
		for _, h := range active {
			if done(h.ID, date) {
				completed++
			}
		}
		d, _ := calendar.ParseDate(date)
		days = append(days, DayCount{
			Date:      date,
			Day:       d.Day(),
			Completed: completed,
			Total:     len(active),
			Rate:      pct(completed, len(active)),
		})
	}
	return days
}

// WeekBucket aggregates DailyData rows into calendar weeks ending Saturday.
type WeekBucket struct {
	WeekNumber int `json:"week_number"`
	Days       int `json:"days"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Rate       int `json:"rate"`
}

// WeeklyData groups a month's daily data into week buckets.
func WeeklyData(habits []model.Habit, done Lookup, today string, year, month int) []WeekBucket {
	daily := DailyData(habits, done, today, year, month)

	var weeks []WeekBucket
	var current []DayCount
	flush := func() {
		if len(current) == 0 {
			return
		}
		bucket := WeekBucket{
			WeekNumber: calendar.WeekNumber(current[len(current)-1].Date),
			Days:       len(current),
		}
		for _, d := range current {
			bucket.Completed += d.Completed
			bucket.Total += d.Total
		}
		bucket.Rate = pct(bucket.Completed, bucket.Total)
		weeks = append(weeks, bucket)
		current = current[:0]
	}

	for _, d := range daily {
		current = append(current, d)
		if calendar.Weekday(d.Date) == time.Saturday { // Saturday closes the week
			flush()
		}
	}
	flush()
	return weeks
}
