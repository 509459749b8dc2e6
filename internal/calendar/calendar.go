// Package calendar provides pure date arithmetic over YYYY-MM-DD strings.
// The format is fixed-width and zero-padded, so lexical comparison of two
// date strings matches chronological order.
package calendar

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// FormatDate renders t as a YYYY-MM-DD string in t's location.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD string to midnight UTC.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// Today returns the calendar date of the given instant.
func Today(now time.Time) string {
	return FormatDate(now)
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the number of days in the given month (1-12).
func DaysInMonth(year, month int) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange returns the first and last calendar day of the month.
func MonthRange(year, month int) (start, end string) {
	start = fmt.Sprintf("%04d-%02d-01", year, month)
	end = fmt.Sprintf("%04d-%02d-%02d", year, month, DaysInMonth(year, month))
	return start, end
}

// EnumerateDays returns every date from start through end inclusive, in
// ascending order. Returns nil if either date is malformed or end < start.
func EnumerateDays(start, end string) []string {
	s, err := ParseDate(start)
	if err != nil {
		return nil
	}
	e, err := ParseDate(end)
	if err != nil {
		return nil
	}

	var days []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, FormatDate(d))
	}
	return days
}

// AddDays returns the date n days after (or before, for negative n) the
// given date. Malformed input is returned unchanged.
func AddDays(date string, n int) string {
	d, err := ParseDate(date)
	if err != nil {
		return date
	}
	return FormatDate(d.AddDate(0, 0, n))
}

// Weekday returns the day of week for a date string. Malformed input maps
// to Sunday.
func Weekday(date string) time.Weekday {
	d, err := ParseDate(date)
	if err != nil {
		return time.Sunday
	}
	return d.Weekday()
}

// WeekNumber returns the ISO-8601 week number (Thursday-anchored).
func WeekNumber(date string) int {
	d, err := ParseDate(date)
	if err != nil {
		return 0
	}
	_, week := d.ISOWeek()
	return week
}

// NavigateMonth steps a (year, month) pair forward or backward one month,
// wrapping at year boundaries. Direction is "prev" or "next"; anything else
// is treated as "next".
func NavigateMonth(year, month int, direction string) (int, int) {
	if direction == "prev" {
		if month == 1 {
			return year - 1, 12
		}
		return year, month - 1
	}
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// WeekStart returns the most recent Sunday on or before the given date.
func WeekStart(date string) string {
	d, err := ParseDate(date)
	if err != nil {
		return date
	}
	return FormatDate(d.AddDate(0, 0, -int(d.Weekday())))
}

// PassedWeekDays enumerates the days of the current week (Sunday-anchored)
// that are on or before today, ascending. Future days of the week are
// excluded.
func PassedWeekDays(today string) []string {
	return EnumerateDays(WeekStart(today), today)
}

// LastNDays returns the n dates ending at today, ascending, today last.
func LastNDays(today string, n int) []string {
	if n <= 0 {
		return nil
	}
	return EnumerateDays(AddDays(today, -(n-1)), today)
}
