package calendar

import (
	"testing"
	"time"
)

func TestIsLeapYear(t *testing.T) {
	cases := []struct {
		year int
		want bool
	}{
		{2024, true},
		{2023, false},
		{2000, true},
		{1900, false},
		{2400, true},
	}
	for _, c := range cases {
		if got := IsLeapYear(c.year); got != c.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", c.year, got, c.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{2024, 1, 31},
		{2024, 4, 30},
		{2024, 12, 31},
	}
	for _, c := range cases {
		if got := DaysInMonth(c.year, c.month); got != c.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", c.year, c.month, got, c.want)
		}
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, 2)
	if start != "2024-02-01" {
		t.Errorf("start = %q, want 2024-02-01", start)
	}
	if end != "2024-02-29" {
		t.Errorf("end = %q, want 2024-02-29", end)
	}

	start, end = MonthRange(2023, 11)
	if start != "2023-11-01" || end != "2023-11-30" {
		t.Errorf("range = %q..%q, want 2023-11-01..2023-11-30", start, end)
	}
}

func TestEnumerateDaysLeapFebruary(t *testing.T) {
	days := EnumerateDays("2024-02-01", "2024-02-29")
	if len(days) != 29 {
		t.Fatalf("len = %d, want 29", len(days))
	}
	if days[0] != "2024-02-01" {
		t.Errorf("first = %q, want 2024-02-01", days[0])
	}
	if days[len(days)-1] != "2024-02-29" {
		t.Errorf("last = %q, want 2024-02-29", days[len(days)-1])
	}
	for i := 1; i < len(days); i++ {
		if days[i] <= days[i-1] {
			t.Errorf("days not ascending at %d: %q <= %q", i, days[i], days[i-1])
		}
	}
}

func TestEnumerateDaysAcrossMonth(t *testing.T) {
	days := EnumerateDays("2024-01-30", "2024-02-02")
	want := []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}
	if len(days) != len(want) {
		t.Fatalf("len = %d, want %d", len(days), len(want))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("days[%d] = %q, want %q", i, days[i], want[i])
		}
	}
}

func TestEnumerateDaysReversedRange(t *testing.T) {
	if days := EnumerateDays("2024-02-10", "2024-02-01"); days != nil {
		t.Errorf("expected nil for reversed range, got %v", days)
	}
}

func TestAddDays(t *testing.T) {
	if got := AddDays("2024-03-01", -1); got != "2024-02-29" {
		t.Errorf("AddDays back across leap boundary = %q, want 2024-02-29", got)
	}
	if got := AddDays("2023-12-31", 1); got != "2024-01-01" {
		t.Errorf("AddDays across year = %q, want 2024-01-01", got)
	}
}

func TestWeekNumber(t *testing.T) {
	// 2024-01-01 is a Monday, ISO week 1.
	if got := WeekNumber("2024-01-01"); got != 1 {
		t.Errorf("WeekNumber(2024-01-01) = %d, want 1", got)
	}
	// 2023-01-01 is a Sunday, belongs to ISO week 52 of 2022.
	if got := WeekNumber("2023-01-01"); got != 52 {
		t.Errorf("WeekNumber(2023-01-01) = %d, want 52", got)
	}
}

func TestNavigateMonth(t *testing.T) {
	y, m := NavigateMonth(2024, 1, "prev")
	if y != 2023 || m != 12 {
		t.Errorf("prev from 2024-01 = %d-%d, want 2023-12", y, m)
	}
	y, m = NavigateMonth(2024, 12, "next")
	if y != 2025 || m != 1 {
		t.Errorf("next from 2024-12 = %d-%d, want 2025-01", y, m)
	}
	y, m = NavigateMonth(2024, 6, "next")
	if y != 2024 || m != 7 {
		t.Errorf("next from 2024-06 = %d-%d, want 2024-07", y, m)
	}
}

func TestWeekStart(t *testing.T) {
	// 2024-06-12 is a Wednesday; week starts Sunday 2024-06-09.
	if got := WeekStart("2024-06-12"); got != "2024-06-09" {
		t.Errorf("WeekStart = %q, want 2024-06-09", got)
	}
	// A Sunday is its own week start.
	if got := WeekStart("2024-06-09"); got != "2024-06-09" {
		t.Errorf("WeekStart of Sunday = %q, want itself", got)
	}
}

func TestPassedWeekDays(t *testing.T) {
	days := PassedWeekDays("2024-06-12") // Wednesday
	if len(days) != 4 {                  // Sun, Mon, Tue, Wed
		t.Fatalf("len = %d, want 4", len(days))
	}
	if days[0] != "2024-06-09" || days[3] != "2024-06-12" {
		t.Errorf("days = %v, want 2024-06-09..2024-06-12", days)
	}
}

func TestLastNDays(t *testing.T) {
	days := LastNDays("2024-06-12", 3)
	want := []string{"2024-06-10", "2024-06-11", "2024-06-12"}
	if len(days) != 3 {
		t.Fatalf("len = %d, want 3", len(days))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("days[%d] = %q, want %q", i, days[i], want[i])
		}
	}

	if days := LastNDays("2024-06-12", 0); days != nil {
		t.Errorf("LastNDays with n=0 = %v, want nil", days)
	}
}

func TestTodayAndFormat(t *testing.T) {
	now := time.Date(2024, 6, 12, 23, 45, 0, 0, time.UTC)
	if got := Today(now); got != "2024-06-12" {
		t.Errorf("Today = %q, want 2024-06-12", got)
	}
}
