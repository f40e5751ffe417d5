package util

import "time"

// DateLayout is the wire and storage format of calendar dates
const DateLayout = "2006-01-02"

// MonthKeyLayout formats a date as its YYYY-MM month key
const MonthKeyLayout = "2006-01"

// NormalizeMonth folds a 0-based month index into [0, 11], carrying into the year
func NormalizeMonth(year, month int) (int, int) {
	year += month / 12
	month %= 12
	if month < 0 {
		month += 12
		year--
	}
	return year, month
}

// PreviousMonth returns the year and 0-based month before the given one
func PreviousMonth(year, month int) (int, int) {
	return NormalizeMonth(year, month-1)
}

// NextMonth returns the year and 0-based month after the given one
func NextMonth(year, month int) (int, int) {
	return NormalizeMonth(year, month+1)
}

// FirstDayOfMonth returns the first calendar day of a 0-based month
func FirstDayOfMonth(year, month int) time.Time {
	year, month = NormalizeMonth(year, month)
	return time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth returns the last calendar day of a 0-based month
func LastDayOfMonth(year, month int) time.Time {
	year, month = NormalizeMonth(year, month)
	// Day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC)
}

// DateOnly drops the clock part of t, keeping its calendar date, in UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the Monday (00:00:00) of the week containing t
func StartOfWeek(t time.Time) time.Time {
	day := int(t.Weekday())
	diff := 1 - day
	if day == 0 {
		diff = -6
	}
	return DateOnly(t).AddDate(0, 0, diff)
}

// EndOfWeek returns the Sunday (23:59:59) closing the week that starts at start
func EndOfWeek(start time.Time) time.Time {
	return DateOnly(start).AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

// AddMonths moves t forward by n months. Day overflow rolls into the next month
// (Jan 31 + 1 month = Mar 3 in a common year), matching calendar normalization.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// MonthKey returns the YYYY-MM key of t
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// FormatDate formats t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
