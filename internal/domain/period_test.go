package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodSelector_AllRange(t *testing.T) {
	r := NewPeriodSelector(date(2025, 3, 10)).WithMode(PeriodModeAll).Range()

	assert.Equal(t, "1900-01-01", r.StartDate())
	assert.Equal(t, "2100-12-31", r.EndDate())
	assert.Equal(t, AllPeriodsLabel, r.Label)
}

func TestPeriodSelector_AllIgnoresNavigation(t *testing.T) {
	s := NewPeriodSelector(date(2025, 3, 10)).WithMode(PeriodModeAll)

	assert.Equal(t, s, s.GoBack())
	assert.Equal(t, s, s.GoForward())
}

func TestPeriodSelector_MonthRange(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantStart string
		wantEnd   string
		wantLabel string
	}{
		{"March", 2025, 2, "2025-03-01", "2025-03-31", "March 2025"},
		{"leap February", 2024, 1, "2024-02-01", "2024-02-29", "February 2024"},
		{"common February", 2023, 1, "2023-02-01", "2023-02-28", "February 2023"},
		{"December", 2024, 11, "2024-12-01", "2024-12-31", "December 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PeriodSelector{Mode: PeriodModeMonth, Year: tt.year, Month: tt.month}.Range()
			assert.Equal(t, tt.wantStart, r.StartDate())
			assert.Equal(t, tt.wantEnd, r.EndDate())
			assert.Equal(t, tt.wantLabel, r.Label)
		})
	}
}

func TestPeriodSelector_MonthNavigationRollsYear(t *testing.T) {
	dec := PeriodSelector{Mode: PeriodModeMonth, Year: 2024, Month: 11}
	jan := dec.GoForward()
	assert.Equal(t, 2025, jan.Year)
	assert.Equal(t, 0, jan.Month)

	back := jan.GoBack()
	assert.Equal(t, 2024, back.Year)
	assert.Equal(t, 11, back.Month)
}

func TestPeriodSelector_MonthIndexNormalized(t *testing.T) {
	r := PeriodSelector{Mode: PeriodModeMonth, Year: 2024, Month: 12}.Range()
	assert.Equal(t, "2025-01-01", r.StartDate())

	r = PeriodSelector{Mode: PeriodModeMonth, Year: 2024, Month: -1}.Range()
	assert.Equal(t, "2023-12-01", r.StartDate())
}

func TestPeriodSelector_WeekRangeMondayToSunday(t *testing.T) {
	// Every weekday of the week 2024-06-10 .. 2024-06-16 resolves to the same window
	for i := 0; i < 7; i++ {
		anchor := date(2024, 6, 10).AddDate(0, 0, i)
		r := PeriodSelector{Mode: PeriodModeWeek, WeekAnchor: anchor}.Range()

		assert.Equal(t, time.Monday, r.Start.Weekday(), "anchor %s", anchor.Weekday())
		assert.Equal(t, time.Sunday, r.End.Weekday(), "anchor %s", anchor.Weekday())
		assert.Equal(t, "2024-06-10", r.StartDate())
		assert.Equal(t, "2024-06-16", r.EndDate())
		assert.Equal(t, 0, r.Start.Hour())
		assert.Equal(t, 23, r.End.Hour())
		assert.Equal(t, 59, r.End.Second())
	}
}

func TestPeriodSelector_WeekLabelUsesEndYear(t *testing.T) {
	r := PeriodSelector{Mode: PeriodModeWeek, WeekAnchor: date(2025, 1, 1)}.Range()

	assert.Equal(t, "2024-12-30", r.StartDate())
	assert.Equal(t, "2025-01-05", r.EndDate())
	assert.Equal(t, "30/12 — 05/01/2025", r.Label)
}

func TestPeriodSelector_WeekNavigation(t *testing.T) {
	s := PeriodSelector{Mode: PeriodModeWeek, WeekAnchor: date(2024, 6, 10)}

	assert.Equal(t, "2024-06-17", s.GoForward().Range().StartDate())
	assert.Equal(t, "2024-06-03", s.GoBack().Range().StartDate())
}

func TestPeriodSelector_ModeSwitchKeepsIndependentState(t *testing.T) {
	s := NewPeriodSelector(date(2024, 6, 12))

	// Move the week three weeks ahead, into July
	s = s.WithMode(PeriodModeWeek).GoForward().GoForward().GoForward()
	assert.Equal(t, "2024-07-01", s.Range().StartDate())

	// Month state did not follow the week anchor
	m := s.WithMode(PeriodModeMonth).Range()
	assert.Equal(t, "June 2024", m.Label)
}

func TestPeriodSelector_GoToday(t *testing.T) {
	s := PeriodSelector{Mode: PeriodModeMonth, Year: 2020, Month: 4, WeekAnchor: date(2020, 5, 4)}
	now := time.Date(2024, 6, 13, 18, 30, 0, 0, time.UTC) // Thursday

	today := s.GoToday(now)
	assert.Equal(t, PeriodModeMonth, today.Mode)
	assert.Equal(t, 2024, today.Year)
	assert.Equal(t, 5, today.Month)
	assert.Equal(t, date(2024, 6, 10), today.WeekAnchor)
}

func TestPeriodRange_Contains(t *testing.T) {
	r := PeriodSelector{Mode: PeriodModeWeek, WeekAnchor: date(2024, 6, 12)}.Range()

	assert.True(t, r.Contains(date(2024, 6, 10)))
	assert.True(t, r.Contains(date(2024, 6, 16)))
	assert.False(t, r.Contains(date(2024, 6, 9)))
	assert.False(t, r.Contains(date(2024, 6, 17)))
}

func TestPeriodMode_IsValid(t *testing.T) {
	assert.True(t, PeriodModeWeek.IsValid())
	assert.True(t, PeriodModeMonth.IsValid())
	assert.True(t, PeriodModeAll.IsValid())
	assert.False(t, PeriodMode("year").IsValid())
}
