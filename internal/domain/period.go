package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/util"
)

type PeriodMode string

const (
	PeriodModeWeek  PeriodMode = "week"
	PeriodModeMonth PeriodMode = "month"
	PeriodModeAll   PeriodMode = "all"
)

var ErrInvalidPeriodMode = errors.New("period mode must be one of: week, month, all")

// IsValid reports whether m is a known period mode
func (m PeriodMode) IsValid() bool {
	return m == PeriodModeWeek || m == PeriodModeMonth || m == PeriodModeAll
}

// AllPeriodsLabel is the label of the unbounded period
const AllPeriodsLabel = "All periods"

var (
	allPeriodsStart = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	allPeriodsEnd   = time.Date(2100, 12, 31, 0, 0, 0, 0, time.UTC)
)

// PeriodRange is an inclusive window of calendar dates with a display label
type PeriodRange struct {
	Mode  PeriodMode `json:"mode"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
	Label string     `json:"label"`
}

// StartDate returns the first calendar day of the range as YYYY-MM-DD
func (r PeriodRange) StartDate() string {
	return util.FormatDate(r.Start)
}

// EndDate returns the last calendar day of the range as YYYY-MM-DD
func (r PeriodRange) EndDate() string {
	return util.FormatDate(r.End)
}

// Contains reports whether the calendar date of d falls inside the range, both ends inclusive
func (r PeriodRange) Contains(d time.Time) bool {
	day := util.DateOnly(d)
	return !day.Before(util.DateOnly(r.Start)) && !day.After(util.DateOnly(r.End))
}

// PeriodSelector is the navigation state behind a period picker. Each mode keeps its own
// state: switching from week to month does not derive the month from the week anchor.
// Values are immutable; navigation returns a new selector.
type PeriodSelector struct {
	Mode       PeriodMode
	Year       int
	Month      int // 0-based
	WeekAnchor time.Time
}

// NewPeriodSelector returns a month-mode selector positioned on now
func NewPeriodSelector(now time.Time) PeriodSelector {
	return PeriodSelector{
		Mode:       PeriodModeMonth,
		Year:       now.Year(),
		Month:      int(now.Month()) - 1,
		WeekAnchor: util.StartOfWeek(now),
	}
}

// normalized folds the month index into [0, 11]
func (s PeriodSelector) normalized() PeriodSelector {
	s.Year, s.Month = util.NormalizeMonth(s.Year, s.Month)
	return s
}

// WithMode switches mode, keeping the other modes' state untouched
func (s PeriodSelector) WithMode(mode PeriodMode) PeriodSelector {
	s.Mode = mode
	return s
}

// GoBack moves one unit back: a month in month mode, seven days in week mode
func (s PeriodSelector) GoBack() PeriodSelector {
	s = s.normalized()
	switch s.Mode {
	case PeriodModeMonth:
		s.Year, s.Month = util.PreviousMonth(s.Year, s.Month)
	case PeriodModeWeek:
		s.WeekAnchor = s.WeekAnchor.AddDate(0, 0, -7)
	}
	return s
}

// GoForward moves one unit forward: a month in month mode, seven days in week mode
func (s PeriodSelector) GoForward() PeriodSelector {
	s = s.normalized()
	switch s.Mode {
	case PeriodModeMonth:
		s.Year, s.Month = util.NextMonth(s.Year, s.Month)
	case PeriodModeWeek:
		s.WeekAnchor = s.WeekAnchor.AddDate(0, 0, 7)
	}
	return s
}

// GoToday resets month state to now's month and the week anchor to now's Monday.
// The mode is kept.
func (s PeriodSelector) GoToday(now time.Time) PeriodSelector {
	s.Year = now.Year()
	s.Month = int(now.Month()) - 1
	s.WeekAnchor = util.StartOfWeek(now)
	return s
}

// Range resolves the selector into its concrete date window
func (s PeriodSelector) Range() PeriodRange {
	s = s.normalized()
	switch s.Mode {
	case PeriodModeAll:
		return PeriodRange{Mode: PeriodModeAll, Start: allPeriodsStart, End: allPeriodsEnd, Label: AllPeriodsLabel}
	case PeriodModeWeek:
		start := util.StartOfWeek(s.WeekAnchor)
		end := util.EndOfWeek(start)
		return PeriodRange{Mode: PeriodModeWeek, Start: start, End: end, Label: weekLabel(start, end)}
	default:
		start := util.FirstDayOfMonth(s.Year, s.Month)
		return PeriodRange{
			Mode:  PeriodModeMonth,
			Start: start,
			End:   util.LastDayOfMonth(s.Year, s.Month),
			Label: fmt.Sprintf("%s %d", start.Month(), start.Year()),
		}
	}
}

func weekLabel(start, end time.Time) string {
	return fmt.Sprintf("%02d/%02d — %02d/%02d/%d",
		start.Day(), int(start.Month()), end.Day(), int(end.Month()), end.Year())
}
