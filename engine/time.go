package engine

import (
	"time"
)

// =============================================================================
// TIME POINT - Calendar-day abstraction (attendance is day-granular)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }
func (tp TimePoint) AddYears(n int) TimePoint  { return TimePoint{Time: tp.Time.AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (tp TimePoint) IsWorkday() bool { return !tp.IsWeekend() }
func (tp TimePoint) IsZero() bool    { return tp.Time.IsZero() }

func (tp TimePoint) String() string { return tp.Time.Format("2006-01-02") }

// ParseTimePoint parses a YYYY-MM-DD day.
func ParseTimePoint(s string) (TimePoint, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TimePoint{}, err
	}
	return TimePoint{Time: t}, nil
}

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewTimePoint(year, time.December, 31) }
func StartOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, 1)
}
func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t}
}

// =============================================================================
// WINDOW - The queried interval for attribution
// =============================================================================

// Window is the [Start, End] interval an aggregation query covers.
// Both boundaries are inclusive.
type Window struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the window [Start, End].
func (w Window) Contains(t TimePoint) bool {
	return t.AfterOrEqual(w.Start) && t.BeforeOrEqual(w.End)
}

// Validate rejects a window whose end precedes its start.
func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return ErrInvalidWindow
	}
	return nil
}

// String returns a string representation of the window.
func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + "]"
}

// CalendarYear is the window covering a whole calendar year.
func CalendarYear(year int) Window {
	return Window{Start: StartOfYear(year), End: EndOfYear(year)}
}
