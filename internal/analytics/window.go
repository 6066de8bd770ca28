package analytics

import "time"

// Range selects a preset report window ending at "now".
type Range string

const (
	RangeDay     Range = "day"
	RangeWeek    Range = "week"
	RangeMonth   Range = "month"
	RangeQuarter Range = "quarter"
	RangeYear    Range = "year"
)

// Window is the [Start, End] time range a report is built over. End is
// normally the moment the report was requested.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Validate() error {
	if !w.Start.Before(w.End) {
		return ErrInvalidWindow
	}
	return nil
}

// Contains reports whether an interval falls entirely inside the window.
// An interval straddling either boundary is excluded outright, not clipped.
func (w Window) Contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

// WindowForRange returns the window ending at now and starting at the
// beginning of the preset range in the given location. Weeks start on
// Monday. A nil location means UTC.
func WindowForRange(r Range, now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var start time.Time
	switch r {
	case RangeWeek:
		weekday := midnight.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		start = midnight.AddDate(0, 0, -int(weekday-time.Monday))
	case RangeMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	case RangeQuarter:
		q := (int(now.Month()) - 1) / 3
		start = time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, loc)
	case RangeYear:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
	default:
		start = midnight
	}
	return Window{Start: start, End: now}
}
