// Package eventfilter contains the pure filtering logic for event listings:
// date windows plus an optional ad hoc query expression.
package eventfilter

import "time"

// DefaultLookback is how far back events are listed when no explicit time filter is given.
const DefaultLookback = 30 * 24 * time.Hour

// Filter selects events by start date and query.
type Filter struct {
	ShowAll bool
	Future  bool
	Year    int
	Month   int
	After   *time.Time
	Before  *time.Time // last included day; the time of day is ignored
	Query   Expr // nil means no query
}

// hasExplicitTime reports whether any time-related option was set.
func (f Filter) hasExplicitTime() bool {
	return f.ShowAll || f.Future || f.Year != 0 || f.Month != 0 || f.After != nil || f.Before != nil
}

// Match reports whether an event starting at start with the given fields passes the filter.
// Rules:
// - no explicit time option: only events starting within DefaultLookback of now
// - Before includes every event starting on that calendar day
// - ShowAll disables the Before bound
// - Future drops events that already started
func (f Filter) Match(start time.Time, fields map[string]any, now time.Time) (bool, error) {
	after := f.After
	if after == nil && !f.hasExplicitTime() {
		d := now.Add(-DefaultLookback)
		after = &d
	}
	before := f.Before
	if f.ShowAll {
		before = nil
	}

	if after != nil && start.Before(*after) {
		return false, nil
	}
	if before != nil && !start.Before(dayAfter(*before)) {
		return false, nil
	}
	if f.Future && start.Before(now) {
		return false, nil
	}
	if f.Year != 0 && start.Year() != f.Year {
		return false, nil
	}
	if f.Month != 0 && int(start.Month()) != f.Month {
		return false, nil
	}

	if f.Query == nil {
		return true, nil
	}
	return f.Query.Eval(fields)
}

func dayAfter(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}
