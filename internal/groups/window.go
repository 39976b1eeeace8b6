package groups

import (
	"fmt"
	"time"
)

// SummarySlot is the local weekday and hour at which summaries go out.
type SummarySlot struct {
	Weekday time.Weekday
	Hour    int
}

// DefaultSummarySlot is Sunday 08:00 group-local time.
var DefaultSummarySlot = SummarySlot{Weekday: time.Sunday, Hour: 8}

// summaryEpoch is the window start for groups that never had a summary.
var summaryEpoch = time.Unix(0, 0).UTC()

// LoadLocation resolves a group's timezone. An empty name means UTC; an unknown
// one returns UTC together with the lookup error.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// InSummarySlot reports whether now, seen from loc, falls on the slot's weekday and hour.
func InSummarySlot(loc *time.Location, now time.Time, slot SummarySlot) bool {
	local := now.In(loc)
	return local.Weekday() == slot.Weekday && local.Hour() == slot.Hour
}

// SummaryWindowEnd is local midnight of now's day in loc. Any two instants of
// the same local day give the same end.
func SummaryWindowEnd(loc *time.Location, now time.Time) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// SummaryWindow returns [cursor or epoch, end) for a group.
func SummaryWindow(loc *time.Location, now time.Time, cursor *time.Time) (from, to time.Time) {
	to = SummaryWindowEnd(loc, now)
	from = summaryEpoch
	if cursor != nil {
		from = *cursor
	}
	return from, to
}
