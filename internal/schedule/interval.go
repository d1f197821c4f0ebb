// Package schedule contains the pure scheduling computations of the service: time interval
// arithmetic, conflict detection, popularity scoring and best-time suggestion. Nothing in
// this package touches storage - callers pass in a consistent snapshot of the events or
// sessions to compute over.
package schedule

import "time"

// Interval is a half-open time range [Start, End). Intervals handed to this package are
// expected to be valid and non-empty (Start before End); input validation happens at the
// service boundary
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval creates an interval from the given instants
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Valid checks that the interval is non-empty
func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

// Duration returns the length of the interval
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps checks whether the two half-open intervals share at least one instant.
// Intervals that merely touch (a.End == b.Start) do not overlap
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// WithinHorizon checks whether the interval lies fully inside the given window
func (iv Interval) WithinHorizon(window Interval) bool {
	return !iv.Start.Before(window.Start) && !iv.End.After(window.End)
}

// Gap returns the distance between the two intervals. Overlapping intervals have a gap
// of zero
func (iv Interval) Gap(other Interval) time.Duration {
	if iv.Overlaps(other) {
		return 0
	}
	if iv.End.After(other.Start) {
		return iv.Start.Sub(other.End)
	}
	return other.Start.Sub(iv.End)
}
