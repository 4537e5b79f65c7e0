// Package period models the fixed daily class periods and the countdown
// logic evaluated against them.
package period

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidLabel = errors.New("invalid HH:MM label")
var ErrInvalidInterval = errors.New("period start must be before end")

const labelLayout = "15:04"

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" label (hours 00-23, minutes 00-59).
func ParseTimeOfDay(label string) (TimeOfDay, error) {
	// time.Parse accepts a single-digit hour for "15", the table is strict.
	if len(label) != len(labelLayout) {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	t, err := time.Parse(labelLayout, label)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On returns the instant at this time of day on ref's calendar date, in ref's
// location, with seconds and nanoseconds zeroed.
func (t TimeOfDay) On(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, 0, 0, ref.Location())
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Period is a half-open [Start, End) window on a single day.
type Period struct {
	Start TimeOfDay
	End   TimeOfDay
}

// New builds a Period from two labels.
func New(start, end string) (Period, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Period{}, fmt.Errorf("start: %w", err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Period{}, fmt.Errorf("end: %w", err)
	}
	if s.minutes() >= e.minutes() {
		return Period{}, fmt.Errorf("%w: %s - %s", ErrInvalidInterval, s, e)
	}
	return Period{Start: s, End: e}, nil
}

// MustNew is like New but panics on invalid labels. Intended for static tables.
func MustNew(start, end string) Period {
	p, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Period) String() string {
	return p.Start.String() + " - " + p.End.String()
}
