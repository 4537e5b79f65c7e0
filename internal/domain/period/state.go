package period

import (
	"fmt"
	"time"
)

// Phase is where "now" falls relative to a period.
type Phase int

const (
	Upcoming Phase = iota
	Active
	Elapsed
)

func (p Phase) String() string {
	switch p {
	case Upcoming:
		return "upcoming"
	case Active:
		return "active"
	case Elapsed:
		return "elapsed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is the classification of a period at one instant. Remaining is the
// time left until End while Active and zero otherwise.
type State struct {
	Phase     Phase
	Remaining time.Duration
}

// Classify evaluates p against now. Both bounds are taken on now's calendar
// day. An upcoming period reports zero remaining: the countdown is only shown
// once the period has started.
func Classify(p Period, now time.Time) State {
	toStart := p.Start.On(now).Sub(now)
	toEnd := p.End.On(now).Sub(now)

	switch {
	case toStart > 0:
		return State{Phase: Upcoming}
	case toEnd > 0:
		return State{Phase: Active, Remaining: toEnd}
	default:
		return State{Phase: Elapsed}
	}
}

// FormatRemaining renders d as "MM:SS", truncating to whole seconds.
// Minutes are not capped at 59. Non-positive durations render "00:00".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}
	minutes := int64(d / time.Minute)
	seconds := int64((d % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
