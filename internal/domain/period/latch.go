package period

import (
	"fmt"
	"time"
)

// Threshold is the upper bound of the "ending soon" band (0, Threshold].
const Threshold = 10 * time.Minute

// Decision is the outcome of a single Latch.Observe call.
type Decision int

const (
	Skip Decision = iota
	Fire
)

func (d Decision) String() string {
	if d == Fire {
		return "fire"
	}
	return "skip"
}

// Latch is a one-shot gate for the ending-soon notification of one period.
// The zero value is unarmed. It is not safe for concurrent use; each latch
// belongs to exactly one ticker.
type Latch struct {
	armed bool
}

// Observe returns Fire the first time remaining is seen inside the band and
// Skip on every other call. Samples outside the band never arm the latch.
func (l *Latch) Observe(remaining time.Duration) Decision {
	if l.armed || remaining <= 0 || remaining > Threshold {
		return Skip
	}
	l.armed = true
	return Fire
}

// Armed reports whether the latch has already fired.
func (l *Latch) Armed() bool {
	return l.armed
}

// EndingSoonMessage is the notification text for a period with the given
// time left, in whole minutes rounded down.
func EndingSoonMessage(remaining time.Duration) string {
	return fmt.Sprintf("До конца пары осталось %d минут!", int64(remaining/time.Minute))
}
