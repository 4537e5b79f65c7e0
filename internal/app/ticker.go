package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"class_timer_bot/internal/domain/notification"
	"class_timer_bot/internal/domain/period"

	"github.com/sirupsen/logrus"
)

// DefaultTickInterval is the cadence at which a period is re-evaluated.
const DefaultTickInterval = time.Second

var ErrTickerNotIdle = errors.New("ticker already started or disposed")

// TickerStatus is the lifecycle position of a PeriodTicker.
type TickerStatus int

const (
	TickerIdle TickerStatus = iota
	TickerRunning
	TickerDisposed
)

func (s TickerStatus) String() string {
	switch s {
	case TickerIdle:
		return "idle"
	case TickerRunning:
		return "running"
	default:
		return "disposed"
	}
}

// Sample is one published evaluation of a period.
type Sample struct {
	Period period.Period
	At     time.Time
	State  period.State
}

// PeriodTicker evaluates a single period on a fixed cadence, publishes every
// sample, and raises the ending-soon notification at most once per run.
//
// Each tick reads the clock afresh, so suspended processes and missed ticks
// self-correct. A notification whose whole band was skipped (e.g. the process
// slept through it) is never sent.
type PeriodTicker struct {
	period   period.Period
	clock    Clock
	notifier notification.Notifier
	interval time.Duration
	publish  func(Sample)
	logger   *logrus.Entry

	mu     sync.Mutex
	status TickerStatus
	cancel context.CancelFunc
	done   chan struct{}

	// latch is touched only by Start (before the loop exists) and the loop.
	latch period.Latch
}

func NewPeriodTicker(
	p period.Period,
	clock Clock,
	notifier notification.Notifier,
	interval time.Duration,
	publish func(Sample),
	logger *logrus.Entry,
) *PeriodTicker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &PeriodTicker{
		period:   p,
		clock:    clock,
		notifier: notifier,
		interval: interval,
		publish:  publish,
		logger:   logger.WithField("period", p.String()),
	}
}

// Start publishes one sample immediately and then one per interval until Stop
// is called or ctx is done. A ticker can be started only once.
func (t *PeriodTicker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != TickerIdle {
		return ErrTickerNotIdle
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.tick(runCtx)

	t.cancel = cancel
	t.done = make(chan struct{})
	t.status = TickerRunning
	go t.loop(runCtx, t.done)

	t.logger.Debug("Ticker started")
	return nil
}

// Stop disposes the ticker. When it returns, no further samples will be
// published and no further notifications evaluated.
func (t *PeriodTicker) Stop() {
	t.mu.Lock()
	prev := t.status
	t.status = TickerDisposed
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	if prev != TickerRunning {
		return
	}
	cancel()
	<-done
	t.logger.Debug("Ticker stopped")
}

func (t *PeriodTicker) Status() TickerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *PeriodTicker) Period() period.Period {
	return t.period
}

func (t *PeriodTicker) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// select picks randomly when both are ready
			if ctx.Err() != nil {
				return
			}
			t.tick(ctx)
		}
	}
}

func (t *PeriodTicker) tick(ctx context.Context) {
	now := t.clock.Now()
	state := period.Classify(t.period, now)
	t.publish(Sample{Period: t.period, At: now, State: state})

	if t.latch.Observe(state.Remaining) == period.Fire {
		t.logger.WithFields(logrus.Fields{
			"remaining": state.Remaining.String(),
		}).Info("Period ending soon, sending notification")
		t.notifier.Notify(ctx, period.EndingSoonMessage(state.Remaining), notification.PriorityUrgent)
	}
}
