package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"class_timer_bot/internal/domain/notification"
	"class_timer_bot/internal/domain/period"

	"github.com/sirupsen/logrus"
)

// Slot is a configured period together with its most recent sample.
type Slot struct {
	Period    period.Period
	Sample    Sample
	HasSample bool
}

// Board runs one PeriodTicker per configured period, keeps the latest sample
// of each and fans samples out to subscribers. Periods must be unique.
type Board struct {
	clock    Clock
	notifier notification.Notifier
	interval time.Duration
	logger   *logrus.Entry

	// lifecycle serializes Mount, Unmount and Reload.
	lifecycle sync.Mutex

	mu      sync.Mutex
	mounted bool
	periods []period.Period
	tickers map[period.Period]*PeriodTicker
	latest  map[period.Period]Sample
	subs    map[int]*subscription
	nextSub int
}

type subscription struct {
	period period.Period
	ch     chan Sample
	once   sync.Once
}

func (s *subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

func NewBoard(
	periods []period.Period,
	clock Clock,
	notifier notification.Notifier,
	interval time.Duration,
	logger *logrus.Entry,
) *Board {
	return &Board{
		clock:    clock,
		notifier: notifier,
		interval: interval,
		logger:   logger,
		periods:  append([]period.Period(nil), periods...),
		tickers:  make(map[period.Period]*PeriodTicker),
		latest:   make(map[period.Period]Sample),
		subs:     make(map[int]*subscription),
	}
}

// Mount starts a ticker for every period that does not have one yet.
func (b *Board) Mount(ctx context.Context) error {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()

	b.mu.Lock()
	periods := append([]period.Period(nil), b.periods...)
	b.mounted = true
	b.mu.Unlock()

	for _, p := range periods {
		if err := b.startLocked(ctx, p); err != nil {
			return err
		}
	}
	b.logger.WithField("periods", len(periods)).Info("Board mounted")
	return nil
}

// Unmount stops every ticker and closes every subscription stream. No
// samples are published after it returns.
func (b *Board) Unmount() {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()
	b.unmountLocked()
	b.closeSubs(func(period.Period) bool { return true })
	b.logger.Info("Board unmounted")
}

// Remount disposes all tickers and starts fresh ones, so every period gets an
// unarmed latch. Subscription streams stay open across a remount.
func (b *Board) Remount(ctx context.Context) error {
	b.lifecycle.Lock()
	b.unmountLocked()
	b.lifecycle.Unlock()
	return b.Mount(ctx)
}

// Reload replaces the period list. Tickers for periods still present keep
// running with their latch; removed periods are stopped, and their streams
// closed, before new ones start.
func (b *Board) Reload(ctx context.Context, periods []period.Period) error {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()

	keep := make(map[period.Period]bool, len(periods))
	for _, p := range periods {
		keep[p] = true
	}

	b.mu.Lock()
	mounted := b.mounted
	var stale []*PeriodTicker
	for p, t := range b.tickers {
		if !keep[p] {
			stale = append(stale, t)
			delete(b.tickers, p)
		}
	}
	b.periods = append([]period.Period(nil), periods...)
	b.mu.Unlock()

	for _, t := range stale {
		t.Stop()
	}

	b.mu.Lock()
	for _, t := range stale {
		delete(b.latest, t.Period())
	}
	b.mu.Unlock()
	b.closeSubs(func(p period.Period) bool { return !keep[p] })

	b.logger.WithFields(logrus.Fields{
		"periods": len(periods),
		"stopped": len(stale),
	}).Info("Board reloaded")

	if !mounted {
		return nil
	}
	for _, p := range periods {
		if err := b.startLocked(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// startLocked starts a ticker for p unless one is already running.
// Caller must hold b.lifecycle.
func (b *Board) startLocked(ctx context.Context, p period.Period) error {
	b.mu.Lock()
	_, running := b.tickers[p]
	b.mu.Unlock()
	if running {
		return nil
	}

	t := NewPeriodTicker(p, b.clock, b.notifier, b.interval, b.publish, b.logger)
	// Register before Start so a concurrent Unmount cannot miss it.
	b.mu.Lock()
	b.tickers[p] = t
	b.mu.Unlock()

	if err := t.Start(ctx); err != nil {
		return fmt.Errorf("start ticker for %s: %w", p, err)
	}
	return nil
}

// unmountLocked stops all tickers. Caller must hold b.lifecycle.
func (b *Board) unmountLocked() {
	b.mu.Lock()
	tickers := make([]*PeriodTicker, 0, len(b.tickers))
	for _, t := range b.tickers {
		tickers = append(tickers, t)
	}
	b.tickers = make(map[period.Period]*PeriodTicker)
	b.mounted = false
	b.mu.Unlock()

	// Tickers publish through b.mu, so they are stopped without holding it.
	for _, t := range tickers {
		t.Stop()
	}

	b.mu.Lock()
	b.latest = make(map[period.Period]Sample)
	b.mu.Unlock()
}

// closeSubs closes and forgets the streams whose period matches. Closing
// under b.mu keeps publish from sending on a closed channel.
func (b *Board) closeSubs(match func(period.Period) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		if match(sub.period) {
			delete(b.subs, id)
			sub.close()
		}
	}
}

// Snapshot returns every configured period in order with its latest sample.
func (b *Board) Snapshot() []Slot {
	b.mu.Lock()
	defer b.mu.Unlock()

	slots := make([]Slot, 0, len(b.periods))
	for _, p := range b.periods {
		s, ok := b.latest[p]
		slots = append(slots, Slot{Period: p, Sample: s, HasSample: ok})
	}
	return slots
}

// Subscribe streams samples for p. Samples are dropped when the buffer is
// full rather than stalling the ticker. The channel is closed by the
// returned cancel func, by Unmount, or by a Reload that drops p.
func (b *Board) Subscribe(p period.Period, buffer int) (<-chan Sample, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscription{period: p, ch: make(chan Sample, buffer)}

	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = sub
	if s, ok := b.latest[p]; ok {
		sub.ch <- s
	}
	b.mu.Unlock()

	return sub.ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		sub.close()
	}
}

func (b *Board) publish(s Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest[s.Period] = s
	for _, sub := range b.subs {
		if sub.period != s.Period {
			continue
		}
		select {
		case sub.ch <- s:
		default:
			b.logger.WithField("period", s.Period.String()).Debug("Subscriber buffer full, sample dropped")
		}
	}
}
