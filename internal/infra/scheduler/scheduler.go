package scheduler

import (
	"context"
	"fmt"
	"time"

	"class_timer_bot/internal/app"
	"class_timer_bot/internal/domain/notification"
	"class_timer_bot/internal/domain/schedule"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Remounter restarts every period timer; satisfied by *app.Board.
type Remounter interface {
	Remount(ctx context.Context) error
}

// DaySource reports today's day key and classes and drops per-chat day
// selections; satisfied by *app.ScheduleService.
type DaySource interface {
	Today() (string, []schedule.Entry)
	ResetSelections()
}

// TimetableScheduler runs the calendar jobs around the period timers:
// a day-start remount that re-arms every ending-soon latch and a
// morning digest of today's classes.
type TimetableScheduler struct {
	cronEngine       *cron.Cron
	board            Remounter
	days             DaySource
	notifier         notification.Notifier
	logger           *logrus.Entry
	cronSpecDayStart string
	cronSpecDigest   string
}

func NewTimetableScheduler(
	board Remounter,
	days DaySource,
	notifier notification.Notifier,
	logger *logrus.Entry,
	cronSpecDayStart string, // e.g. "0 0 * * *"
	cronSpecDigest string, // e.g. "0 8 * * 1-5"; empty disables the digest
) *TimetableScheduler {
	return &TimetableScheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)),
		board:            board,
		days:             days,
		notifier:         notifier,
		logger:           logger,
		cronSpecDayStart: cronSpecDayStart,
		cronSpecDigest:   cronSpecDigest,
	}
}

func (s *TimetableScheduler) Start() error {
	s.logger.Info("Starting timetable scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecDayStart, s.remountForNewDay); err != nil {
		return fmt.Errorf("could not add day-start job %q: %w", s.cronSpecDayStart, err)
	}

	if s.cronSpecDigest != "" {
		if _, err := s.cronEngine.AddFunc(s.cronSpecDigest, s.sendDigest); err != nil {
			return fmt.Errorf("could not add digest job %q: %w", s.cronSpecDigest, err)
		}
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Timetable scheduler started")
	return nil
}

func (s *TimetableScheduler) remountForNewDay() {
	s.logger.Info("Day-start job triggered, remounting period timers")
	s.days.ResetSelections()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.board.Remount(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to remount period timers")
	}
}

func (s *TimetableScheduler) sendDigest() {
	day, entries := s.days.Today()
	if len(entries) == 0 {
		s.logger.WithField("day", day).Info("No classes today, skipping digest")
		return
	}
	s.notifier.Notify(context.Background(), app.FormatDay(day, entries), notification.PriorityDefault)
	s.logger.WithFields(logrus.Fields{"day": day, "classes": len(entries)}).Info("Digest queued")
}

func (s *TimetableScheduler) Stop() {
	s.logger.Info("Stopping timetable scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Timetable scheduler gracefully stopped")
}
