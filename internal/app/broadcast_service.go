package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"class_timer_bot/internal/domain/notification"
	"class_timer_bot/internal/domain/subscriber"
	domainTelegram "class_timer_bot/internal/domain/telegram"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v3"
)

const (
	defaultQueueSize = 64
	maxParallelSends = 8
)

type queuedMessage struct {
	text     string
	priority notification.Priority
}

// BroadcastService implements notification.Notifier by delivering each
// message to every active subscriber. Notify only enqueues; Run performs the
// delivery so tickers never wait on the network.
type BroadcastService struct {
	subscriberRepo subscriber.Repository
	telegramClient domainTelegram.Client
	logger         *logrus.Entry
	queue          chan queuedMessage
}

func NewBroadcastService(
	sr subscriber.Repository,
	tc domainTelegram.Client,
	logger *logrus.Entry,
	queueSize int,
) *BroadcastService {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &BroadcastService{
		subscriberRepo: sr,
		telegramClient: tc,
		logger:         logger,
		queue:          make(chan queuedMessage, queueSize),
	}
}

// Notify enqueues message for delivery. If the queue is full the message is
// dropped and logged.
func (s *BroadcastService) Notify(_ context.Context, message string, priority notification.Priority) {
	select {
	case s.queue <- queuedMessage{text: message, priority: priority}:
	default:
		s.logger.WithField("priority", priority).Warn("Notification queue full, message dropped")
	}
}

// Run delivers queued messages until ctx is done.
func (s *BroadcastService) Run(ctx context.Context) {
	s.logger.Info("Broadcast worker started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Broadcast worker stopped")
			return
		case msg := <-s.queue:
			if err := s.Broadcast(ctx, msg.text, msg.priority); err != nil {
				s.logger.WithError(err).Error("Broadcast finished with errors")
			}
		}
	}
}

// Broadcast sends message to all active subscribers and waits for every send.
// A failed recipient does not stop delivery to the others; the first error is
// returned.
func (s *BroadcastService) Broadcast(ctx context.Context, message string, priority notification.Priority) error {
	logCtx := s.logger.WithField("broadcast_id", ulid.Make().String())

	subs, err := s.subscriberRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active subscribers: %w", err)
	}
	if len(subs) == 0 {
		logCtx.Debug("No active subscribers, nothing to send")
		return nil
	}

	var g errgroup.Group
	g.SetLimit(maxParallelSends)
	var failed atomic.Int32

	for _, sub := range subs {
		g.Go(func() error {
			if err := s.telegramClient.SendMessage(sub.ChatID, message, sendOptions(priority)); err != nil {
				failed.Add(1)
				logCtx.WithError(err).WithField("chat_id", sub.ChatID).Error("Failed to deliver notification")
				return fmt.Errorf("send to chat %d: %w", sub.ChatID, err)
			}
			return nil
		})
	}
	err = g.Wait()

	logCtx.WithFields(logrus.Fields{
		"priority":   priority,
		"recipients": len(subs),
		"failed":     failed.Load(),
	}).Info("Notification broadcast")
	return err
}

// sendOptions maps the priority hint onto Telegram: only urgent messages
// make a sound.
func sendOptions(priority notification.Priority) *telebot.SendOptions {
	return &telebot.SendOptions{
		DisableNotification: priority != notification.PriorityUrgent,
	}
}
