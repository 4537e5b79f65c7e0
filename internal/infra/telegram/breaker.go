package telegram

import (
	"errors"
	"time"

	domainTelegram "class_timer_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gopkg.in/telebot.v3"
)

const breakerTripAfter = 5

// BreakerClient guards a Client with a circuit breaker. After
// breakerTripAfter consecutive failures sends fail fast with
// gobreaker.ErrOpenState until the cooldown passes, so an unreachable
// Telegram API does not stall every broadcast for the full request timeout.
type BreakerClient struct {
	next domainTelegram.Client
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerClient(next domainTelegram.Client, cooldown time.Duration, logger *logrus.Entry) *BreakerClient {
	return &BreakerClient{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "telegram",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerTripAfter
			},
			IsSuccessful: isBreakerSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("Circuit breaker state changed")
			},
		}),
	}
}

func (c *BreakerClient) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.next.SendMessage(chatID, text, options)
	})
	return err
}

// isBreakerSuccess treats per-chat rejections as healthy responses: a user
// who blocked the bot says nothing about the API being reachable.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var tgErr *telebot.Error
	if errors.As(err, &tgErr) {
		return tgErr.Code == 400 || tgErr.Code == 403
	}
	return false
}
