package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"class_timer_bot/internal/domain/subscriber"
)

var ErrAlreadySubscribed = errors.New("chat is already subscribed")
var ErrNotSubscribed = errors.New("chat is not subscribed")

type SubscriptionService struct {
	subscriberRepo subscriber.Repository
}

func NewSubscriptionService(sr subscriber.Repository) *SubscriptionService {
	return &SubscriptionService{subscriberRepo: sr}
}

// Subscribe enables notifications for a chat, reactivating a previous
// subscription if one exists.
func (s *SubscriptionService) Subscribe(ctx context.Context, chatID int64, firstName string, username string) (*subscriber.Subscriber, error) {
	var uname sql.NullString
	if username != "" {
		uname = sql.NullString{String: username, Valid: true}
	}

	existing, err := s.subscriberRepo.GetByChatID(ctx, chatID)
	if err == nil {
		if existing.IsActive {
			return existing, ErrAlreadySubscribed
		}
		existing.IsActive = true
		existing.FirstName = firstName
		existing.Username = uname
		if err := s.subscriberRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate subscriber: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, subscriber.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing subscriber: %w", err)
	}

	sub := &subscriber.Subscriber{
		ChatID:    chatID,
		FirstName: firstName,
		Username:  uname,
		IsActive:  true,
	}
	if err := s.subscriberRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, subscriber.ErrDuplicateChatID) { // lost a race with a concurrent /start
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}
	return sub, nil
}

// Unsubscribe deactivates a chat's subscription.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, chatID int64) (*subscriber.Subscriber, error) {
	existing, err := s.subscriberRepo.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, subscriber.ErrNotFound) {
			return nil, ErrNotSubscribed
		}
		return nil, fmt.Errorf("failed to get subscriber for removal: %w", err)
	}
	if !existing.IsActive {
		return existing, ErrNotSubscribed
	}

	existing.IsActive = false
	if err := s.subscriberRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to deactivate subscriber: %w", err)
	}
	return existing, nil
}

// IsSubscribed reports whether chatID currently receives notifications.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, chatID int64) (bool, error) {
	existing, err := s.subscriberRepo.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, subscriber.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get subscriber: %w", err)
	}
	return existing.IsActive, nil
}
