package subscriber

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Subscribers.
type Repository interface {
	Create(ctx context.Context, s *Subscriber) error
	GetByChatID(ctx context.Context, chatID int64) (*Subscriber, error)
	Update(ctx context.Context, s *Subscriber) error // FirstName, Username, IsActive
	ListActive(ctx context.Context) ([]*Subscriber, error)
}
