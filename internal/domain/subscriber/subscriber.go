package subscriber

import (
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("subscriber not found")
var ErrDuplicateChatID = errors.New("subscriber with this chat ID already exists")

// Subscriber is a Telegram chat that receives period notifications.
type Subscriber struct {
	ID        int64
	ChatID    int64
	FirstName string
	Username  sql.NullString // Telegram usernames are optional
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
