// Package notification defines the outbound alert channel used by the period
// engine.
package notification

import "context"

// Priority is a delivery hint. How it maps to a platform channel is the
// Notifier's concern.
type Priority string

const (
	PriorityDefault Priority = "DEFAULT"
	PriorityUrgent  Priority = "URGENT"
)

// Notifier delivers a message. Notify is fire-and-forget: it must return
// promptly and never block the caller on delivery.
type Notifier interface {
	Notify(ctx context.Context, message string, priority Priority)
}
