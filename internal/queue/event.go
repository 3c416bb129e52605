// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// UserAddedEvent is published after a successful registration. It carries
// enough for downstream consumers (cache invalidation, notifications)
// without querying the primary database. The password hash never leaves
// the database through this path.
type UserAddedEvent struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
