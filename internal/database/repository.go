package database

import (
	"context"
	"errors"
)

// ErrStoreUnavailable wraps any driver failure so callers can treat the
// store as best-effort without inspecting driver error types.
var ErrStoreUnavailable = errors.New("message store unavailable")

type MessageRepository interface {
	Ping() error
	// CreateMessage durably records a message and returns the stored row
	// with its assigned id and timestamp.
	CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error)
	// MessagesByRoom returns a room's messages in insertion order, oldest
	// first. A limit of zero means no limit.
	MessagesByRoom(ctx context.Context, room string, limit int) ([]Message, error)
	Close() error
}
