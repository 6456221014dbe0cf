package chat

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("chat: not found")

// Repository is the persistence contract for threads and messages.
type Repository interface {
	InsertThread(ctx context.Context, t Thread) error
	GetThread(ctx context.Context, id string) (Thread, error)
	ListThreads(ctx context.Context, userID string, limit int) ([]Thread, error)

	// AppendMessage inserts a message and bumps the thread's updated_at to the
	// message's CreatedAt, atomically. A missing thread is ErrNotFound and
	// leaves no message behind.
	AppendMessage(ctx context.Context, m Message) error
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
}
