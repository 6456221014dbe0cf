package memories

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("memories: not found")

// Repository is the persistence contract for memories.
// All reads are user-scoped; ownership checks live in the service.
type Repository interface {
	Insert(ctx context.Context, m Memory) error
	GetByID(ctx context.Context, id string) (Memory, error)
	ListByUser(ctx context.Context, userID string) ([]Memory, error)
	Patch(ctx context.Context, id, transcript, summary string) error
}
