package calls

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("calls: not found")

// Repository is the persistence contract for call records.
//
// Rows are never deleted by this service. Status and transcript are the only
// mutable business fields; both are written through the explicit update
// methods below so the reconciliation guard lives in one place.
type Repository interface {
	Insert(ctx context.Context, c Call) error
	GetByID(ctx context.Context, id string) (Call, error)

	// GetByVapiCallID returns all records correlated with a provider call id,
	// oldest first. Zero matches is not an error.
	GetByVapiCallID(ctx context.Context, vapiCallID string) ([]Call, error)

	SetVapiCallID(ctx context.Context, id, vapiCallID string) error

	// UpdateStatusAndTranscript applies a terminal end-of-call reconciliation:
	// status and transcript are always written, transcript possibly as the
	// empty string. rawPayload, when non-empty, replaces the stored provider
	// payload for ops visibility.
	UpdateStatusAndTranscript(ctx context.Context, id string, status Status, transcript, rawPayload string) error

	// UpdateStatusIfNoTranscript applies a status-only update if and only if
	// no transcript has been recorded yet. It reports whether the update was
	// applied. The condition is evaluated by the store, not from a caller
	// snapshot, so two racing events cannot both win.
	UpdateStatusIfNoTranscript(ctx context.Context, id string, status Status) (bool, error)

	ListByUser(ctx context.Context, userID string) ([]Call, error)
	ListAll(ctx context.Context) ([]Call, error)
}
