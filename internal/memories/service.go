package memories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidRequest = errors.New("memories: invalid request")
	ErrForbidden      = errors.New("memories: memory belongs to another user")
)

// Service owns memory records. Every operation is scoped to the
// authenticated user; cross-user access returns ErrForbidden.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// CreateRequest carries the caller-supplied fields for a new memory.
type CreateRequest struct {
	Name            string `json:"name"`
	PhoneNumber     string `json:"phone_number"`
	CallID          string `json:"call_id"`
	CustomQuestions string `json:"custom_questions"`
	Transcript      string `json:"transcript"`
	Summary         string `json:"summary"`
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (Memory, error) {
	if userID == "" {
		return Memory{}, fmt.Errorf("%w: missing user", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Name) == "" {
		return Memory{}, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return Memory{}, fmt.Errorf("%w: phone_number is required", ErrInvalidRequest)
	}

	m := Memory{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            strings.TrimSpace(req.Name),
		PhoneNumber:     strings.TrimSpace(req.PhoneNumber),
		CallID:          req.CallID,
		CustomQuestions: req.CustomQuestions,
		Transcript:      req.Transcript,
		Summary:         req.Summary,
		CreatedAt:       s.clock().UTC(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return Memory{}, fmt.Errorf("insert memory: %w", err)
	}
	return m, nil
}

// ListByUser returns the user's memories, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Memory, error) {
	return s.repo.ListByUser(ctx, userID)
}

// UpdateRequest patches transcript and summary. Empty fields are left as is.
type UpdateRequest struct {
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
}

// Update attaches a transcript or summary to an existing memory after
// verifying the memory belongs to the requesting user.
func (s *Service) Update(ctx context.Context, userID, id string, req UpdateRequest) (Memory, error) {
	if id == "" {
		return Memory{}, fmt.Errorf("%w: missing memory id", ErrInvalidRequest)
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Memory{}, err
	}
	if m.UserID != userID {
		return Memory{}, ErrForbidden
	}
	if err := s.repo.Patch(ctx, id, req.Transcript, req.Summary); err != nil {
		return Memory{}, fmt.Errorf("patch memory: %w", err)
	}
	return s.repo.GetByID(ctx, id)
}
