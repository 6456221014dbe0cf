package calls

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRequest = errors.New("calls: invalid request")

// Placer starts an outbound call at the voice provider.
// Implemented by the vapi adapter; kept as an interface so call orchestration
// never touches provider HTTP details.
type Placer interface {
	PlaceCall(ctx context.Context, req PlaceCallRequest) (providerCallID string, err error)
}

type PlaceCallRequest struct {
	Name            string
	PhoneNumber     string
	CustomQuestions string
}

type Service struct {
	repo   Repository
	placer Placer
	clock  func() time.Time
}

func NewService(repo Repository, placer Placer) *Service {
	return &Service{repo: repo, placer: placer, clock: time.Now}
}

type InitiateCallRequest struct {
	UserID           string
	Name             string
	PhoneNumber      string
	Question         string
	FamilyMemberName string
}

func (r InitiateCallRequest) validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if len(r.PhoneNumber) < 10 {
		return fmt.Errorf("%w: valid phone number is required", ErrInvalidRequest)
	}
	if r.Question == "" {
		return fmt.Errorf("%w: memory prompt is required", ErrInvalidRequest)
	}
	return nil
}

// InitiateCall records a pending call, places it at the provider, and
// correlates the record with the provider call id. The record stays pending
// until webhook events move it; a placement failure marks it failed so the
// dashboard never shows a permanently pending ghost row.
func (s *Service) InitiateCall(ctx context.Context, req InitiateCallRequest) (Call, error) {
	if err := req.validate(); err != nil {
		return Call{}, err
	}
	if s.repo == nil {
		return Call{}, errors.New("calls: repository not configured")
	}
	if s.placer == nil {
		return Call{}, errors.New("calls: placer not configured")
	}

	now := s.clock().UTC()
	c := Call{
		ID:               uuid.NewString(),
		PhoneNumber:      req.PhoneNumber,
		Name:             req.Name,
		Question:         req.Question,
		Status:           StatusPending,
		UserID:           req.UserID,
		FamilyMemberName: req.FamilyMemberName,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if c.FamilyMemberName == "" {
		c.FamilyMemberName = req.Name
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return Call{}, err
	}

	providerCallID, err := s.placer.PlaceCall(ctx, PlaceCallRequest{
		Name:            req.Name,
		PhoneNumber:     req.PhoneNumber,
		CustomQuestions: req.Question,
	})
	if err != nil {
		if _, uerr := s.repo.UpdateStatusIfNoTranscript(ctx, c.ID, StatusFailed); uerr == nil {
			c.Status = StatusFailed
		}
		return c, fmt.Errorf("calls: placement failed: %w", err)
	}

	if err := s.repo.SetVapiCallID(ctx, c.ID, providerCallID); err != nil {
		return c, err
	}
	c.VapiCallID = providerCallID
	return c, nil
}

// LookupByVapiCallID resolves a provider call id to at most one record.
// Zero matches is reported via ok=false, not an error: an untracked call is
// expected traffic, not a failure. Multiple matches resolve to the oldest.
func (s *Service) LookupByVapiCallID(ctx context.Context, vapiCallID string) (Call, bool, error) {
	if vapiCallID == "" {
		return Call{}, false, nil
	}
	matches, err := s.repo.GetByVapiCallID(ctx, vapiCallID)
	if err != nil {
		return Call{}, false, err
	}
	if len(matches) == 0 {
		return Call{}, false, nil
	}
	return matches[0], true, nil
}

// ApplyTerminalReport writes the authoritative end-of-call outcome. It always
// acts: the transcript column is set even when empty, which marks the record
// as finalized and blocks later status-only updates.
func (s *Service) ApplyTerminalReport(ctx context.Context, id string, status Status, transcript, rawPayload string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: terminal report must carry a terminal status, got %q", ErrInvalidRequest, status)
	}
	return s.repo.UpdateStatusAndTranscript(ctx, id, status, transcript, rawPayload)
}

// ApplyEndedStatus writes a status-only update unless the record has already
// been finalized by a terminal report. Reports whether the update took effect.
func (s *Service) ApplyEndedStatus(ctx context.Context, id string, status Status) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("%w: ended status must be terminal, got %q", ErrInvalidRequest, status)
	}
	return s.repo.UpdateStatusIfNoTranscript(ctx, id, status)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Call, error) {
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]Call, error) {
	return s.repo.ListAll(ctx)
}

// SummaryByUser rolls up a user's calls per status for the dashboard.
func (s *Service) SummaryByUser(ctx context.Context, userID string) (Summary, error) {
	rows, err := s.ListByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	var out Summary
	for _, c := range rows {
		out.Total++
		switch c.Status {
		case StatusPending:
			out.Pending++
		case StatusInProgress:
			out.InProgress++
		case StatusCompleted:
			out.Completed++
		case StatusFailed:
			out.Failed++
		}
	}
	return out, nil
}
