package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"million-ears/internal/rag"
)

var (
	ErrInvalidRequest = errors.New("chat: invalid request")
	ErrForbidden      = errors.New("chat: thread belongs to another user")
)

// Assistant answers a user prompt grounded in the documents indexed under
// the given namespace. The prior turns of the thread are passed along so
// the assistant can keep context.
type Assistant interface {
	Reply(ctx context.Context, namespace string, history []Message, prompt string) (string, error)
}

const maxThreadsPerList = 50

// Service owns chat threads and orchestrates the assistant round trip.
type Service struct {
	repo      Repository
	assistant Assistant
	clock     func() time.Time
}

func NewService(repo Repository, assistant Assistant) *Service {
	return &Service{repo: repo, assistant: assistant, clock: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

func (s *Service) CreateThread(ctx context.Context, userID, title string) (Thread, error) {
	if userID == "" {
		return Thread{}, fmt.Errorf("%w: missing user", ErrInvalidRequest)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New conversation"
	}
	now := s.clock().UTC()
	t := Thread{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertThread(ctx, t); err != nil {
		return Thread{}, fmt.Errorf("insert thread: %w", err)
	}
	return t, nil
}

// ListThreads returns the user's threads, most recently active first.
func (s *Service) ListThreads(ctx context.Context, userID string) ([]Thread, error) {
	return s.repo.ListThreads(ctx, userID, maxThreadsPerList)
}

func (s *Service) GetThread(ctx context.Context, userID, threadID string) (Thread, error) {
	t, err := s.repo.GetThread(ctx, threadID)
	if err != nil {
		return Thread{}, err
	}
	if t.UserID != userID {
		return Thread{}, ErrForbidden
	}
	return t, nil
}

func (s *Service) ListMessages(ctx context.Context, userID, threadID string) ([]Message, error) {
	if _, err := s.GetThread(ctx, userID, threadID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, threadID)
}

// SendMessage appends the user's turn, asks the assistant for a reply
// scoped to the user's document namespace, and persists both messages.
// The user turn is kept even if the assistant call fails.
func (s *Service) SendMessage(ctx context.Context, userID, threadID, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, fmt.Errorf("%w: message content is required", ErrInvalidRequest)
	}
	if _, err := s.GetThread(ctx, userID, threadID); err != nil {
		return Message{}, err
	}

	history, err := s.repo.ListMessages(ctx, threadID)
	if err != nil {
		return Message{}, fmt.Errorf("list messages: %w", err)
	}

	userMsg := Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Role:      RoleUser,
		Content:   content,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.repo.AppendMessage(ctx, userMsg); err != nil {
		return Message{}, fmt.Errorf("append message: %w", err)
	}

	reply, err := s.assistant.Reply(ctx, rag.Namespace(userID), history, content)
	if err != nil {
		return Message{}, fmt.Errorf("assistant reply: %w", err)
	}

	assistantMsg := Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Role:      RoleAssistant,
		Content:   reply,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.repo.AppendMessage(ctx, assistantMsg); err != nil {
		return Message{}, fmt.Errorf("append reply: %w", err)
	}
	return assistantMsg, nil
}
