package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeAssistant struct {
	namespace string
	history   []Message
	prompt    string
	reply     string
	err       error
}

func (f *fakeAssistant) Reply(ctx context.Context, namespace string, history []Message, prompt string) (string, error) {
	f.namespace = namespace
	f.history = history
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestService(assistant *fakeAssistant) *Service {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	return NewService(NewMemoryRepo(), assistant).WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
}

func TestService_CreateThread_DefaultsTitle(t *testing.T) {
	svc := newTestService(&fakeAssistant{})
	ctx := context.Background()

	th, err := svc.CreateThread(ctx, "user-1", "  ")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}
	if th.Title != "New conversation" {
		t.Fatalf("unexpected title: %q", th.Title)
	}
	if _, err := svc.CreateThread(ctx, "", "x"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestService_ListThreads_NewestFirstAndCapped(t *testing.T) {
	svc := newTestService(&fakeAssistant{})
	ctx := context.Background()

	for i := 0; i < maxThreadsPerList+5; i++ {
		if _, err := svc.CreateThread(ctx, "user-1", fmt.Sprintf("thread %d", i)); err != nil {
			t.Fatalf("create thread %d: %v", i, err)
		}
	}

	list, err := svc.ListThreads(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != maxThreadsPerList {
		t.Fatalf("expected %d threads, got %d", maxThreadsPerList, len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].UpdatedAt.After(list[i-1].UpdatedAt) {
			t.Fatalf("threads out of order at %d", i)
		}
	}
}

func TestService_GetThread_Ownership(t *testing.T) {
	svc := newTestService(&fakeAssistant{})
	ctx := context.Background()

	th, err := svc.CreateThread(ctx, "user-1", "mine")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}

	if _, err := svc.GetThread(ctx, "user-2", th.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetThread(ctx, "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_SendMessage_RoundTrip(t *testing.T) {
	assistant := &fakeAssistant{reply: "She grew up on a farm in Ohio."}
	svc := newTestService(assistant)
	ctx := context.Background()

	th, err := svc.CreateThread(ctx, "user-1", "family history")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}

	reply, err := svc.SendMessage(ctx, "user-1", th.ID, "Where did grandma grow up?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Role != RoleAssistant || reply.Content != assistant.reply {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if assistant.namespace != "user-1" {
		t.Fatalf("unexpected namespace: %q", assistant.namespace)
	}
	if assistant.prompt != "Where did grandma grow up?" {
		t.Fatalf("unexpected prompt: %q", assistant.prompt)
	}
	if len(assistant.history) != 0 {
		t.Fatalf("expected empty history on first turn, got %d", len(assistant.history))
	}

	msgs, err := svc.ListMessages(ctx, "user-1", th.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	// Second turn sees the first two messages as history.
	if _, err := svc.SendMessage(ctx, "user-1", th.ID, "What did she do there?"); err != nil {
		t.Fatalf("second send: %v", err)
	}
	if len(assistant.history) != 2 {
		t.Fatalf("expected 2 history messages, got %d", len(assistant.history))
	}
}

func TestService_SendMessage_KeepsUserTurnOnAssistantFailure(t *testing.T) {
	assistant := &fakeAssistant{err: errors.New("model unavailable")}
	svc := newTestService(assistant)
	ctx := context.Background()

	th, err := svc.CreateThread(ctx, "user-1", "x")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}

	if _, err := svc.SendMessage(ctx, "user-1", th.ID, "hello"); err == nil {
		t.Fatalf("expected assistant error")
	}

	msgs, err := svc.ListMessages(ctx, "user-1", th.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != RoleUser {
		t.Fatalf("expected user turn to persist, got %+v", msgs)
	}
}

func TestService_SendMessage_BumpsThreadActivity(t *testing.T) {
	svc := newTestService(&fakeAssistant{reply: "ok"})
	ctx := context.Background()

	th, err := svc.CreateThread(ctx, "user-1", "x")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}

	reply, err := svc.SendMessage(ctx, "user-1", th.ID, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	got, err := svc.GetThread(ctx, "user-1", th.ID)
	if err != nil {
		t.Fatalf("get thread: %v", err)
	}
	if !got.UpdatedAt.Equal(reply.CreatedAt) {
		t.Fatalf("thread activity not bumped with the reply: thread=%v reply=%v", got.UpdatedAt, reply.CreatedAt)
	}
	if !got.UpdatedAt.After(th.UpdatedAt) {
		t.Fatalf("expected updated_at to advance, got %v <= %v", got.UpdatedAt, th.UpdatedAt)
	}
}

func TestMemoryRepo_AppendMessage_RequiresThread(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	err := repo.AppendMessage(ctx, Message{ID: "m1", ThreadID: "missing", Role: RoleUser, Content: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	msgs, err := repo.ListMessages(ctx, "missing")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no orphaned messages, got %d", len(msgs))
	}
}

func TestService_SendMessage_Validation(t *testing.T) {
	svc := newTestService(&fakeAssistant{reply: "ok"})
	ctx := context.Background()

	th, err := svc.CreateThread(ctx, "user-1", "x")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}

	if _, err := svc.SendMessage(ctx, "user-1", th.ID, "   "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, "user-2", th.ID, "hi"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
