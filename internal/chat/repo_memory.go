package chat

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu       sync.Mutex
	threads  map[string]Thread
	messages map[string][]Message
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		threads:  make(map[string]Thread),
		messages: make(map[string][]Message),
	}
}

func (r *MemoryRepo) InsertThread(ctx context.Context, t Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threads[t.ID] = t
	return nil
}

func (r *MemoryRepo) GetThread(ctx context.Context, id string) (Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return Thread{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) ListThreads(ctx context.Context, userID string, limit int) ([]Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Thread
	for _, t := range r.threads {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) AppendMessage(ctx context.Context, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[m.ThreadID]
	if !ok {
		return ErrNotFound
	}
	t.UpdatedAt = m.CreatedAt
	r.threads[m.ThreadID] = t
	r.messages[m.ThreadID] = append(r.messages[m.ThreadID], m)
	return nil
}

func (r *MemoryRepo) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[threadID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
