package memories

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu    sync.Mutex
	byID  map[string]Memory
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Memory)}
}

func (r *MemoryRepo) Insert(ctx context.Context, m Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = m
	r.order = append(r.order, m.ID)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return Memory{}, ErrNotFound
	}
	return m, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Memory
	for _, id := range r.order {
		m := r.byID[id]
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Patch(ctx context.Context, id, transcript, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if transcript != "" {
		m.Transcript = transcript
	}
	if summary != "" {
		m.Summary = summary
	}
	r.byID[id] = m
	return nil
}
