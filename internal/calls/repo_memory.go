package calls

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu    sync.Mutex
	byID  map[string]Call
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Call)}
}

func (r *MemoryRepo) Insert(ctx context.Context, c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return Call{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) GetByVapiCallID(ctx context.Context, vapiCallID string) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, id := range r.order {
		c := r.byID[id]
		if c.VapiCallID == vapiCallID && vapiCallID != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepo) SetVapiCallID(ctx context.Context, id, vapiCallID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	c.VapiCallID = vapiCallID
	c.UpdatedAt = time.Now().UTC()
	r.byID[id] = c
	return nil
}

func (r *MemoryRepo) UpdateStatusAndTranscript(ctx context.Context, id string, status Status, transcript, rawPayload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	t := transcript
	c.Status = status
	c.Transcript = &t
	if rawPayload != "" {
		c.RawPayload = rawPayload
	}
	c.UpdatedAt = time.Now().UTC()
	r.byID[id] = c
	return nil
}

func (r *MemoryRepo) UpdateStatusIfNoTranscript(ctx context.Context, id string, status Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if c.Transcript != nil {
		return false, nil
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	r.byID[id] = c
	return true, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, id := range r.order {
		c := r.byID[id]
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(cs []Call) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].CreatedAt.After(cs[j].CreatedAt)
	})
}
