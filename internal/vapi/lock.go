package vapi

import (
	"context"
	"time"

	"million-ears/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const reconcileLockTTL = 15 * time.Second

// ReconcileLock serializes webhook processing per provider call id, so two
// events for the same call arriving together don't interleave their
// lookup-then-update sequences.
//
// The lock is advisory. Acquisition failures (redis down, lock held) let
// processing proceed: the store-level transcript guard stays the correctness
// backstop, and webhook availability must not depend on redis.
type ReconcileLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReconcileLock(rdb *redis.Client) *ReconcileLock {
	return &ReconcileLock{rdb: rdb, ttl: reconcileLockTTL}
}

// Acquire best-effort locks the call id and returns a release func, which is
// always safe to call.
func (l *ReconcileLock) Acquire(ctx context.Context, vapiCallID string) func() {
	noop := func() {}
	if l == nil || l.rdb == nil || vapiCallID == "" {
		return noop
	}

	key := "vapi:reconcile:" + vapiCallID
	token := uuid.NewString()
	ok, err := utils.AcquireMutex(ctx, l.rdb, key, token, l.ttl)
	if err != nil || !ok {
		return noop
	}
	return func() {
		_ = utils.ReleaseMutex(context.WithoutCancel(ctx), l.rdb, key, token)
	}
}
