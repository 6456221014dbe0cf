package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultQueueKey = "rag:ingest"

// Queue is a redis-list backed ingest queue. Producers LPUSH jobs, the worker
// BRPOPs them, so webhook handling never waits on the indexer.
type Queue struct {
	rdb *redis.Client
	key string
}

func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb, key: defaultQueueKey}
}

func (q *Queue) Schedule(ctx context.Context, job Job) error {
	if q.rdb == nil {
		return fmt.Errorf("rag: redis client is nil")
	}
	if job.CallID == "" {
		return fmt.Errorf("rag: job call_id is required")
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("rag: marshal job: %w", err)
	}
	return q.rdb.LPush(ctx, q.key, payload).Err()
}

// Dequeue blocks up to timeout for the next job. ok is false when the wait
// timed out without a job.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (Job, bool, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Job{}, false, nil
		}
		return Job{}, false, err
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return Job{}, false, fmt.Errorf("rag: unexpected brpop reply length %d", len(res))
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return Job{}, false, fmt.Errorf("rag: unmarshal job: %w", err)
	}
	return job, true, nil
}
