package rag

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Worker drains the ingest queue and writes each transcript into the index.
// Indexing is fire-and-forget from the webhook's perspective: a failed job is
// logged and dropped, never surfaced back to the provider.
type Worker struct {
	queue   *Queue
	indexer Indexer
	log     *slog.Logger

	popTimeout time.Duration
}

func NewWorker(queue *Queue, indexer Indexer, log *slog.Logger) *Worker {
	return &Worker{
		queue:      queue,
		indexer:    indexer,
		log:        log,
		popTimeout: 5 * time.Second,
	}
}

// Run consumes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, ok, err := w.queue.Dequeue(ctx, w.popTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			w.log.Error("rag dequeue failed", "err", err)
			// Back off briefly so a broken redis doesn't spin the loop.
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if !ok {
			continue
		}

		w.handle(ctx, job)
	}
}

func (w *Worker) handle(ctx context.Context, job Job) {
	namespace := Namespace(job.UserID)
	text := FormatDocument(job.FamilyMemberName, job.Transcript)

	err := w.indexer.Add(ctx, namespace, text, Metadata{
		CallID:           job.CallID,
		Timestamp:        job.Timestamp,
		FamilyMemberName: job.FamilyMemberName,
	})
	if err != nil {
		w.log.Error("rag index failed", "call_id", job.CallID, "namespace", namespace, "err", err)
		return
	}
	w.log.Debug("rag indexed", "call_id", job.CallID, "namespace", namespace)
}
