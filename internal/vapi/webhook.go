package vapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"million-ears/internal/calls"
	"million-ears/internal/rag"
	"million-ears/pkg/logger"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds inbound payloads; transcripts are text, 1MiB is ample.
const maxWebhookBody = 1 << 20

// WebhookHandler reconciles inbound Vapi events into call records.
//
// Contract with the provider: every delivery gets a response. Success and
// business-level no-ops (unknown call id, unknown event type) are both 200;
// any processing fault is flattened to one generic 500 shape. Typed errors
// stay internal so tests can assert on causes without the HTTP encoding.
type WebhookHandler struct {
	Calls  *calls.Service
	Ingest rag.Scheduler

	// Lock is optional; nil disables per-call serialization.
	Lock *ReconcileLock

	Now func() time.Time
}

func (h WebhookHandler) Handle(c *gin.Context) {
	log := logger.FromGin(c)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		log.Warn("vapi webhook body read failed", "err", err)
		respondFailure(c)
		return
	}

	ev, err := ParseEvent(c.ContentType(), body)
	if err != nil {
		log.Warn("vapi webhook parse failed", "err", err)
		respondFailure(c)
		return
	}

	if err := h.process(c.Request.Context(), log, ev, body); err != nil {
		log.Error("vapi webhook processing failed", "err", err)
		respondFailure(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Webhook processed successfully"})
}

func (h WebhookHandler) process(ctx context.Context, log *slog.Logger, ev Event, raw []byte) error {
	switch e := ev.(type) {
	case EndOfCallReport:
		return h.processEndOfCallReport(ctx, log, e, raw)
	case StatusUpdate:
		return h.processStatusUpdate(ctx, log, e)
	default:
		// Forward-compatible: unknown event types are acknowledged, not failed.
		return nil
	}
}

func (h WebhookHandler) processEndOfCallReport(ctx context.Context, log *slog.Logger, e EndOfCallReport, raw []byte) error {
	if e.CallID == "" {
		return nil
	}
	release := h.Lock.Acquire(ctx, e.CallID)
	defer release()

	call, ok, err := h.Calls.LookupByVapiCallID(ctx, e.CallID)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("vapi report for untracked call", "vapi_call_id", e.CallID)
		return nil
	}

	out := Reconcile(call, e)
	if !out.Act {
		return nil
	}
	if err := h.Calls.ApplyTerminalReport(ctx, call.ID, out.Status, out.Transcript, string(raw)); err != nil {
		return err
	}
	log.Info("call finalized", "call_id", call.ID, "status", out.Status, "ended_reason", e.EndedReason)

	if out.Status == calls.StatusCompleted && out.Transcript != "" {
		h.scheduleIngest(ctx, log, call, out.Transcript)
	}
	return nil
}

func (h WebhookHandler) processStatusUpdate(ctx context.Context, log *slog.Logger, e StatusUpdate) error {
	if e.CallID == "" || !e.Ended() {
		return nil
	}
	release := h.Lock.Acquire(ctx, e.CallID)
	defer release()

	call, ok, err := h.Calls.LookupByVapiCallID(ctx, e.CallID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	out := Reconcile(call, e)
	if !out.Act {
		return nil
	}
	applied, err := h.Calls.ApplyEndedStatus(ctx, call.ID, out.Status)
	if err != nil {
		return err
	}
	if !applied {
		// A terminal report won the race after our snapshot; its outcome stands.
		log.Debug("status update skipped, record already finalized", "call_id", call.ID)
		return nil
	}
	log.Info("call status updated", "call_id", call.ID, "status", out.Status)
	return nil
}

// scheduleIngest enqueues the transcript for asynchronous indexing. Scheduling
// failures are logged and swallowed: the provider already got its outcome and
// downstream ingestion must never change the webhook response.
func (h WebhookHandler) scheduleIngest(ctx context.Context, log *slog.Logger, call calls.Call, transcript string) {
	if h.Ingest == nil {
		return
	}
	now := h.Now
	if now == nil {
		now = time.Now
	}

	err := h.Ingest.Schedule(ctx, rag.Job{
		UserID:           call.UserID,
		FamilyMemberName: call.FamilyMemberName,
		Transcript:       transcript,
		CallID:           call.ID,
		Timestamp:        now().UnixMilli(),
	})
	if err != nil {
		log.Error("rag ingest scheduling failed", "call_id", call.ID, "err", err)
	}
}

func respondFailure(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log request"})
}
