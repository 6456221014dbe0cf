package vapi

import (
	"errors"
	"testing"

	"million-ears/internal/calls"
)

func TestParseEvent_EndOfCallReport(t *testing.T) {
	body := []byte(`{"message":{"type":"end-of-call-report","call":{"id":"v1"},"endedReason":"customer-ended-call","transcript":"hello"}}`)
	ev, err := ParseEvent("application/json", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	report, ok := ev.(EndOfCallReport)
	if !ok {
		t.Fatalf("expected EndOfCallReport, got %T", ev)
	}
	if report.CallID != "v1" || report.EndedReason != "customer-ended-call" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Transcript() != "hello" {
		t.Fatalf("unexpected transcript: %q", report.Transcript())
	}
}

func TestParseEvent_TranscriptFallsBackToArtifact(t *testing.T) {
	body := []byte(`{"message":{"type":"end-of-call-report","call":{"id":"v1"},"endedReason":"x","artifact":{"transcript":"hello"}}}`)
	ev, err := ParseEvent("application/json; charset=utf-8", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	report := ev.(EndOfCallReport)
	if report.Transcript() != "hello" {
		t.Fatalf("expected artifact fallback, got %q", report.Transcript())
	}
}

func TestParseEvent_MissingTranscriptIsEmptyString(t *testing.T) {
	body := []byte(`{"message":{"type":"end-of-call-report","call":{"id":"v1"},"endedReason":"x"}}`)
	ev, _ := ParseEvent("application/json", body)
	if got := ev.(EndOfCallReport).Transcript(); got != "" {
		t.Fatalf("expected empty transcript, got %q", got)
	}
}

func TestParseEvent_StatusUpdate(t *testing.T) {
	body := []byte(`{"message":{"type":"status-update","call":{"id":"v1"},"status":"ended","endedReason":"assistant-ended-call"}}`)
	ev, err := ParseEvent("application/json", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	upd, ok := ev.(StatusUpdate)
	if !ok {
		t.Fatalf("expected StatusUpdate, got %T", ev)
	}
	if !upd.Ended() || upd.EndedReason != "assistant-ended-call" {
		t.Fatalf("unexpected update: %+v", upd)
	}
}

func TestParseEvent_UnknownTypeIsUnhandled(t *testing.T) {
	body := []byte(`{"message":{"type":"speech-update","call":{"id":"v1"}}}`)
	ev, err := ParseEvent("application/json", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := ev.(Unhandled); !ok {
		t.Fatalf("expected Unhandled, got %T", ev)
	}
}

func TestParseEvent_NoMessageIsUnhandled(t *testing.T) {
	ev, err := ParseEvent("application/json", []byte(`{"ping":true}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := ev.(Unhandled); !ok {
		t.Fatalf("expected Unhandled, got %T", ev)
	}
}

func TestParseEvent_TextBodiesAreUnhandled(t *testing.T) {
	ev, err := ParseEvent("text/plain", []byte("just a ping"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := ev.(Unhandled); !ok {
		t.Fatalf("expected Unhandled, got %T", ev)
	}

	// Unknown content types fall back to raw-text handling.
	ev, err = ParseEvent("application/octet-stream", []byte{0x1, 0x2})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := ev.(Unhandled); !ok {
		t.Fatalf("expected Unhandled, got %T", ev)
	}
}

func TestParseEvent_TruncatedJSONIsMalformed(t *testing.T) {
	_, err := ParseEvent("application/json", []byte(`{"message":{"type":`))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestStatusForReason(t *testing.T) {
	cases := map[string]calls.Status{
		"customer-ended-call":   calls.StatusCompleted,
		"assistant-ended-call":  calls.StatusCompleted,
		"voicemail":             calls.StatusFailed,
		"pipeline-error":        calls.StatusFailed,
		"never-seen-before-xyz": calls.StatusFailed,
		"":                      calls.StatusFailed,
	}
	for reason, want := range cases {
		if got := StatusForReason(reason); got != want {
			t.Fatalf("StatusForReason(%q) = %q, want %q", reason, got, want)
		}
	}
}
