package vapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"million-ears/internal/calls"
)

// Vapi delivers webhook events as JSON with a message.type discriminator.
// Only two shapes drive reconciliation; everything else is acknowledged and
// ignored so new provider event types never fail deliveries.

const (
	eventTypeEndOfCallReport = "end-of-call-report"
	eventTypeStatusUpdate    = "status-update"

	// callStatusEnded is the only status-update value that matters here.
	callStatusEnded = "ended"
)

var ErrMalformedPayload = errors.New("vapi: malformed payload")

// Event is the decoded webhook payload, one of EndOfCallReport, StatusUpdate
// or Unhandled. Dispatch by type switch.
type Event interface {
	isEvent()
}

// EndOfCallReport is the terminal provider event: final outcome plus the
// transcript, which may arrive in either of two fields.
type EndOfCallReport struct {
	CallID      string
	EndedReason string

	transcript         string
	artifactTranscript string
}

func (EndOfCallReport) isEvent() {}

// Transcript prefers the top-level transcript field, falls back to the
// artifact copy, else returns the empty string.
func (e EndOfCallReport) Transcript() string {
	if e.transcript != "" {
		return e.transcript
	}
	if e.artifactTranscript != "" {
		return e.artifactTranscript
	}
	return ""
}

// StatusUpdate is an intermediate call-state event without a transcript.
type StatusUpdate struct {
	CallID      string
	Status      string
	EndedReason string
}

func (StatusUpdate) isEvent() {}

// Ended reports whether this update signals call termination.
func (e StatusUpdate) Ended() bool { return e.Status == callStatusEnded }

// Unhandled covers unknown event types and non-JSON bodies.
type Unhandled struct {
	Type string
}

func (Unhandled) isEvent() {}

type envelope struct {
	Message *messageBody `json:"message"`
}

type messageBody struct {
	Type string `json:"type"`
	Call struct {
		ID string `json:"id"`
	} `json:"call"`
	Status      string `json:"status"`
	EndedReason string `json:"endedReason"`
	Transcript  string `json:"transcript"`
	Artifact    struct {
		Transcript string `json:"transcript"`
	} `json:"artifact"`
}

// ParseEvent negotiates on the declared content type: JSON bodies are decoded
// into the event union, text (and anything else) is treated as an opaque body
// that carries no event. A JSON body that fails to decode is a malformed
// payload, which the handler surfaces as the generic failure response.
func ParseEvent(contentType string, body []byte) (Event, error) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/json"):
		return parseJSONEvent(body)
	case strings.HasPrefix(strings.TrimSpace(ct), "text/"):
		return Unhandled{}, nil
	default:
		// Unknown content types fall back to raw-text handling.
		return Unhandled{}, nil
	}
}

func parseJSONEvent(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.Message == nil {
		return Unhandled{}, nil
	}

	m := env.Message
	switch m.Type {
	case eventTypeEndOfCallReport:
		return EndOfCallReport{
			CallID:             m.Call.ID,
			EndedReason:        m.EndedReason,
			transcript:         m.Transcript,
			artifactTranscript: m.Artifact.Transcript,
		}, nil
	case eventTypeStatusUpdate:
		return StatusUpdate{
			CallID:      m.Call.ID,
			Status:      m.Status,
			EndedReason: m.EndedReason,
		}, nil
	default:
		return Unhandled{Type: m.Type}, nil
	}
}

// StatusForReason maps a provider endedReason to a call status. Only clean
// hangups by either party count as completed; every other reason, including
// ones this service has never seen, is a failure rather than an error.
func StatusForReason(endedReason string) calls.Status {
	switch endedReason {
	case "customer-ended-call", "assistant-ended-call":
		return calls.StatusCompleted
	default:
		return calls.StatusFailed
	}
}
