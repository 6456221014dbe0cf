package calls

import "time"

// Call represents one outbound memory-collection call attempt and its
// lifecycle. Rows live in the calls table.
//
// Correlation invariant: VapiCallID is the provider's call identifier and is
// the only key inbound webhook events carry. The store does not enforce its
// uniqueness; lookups return all matches and callers take the first.
//
// Transcript is a pointer on purpose: nil means "no terminal report processed
// yet", while a non-nil empty string means "terminal report processed, no
// transcript text". That distinction is what blocks a late status-update from
// overriding a finalized record.
type Call struct {
	ID          string `json:"id" db:"id"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`
	Name        string `json:"name" db:"name"`
	Question    string `json:"question" db:"question"`

	Status Status `json:"status" db:"status"`

	VapiCallID string  `json:"vapi_call_id,omitempty" db:"vapi_call_id"`
	Transcript *string `json:"transcript,omitempty" db:"transcript"`

	UserID           string `json:"user_id,omitempty" db:"user_id"`
	FamilyMemberName string `json:"family_member_name,omitempty" db:"family_member_name"`

	// RawPayload holds the last provider payload applied to this row, for ops.
	RawPayload string `json:"-" db:"raw_payload"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasTranscript reports whether a terminal report has already been applied.
func (c Call) HasTranscript() bool {
	return c.Transcript != nil
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the call lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Summary is a per-status rollup of a user's calls, backing the dashboard.
type Summary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
