package memories

import "time"

// Memory is a user-curated record of a collected conversation: who was
// called, what was asked, and (once available) the transcript and summary.
// Rows live in the memories table.
type Memory struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	Name        string `json:"name" db:"name"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`

	CallID          string `json:"call_id,omitempty" db:"call_id"`
	CustomQuestions string `json:"custom_questions,omitempty" db:"custom_questions"`
	Transcript      string `json:"transcript,omitempty" db:"transcript"`
	Summary         string `json:"summary,omitempty" db:"summary"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
