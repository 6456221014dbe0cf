package rag

import (
	"context"
	"fmt"
)

// GlobalNamespace is the shared index partition for calls that carry no user
// attribution. Anonymous transcripts pool together here, so retrieval over
// this partition is not scoped to a single caller; only provider-initiated
// anonymous calls land in it, authenticated flows always carry a user id.
const GlobalNamespace = "global"

// Namespace derives the index partition for a call's transcript.
func Namespace(userID string) string {
	if userID == "" {
		return GlobalNamespace
	}
	return userID
}

// FormatDocument prefixes the transcript with conversation context so
// retrieval hits identify who was speaking.
func FormatDocument(familyMemberName, transcript string) string {
	if familyMemberName != "" {
		return fmt.Sprintf("Conversation with %s:\n\n%s", familyMemberName, transcript)
	}
	return "Conversation:\n\n" + transcript
}

// Metadata travels with an indexed document.
type Metadata struct {
	CallID           string `json:"call_id"`
	Timestamp        int64  `json:"timestamp"`
	FamilyMemberName string `json:"family_member_name,omitempty"`
}

// Indexer is the retrieval-index collaborator. The embedding and storage
// implementation is external to this service.
type Indexer interface {
	Add(ctx context.Context, namespace, text string, meta Metadata) error
}

// Job is one transcript waiting to be indexed.
type Job struct {
	UserID           string `json:"user_id,omitempty"`
	FamilyMemberName string `json:"family_member_name,omitempty"`
	Transcript       string `json:"transcript"`
	CallID           string `json:"call_id"`

	// Timestamp is the completion time in unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Scheduler hands a job off for asynchronous indexing.
type Scheduler interface {
	Schedule(ctx context.Context, job Job) error
}
