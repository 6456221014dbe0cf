package vapi

import "million-ears/internal/calls"

// Outcome is the decision produced by Reconcile: whether to act, the status
// to write, and whether the write is terminal (terminal writes always carry
// a transcript, possibly empty, which finalizes the record).
type Outcome struct {
	Act      bool
	Terminal bool

	Status     calls.Status
	Transcript string
}

// Reconcile is a pure function of (stored record snapshot, inbound event).
//
// End-of-call reports are authoritative: they act regardless of the stored
// status and always write the transcript column, so even an empty transcript
// marks the record finalized. Status updates act only for "ended" and only
// while the record has no transcript yet; the store re-checks that condition
// at write time, so the snapshot guard here is an early out, not the only
// defense against event races.
func Reconcile(c calls.Call, ev Event) Outcome {
	switch e := ev.(type) {
	case EndOfCallReport:
		return Outcome{
			Act:        true,
			Terminal:   true,
			Status:     StatusForReason(e.EndedReason),
			Transcript: e.Transcript(),
		}
	case StatusUpdate:
		if !e.Ended() || c.HasTranscript() {
			return Outcome{}
		}
		return Outcome{
			Act:    true,
			Status: StatusForReason(e.EndedReason),
		}
	default:
		return Outcome{}
	}
}
