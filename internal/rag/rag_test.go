package rag

import "testing"

func TestNamespace(t *testing.T) {
	if got := Namespace("user-1"); got != "user-1" {
		t.Fatalf("expected user namespace, got %q", got)
	}
	if got := Namespace(""); got != GlobalNamespace {
		t.Fatalf("expected global fallback, got %q", got)
	}
}

func TestFormatDocument(t *testing.T) {
	got := FormatDocument("Grandma Rosa", "We talked about the war.")
	want := "Conversation with Grandma Rosa:\n\nWe talked about the war."
	if got != want {
		t.Fatalf("unexpected document:\n%q\nwant:\n%q", got, want)
	}

	got = FormatDocument("", "We talked about the war.")
	want = "Conversation:\n\nWe talked about the war."
	if got != want {
		t.Fatalf("unexpected anonymous document:\n%q\nwant:\n%q", got, want)
	}
}
