package vapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"million-ears/internal/calls"
	"million-ears/internal/config"
)

func TestClient_PlaceCall(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"vapi-call-1"}`))
	}))
	defer srv.Close()

	c := NewClient(config.VapiConfig{
		APIToken:      "tok",
		AssistantID:   "asst",
		PhoneNumberID: "pn",
		BaseURL:       srv.URL,
	})

	id, err := c.PlaceCall(context.Background(), calls.PlaceCallRequest{
		Name:            "Grandma Rosa",
		PhoneNumber:     "+15551234567",
		CustomQuestions: "Tell me about your childhood",
	})
	if err != nil {
		t.Fatalf("place call: %v", err)
	}
	if id != "vapi-call-1" {
		t.Fatalf("unexpected call id: %q", id)
	}

	if gotPath != "/call/phone" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotBody["assistantId"] != "asst" || gotBody["phoneNumberId"] != "pn" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
	customer, _ := gotBody["customer"].(map[string]any)
	if customer["number"] != "+15551234567" {
		t.Fatalf("unexpected customer: %+v", customer)
	}
}

func TestClient_PlaceCall_AcceptsCallIdField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"callId":"alt-id"}`))
	}))
	defer srv.Close()

	c := NewClient(config.VapiConfig{APIToken: "t", AssistantID: "a", PhoneNumberID: "p", BaseURL: srv.URL})
	id, err := c.PlaceCall(context.Background(), calls.PlaceCallRequest{Name: "n", PhoneNumber: "+15551234567", CustomQuestions: "q"})
	if err != nil {
		t.Fatalf("place call: %v", err)
	}
	if id != "alt-id" {
		t.Fatalf("unexpected call id: %q", id)
	}
}

func TestClient_PlaceCall_SurfacesProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad assistant", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(config.VapiConfig{APIToken: "t", AssistantID: "a", PhoneNumberID: "p", BaseURL: srv.URL})
	if _, err := c.PlaceCall(context.Background(), calls.PlaceCallRequest{Name: "n", PhoneNumber: "+15551234567", CustomQuestions: "q"}); err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}
