package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"million-ears/internal/calls"
	"million-ears/internal/config"
)

const defaultBaseURL = "https://api.vapi.ai"

// Client places outbound calls through the Vapi REST API.
// It is the only place provider HTTP details live; business logic consumes it
// through the calls.Placer interface.
type Client struct {
	httpClient *http.Client

	baseURL       string
	token         string
	assistantID   string
	phoneNumberID string
}

func NewClient(cfg config.VapiConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		baseURL:       base,
		token:         cfg.APIToken,
		assistantID:   cfg.AssistantID,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

type placeCallPayload struct {
	AssistantID   string `json:"assistantId"`
	PhoneNumberID string `json:"phoneNumberId"`
	Customer      struct {
		Number string `json:"number"`
	} `json:"customer"`
	AssistantOverrides struct {
		VariableValues struct {
			Name            string `json:"name"`
			CustomQuestions string `json:"customQuestions"`
		} `json:"variableValues"`
	} `json:"assistantOverrides"`
}

type placeCallResponse struct {
	ID     string `json:"id"`
	CallID string `json:"callId"`
}

// PlaceCall starts an outbound phone call and returns the provider call id
// used later to correlate webhook events. Implements calls.Placer.
func (c *Client) PlaceCall(ctx context.Context, req calls.PlaceCallRequest) (string, error) {
	var payload placeCallPayload
	payload.AssistantID = c.assistantID
	payload.PhoneNumberID = c.phoneNumberID
	payload.Customer.Number = req.PhoneNumber
	payload.AssistantOverrides.VariableValues.Name = req.Name
	payload.AssistantOverrides.VariableValues.CustomQuestions = req.CustomQuestions

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("vapi: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call/phone", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("vapi: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("vapi: place call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("vapi: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("vapi: place call failed with status %d: %s", resp.StatusCode, respBody)
	}

	var out placeCallResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("vapi: decode response: %w", err)
	}
	if out.ID != "" {
		return out.ID, nil
	}
	if out.CallID != "" {
		return out.CallID, nil
	}
	return "", fmt.Errorf("vapi: response carried no call id")
}
