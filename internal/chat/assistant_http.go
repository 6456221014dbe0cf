package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"million-ears/internal/config"
	"million-ears/internal/rag"
)

// HTTPAssistant answers prompts via the external retrieval service, which
// grounds replies in the documents indexed under the namespace.
// Implements Assistant.
type HTTPAssistant struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPAssistant(cfg config.RagConfig) *HTTPAssistant {
	return &HTTPAssistant{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type assistantTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type answerPayload struct {
	Namespace string          `json:"namespace"`
	Messages  []assistantTurn `json:"messages,omitempty"`
	Prompt    string          `json:"prompt"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

func (a *HTTPAssistant) Reply(ctx context.Context, namespace string, history []Message, prompt string) (string, error) {
	if a.baseURL == "" {
		return "", rag.ErrNotConfigured
	}

	payload := answerPayload{Namespace: namespace, Prompt: prompt}
	for _, m := range history {
		payload.Messages = append(payload.Messages, assistantTurn{Role: string(m.Role), Content: m.Content})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/answers", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("rag request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("rag returned %d: %s", resp.StatusCode, respBody)
	}

	var out answerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode answer: %w", err)
	}
	return out.Answer, nil
}
