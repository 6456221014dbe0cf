package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"million-ears/internal/config"
)

var ErrNotConfigured = errors.New("rag: service not configured")

// Client talks to the external retrieval service over HTTP.
// Implements Indexer.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.RagConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type addDocumentPayload struct {
	Namespace string   `json:"namespace"`
	Text      string   `json:"text"`
	Metadata  Metadata `json:"metadata"`
}

// Add indexes one document under the given namespace.
func (c *Client) Add(ctx context.Context, namespace, text string, meta Metadata) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(addDocumentPayload{
		Namespace: namespace,
		Text:      text,
		Metadata:  meta,
	})
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rag request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("rag returned %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
