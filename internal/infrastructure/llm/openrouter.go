// Package llm implements the remote text-generation port against
// OpenAI-compatible chat-completion APIs (OpenRouter in production).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"newsintel/internal/config"
	"newsintel/internal/ports"
)

// OpenRouterClient implements ports.Generator backed by OpenAI-compatible APIs.
type OpenRouterClient struct {
	endpoint   string
	model      string
	apiKey     string
	maxRetries int
	httpClient *http.Client
}

var _ ports.Generator = (*OpenRouterClient)(nil)

// NewOpenRouterClient builds a client from configuration.
func NewOpenRouterClient(cfg config.OpenRouterConfig) *OpenRouterClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenRouterClient{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the client has enough settings to make calls.
func (c *OpenRouterClient) Configured() bool {
	return c != nil && c.apiKey != "" && c.endpoint != "" && c.model != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete posts the prompt as a user message and returns the first
// choice. Transient failures (5xx, network) are retried with exponential
// backoff; client errors abort immediately.
func (c *OpenRouterClient) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("openrouter client misconfigured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal openrouter payload: %w", err)
	}

	tries := uint(c.maxRetries)
	if tries == 0 {
		tries = 1
	}
	return backoff.Retry(ctx,
		func() (string, error) { return c.post(ctx, body) },
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(tries))
}

func (c *OpenRouterClient) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("openrouter error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
		if resp.StatusCode < http.StatusInternalServerError {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode completion: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", backoff.Permanent(fmt.Errorf("completion had no choices"))
	}
	return parsed.Choices[0].Message.Content, nil
}

// Ping verifies the endpoint answers at all. It sends a minimal prompt
// so a misconfigured key surfaces at startup rather than mid-request.
func (c *OpenRouterClient) Ping(ctx context.Context) error {
	if !c.Configured() {
		return fmt.Errorf("openrouter client misconfigured")
	}
	_, err := c.Complete(ctx, "ping")
	return err
}
