// Package llm provides the model completion client used for address
// analysis. Any OpenAI-compatible chat completions endpoint works,
// including local runtimes.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chainguard/internal/observability"
)

// ErrUnavailable means the model endpoint could not produce a
// completion. Callers fall back to heuristic verdicts.
var ErrUnavailable = errors.New("model unavailable")

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 10 * time.Second

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// HTTPClient implements Completer against a chat completions endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Option configures HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a completion client. apiKey may be empty for
// endpoints that do not authenticate.
func NewHTTPClient(baseURL, apiKey, model string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
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

// Complete sends the prompt and returns the model's text response.
// Transport and endpoint failures wrap ErrUnavailable.
func (c *HTTPClient) Complete(ctx context.Context, prompt string) (content string, err error) {
	start := time.Now()
	defer func() { observability.RecordCollaboratorCall("model", time.Since(start).Seconds(), err) }()

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", ErrUnavailable, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrUnavailable)
	}
	return out.Choices[0].Message.Content, nil
}

var _ Completer = (*HTTPClient)(nil)
