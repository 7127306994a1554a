// ABOUTME: OpenAI-compatible embeddings HTTP client
// ABOUTME: Returns the raw response body; shape normalization happens in normalize.go
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/docweave/docweave/internal/provider"
)

// Provider is the minimal surface the batcher needs from an embedding backend.
// The raw response is kept opaque here because different OpenAI-compatible
// servers disagree on the response shape.
type Provider interface {
	EmbedRaw(ctx context.Context, texts []string) (json.RawMessage, error)
}

// Client calls an OpenAI-compatible /embeddings endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	caller     *provider.Caller
}

// ClientConfig configures the embeddings client.
type ClientConfig struct {
	BaseURL         string
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	MinCallInterval time.Duration
	BreakerCooldown time.Duration
}

// NewClient creates a new embeddings client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embeddings API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		caller: provider.NewCaller(provider.CallerConfig{
			Name:            "embeddings",
			MinCallInterval: cfg.MinCallInterval,
			MaxRetries:      cfg.MaxRetries,
			RetryDelay:      cfg.RetryDelay,
			BreakerCooldown: cfg.BreakerCooldown,
		}),
	}, nil
}

// EmbedRaw posts the texts to the embeddings endpoint and returns the raw
// response body. Rate limiting, retries and circuit breaking are applied.
func (c *Client) EmbedRaw(ctx context.Context, texts []string) (json.RawMessage, error) {
	return provider.Call(ctx, c.caller, "embed", func(ctx context.Context) (json.RawMessage, error) {
		return c.post(ctx, texts)
	})
}

func (c *Client) post(ctx context.Context, texts []string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{
		"input": texts,
		"model": c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &provider.TransientError{Op: "embed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		// Respect Retry-After if provided before the next attempt
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Duration(secs) * time.Second):
				}
			}
		}
		return nil, fmt.Errorf("embeddings: %w", provider.ErrRateLimited)
	}
	if resp.StatusCode >= 500 {
		return nil, &provider.TransientError{Op: "embed", Err: fmt.Errorf("server status %s", resp.Status)}
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.TransientError{Op: "embed", Err: err}
	}
	return json.RawMessage(payload), nil
}
