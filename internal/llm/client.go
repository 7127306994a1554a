// ABOUTME: LLM text generation client over the OpenAI chat completions API
// ABOUTME: Low temperature, rate limited, retried with backoff, circuit broken
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docweave/docweave/internal/provider"
)

// DefaultChatModel is the default model for chat completions.
const DefaultChatModel = "gpt-4o-mini"

// Client generates free-form text for a prompt. The decision engine and the
// merger each define their own structured-output contract on top of it.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	MinCallInterval time.Duration
	BreakerCooldown time.Duration
}

// OpenAIClient implements Client over go-openai.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	caller      *provider.Caller
}

// NewOpenAIClient creates a new OpenAI chat client.
func NewOpenAIClient(cfg ClientConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		client:      openai.NewClient(cfg.APIKey),
		model:       model,
		temperature: temperature,
		timeout:     timeout,
		caller: provider.NewCaller(provider.CallerConfig{
			Name:            "llm",
			MinCallInterval: cfg.MinCallInterval,
			MaxRetries:      cfg.MaxRetries,
			RetryDelay:      cfg.RetryDelay,
			BreakerCooldown: cfg.BreakerCooldown,
		}),
	}, nil
}

// Generate sends the prompt as a single user message and returns the raw
// response text.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	return provider.Call(ctx, c.caller, "generate", func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: c.temperature,
		})
		if err != nil {
			return "", classifyError(err)
		}
		if len(resp.Choices) == 0 {
			return "", &provider.MalformedResponseError{Op: "generate", Detail: "no completion choices returned"}
		}
		return resp.Choices[0].Message.Content, nil
	})
}

// classifyError maps go-openai errors onto the shared provider taxonomy.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("llm: %w", provider.ErrRateLimited)
		case apiErr.HTTPStatusCode >= 500:
			return &provider.TransientError{Op: "generate", Err: err}
		}
		return err
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &provider.TransientError{Op: "generate", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.TransientError{Op: "generate", Err: err}
	}
	return err
}
