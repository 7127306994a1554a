// ABOUTME: Tests for the LLM client error classification
// ABOUTME: Maps go-openai errors onto the shared provider taxonomy

package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docweave/docweave/internal/provider"
)

func TestNewOpenAIClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIClient(ClientConfig{}); err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestNewOpenAIClient_Defaults(t *testing.T) {
	c, err := NewOpenAIClient(ClientConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	if c.model != DefaultChatModel {
		t.Errorf("model = %q, want %q", c.model, DefaultChatModel)
	}
	if c.temperature != 0.1 {
		t.Errorf("temperature = %f, want 0.1", c.temperature)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetryable bool
	}{
		{
			name:          "rate limited",
			err:           &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests},
			wantRetryable: true,
		},
		{
			name:          "server error",
			err:           &openai.APIError{HTTPStatusCode: http.StatusBadGateway},
			wantRetryable: true,
		},
		{
			name:          "client error",
			err:           &openai.APIError{HTTPStatusCode: http.StatusBadRequest},
			wantRetryable: false,
		},
		{
			name:          "request error",
			err:           &openai.RequestError{HTTPStatusCode: 0, Err: errors.New("connection refused")},
			wantRetryable: true,
		},
		{
			name:          "deadline exceeded",
			err:           context.DeadlineExceeded,
			wantRetryable: true,
		},
		{
			name:          "plain error",
			err:           errors.New("something else"),
			wantRetryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			if provider.IsRetryable(got) != tt.wantRetryable {
				t.Errorf("IsRetryable(classifyError()) = %v, want %v", !tt.wantRetryable, tt.wantRetryable)
			}
		})
	}
}

func TestClassifyError_RateLimitSentinel(t *testing.T) {
	got := classifyError(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests})
	if !errors.Is(got, provider.ErrRateLimited) {
		t.Errorf("error = %v, want wrapped ErrRateLimited", got)
	}
}
