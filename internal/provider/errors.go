// ABOUTME: Error taxonomy for external provider calls (LLM, embeddings)
// ABOUTME: Distinguishes retryable transient failures from fatal ones
package provider

import (
	"errors"
	"fmt"
)

// ErrRateLimited signals the provider rejected a call for quota reasons.
// Retryable after the provider-suggested delay.
var ErrRateLimited = errors.New("provider rate limited")

// TransientError wraps a network or timeout failure that is safe to retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient provider error: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// MalformedResponseError reports a provider response that could not be parsed
// into the expected structure, even by the fallback parser.
type MalformedResponseError struct {
	Op     string
	Detail string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed provider response: %s", e.Op, e.Detail)
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var te *TransientError
	return errors.As(err, &te)
}
