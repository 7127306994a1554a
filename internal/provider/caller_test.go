// ABOUTME: Tests for the shared provider call plumbing
// ABOUTME: Verifies retry classification, retry exhaustion and circuit breaking

package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastCaller(maxRetries int, failures uint32) *Caller {
	return NewCaller(CallerConfig{
		Name:            "test",
		MinCallInterval: time.Microsecond,
		MaxRetries:      maxRetries,
		RetryDelay:      time.Microsecond,
		BreakerCooldown: time.Minute,
		BreakerFailures: failures,
	})
}

func TestCall_Success(t *testing.T) {
	c := fastCaller(2, 5)

	got, err := Call(context.Background(), c, "op", func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Call() = %q, want ok", got)
	}
}

func TestCall_RetriesTransientErrors(t *testing.T) {
	c := fastCaller(3, 5)

	attempts := 0
	got, err := Call(context.Background(), c, "op", func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, &TransientError{Op: "op", Err: errors.New("connection reset")}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Call() = %d, want 42", got)
	}
	if attempts != 3 {
		t.Errorf("Attempts = %d, want 3", attempts)
	}
}

func TestCall_FatalErrorStopsImmediately(t *testing.T) {
	c := fastCaller(3, 5)

	fatal := errors.New("invalid request")
	attempts := 0
	_, err := Call(context.Background(), c, "op", func(ctx context.Context) (int, error) {
		attempts++
		return 0, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("error = %v, want the fatal error", err)
	}
	if attempts != 1 {
		t.Errorf("Attempts = %d, want 1 for a non-retryable error", attempts)
	}
}

func TestCall_ExhaustsRetryBudget(t *testing.T) {
	c := fastCaller(2, 10)

	attempts := 0
	_, err := Call(context.Background(), c, "op", func(ctx context.Context) (int, error) {
		attempts++
		return 0, ErrRateLimited
	})
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("error = %v, should wrap the last attempt's error", err)
	}
	if attempts != 3 {
		t.Errorf("Attempts = %d, want maxRetries+1 = 3", attempts)
	}
}

func TestCall_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	c := fastCaller(0, 2)

	boom := &TransientError{Op: "op", Err: errors.New("down")}
	for i := 0; i < 2; i++ {
		if _, err := Call(context.Background(), c, "op", func(ctx context.Context) (int, error) {
			return 0, boom
		}); err == nil {
			t.Fatal("Expected failure")
		}
	}

	// Third call fails fast without invoking fn
	invoked := false
	_, err := Call(context.Background(), c, "op", func(ctx context.Context) (int, error) {
		invoked = true
		return 0, nil
	})
	if err == nil {
		t.Fatal("Expected circuit-open error")
	}
	if invoked {
		t.Error("fn was invoked while the circuit was open")
	}
}

func TestCall_ContextCancellation(t *testing.T) {
	c := fastCaller(5, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Call(ctx, c, "op", func(ctx context.Context) (int, error) {
		return 0, ErrRateLimited
	})
	if err == nil {
		t.Fatal("Expected error for canceled context")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", ErrRateLimited, true},
		{"wrapped rate limited", errors.Join(errors.New("outer"), ErrRateLimited), true},
		{"transient", &TransientError{Op: "x", Err: errors.New("timeout")}, true},
		{"malformed", &MalformedResponseError{Op: "x", Detail: "nonsense"}, false},
		{"plain error", errors.New("bad request"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
