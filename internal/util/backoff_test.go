// ABOUTME: Tests for retry backoff calculation
// ABOUTME: Verifies exponential growth, jitter bounds and the cap

package util

import (
	"testing"
	"time"
)

func TestCalculateBackoff_ZeroForFirstAttempt(t *testing.T) {
	if got := CalculateBackoff(time.Second, 0); got != 0 {
		t.Errorf("CalculateBackoff(1s, 0) = %v, want 0", got)
	}
	if got := CalculateBackoff(time.Second, -1); got != 0 {
		t.Errorf("CalculateBackoff(1s, -1) = %v, want 0", got)
	}
}

func TestCalculateBackoff_GrowsWithinJitterBounds(t *testing.T) {
	base := 100 * time.Millisecond

	for attempt := 1; attempt <= 4; attempt++ {
		expected := base * time.Duration(1<<uint(attempt))
		for i := 0; i < 50; i++ {
			got := CalculateBackoff(base, attempt)
			lo := expected - expected/4
			hi := expected + expected/4
			if got < lo || got > hi {
				t.Fatalf("attempt %d: backoff %v outside [%v, %v]", attempt, got, lo, hi)
			}
		}
	}
}

func TestCalculateBackoff_Capped(t *testing.T) {
	got := CalculateBackoff(time.Second, 20)
	max := 30*time.Second + 30*time.Second/4
	if got > max {
		t.Errorf("CalculateBackoff() = %v, exceeds cap with jitter %v", got, max)
	}
}

func TestCalculateBackoff_LargeAttemptDoesNotOverflow(t *testing.T) {
	got := CalculateBackoff(time.Second, 1000)
	if got <= 0 || got > 40*time.Second {
		t.Errorf("CalculateBackoff() = %v for huge attempt, want bounded positive", got)
	}
}
