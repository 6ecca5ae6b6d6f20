package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	t.Parallel()

	if err := WaitFor(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error for zero duration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		expect  time.Duration
	}{
		{attempt: 0, expect: 0},
		{attempt: 1, expect: time.Second},
		{attempt: 2, expect: 2 * time.Second},
		{attempt: 3, expect: 4 * time.Second},
		{attempt: 10, expect: 5 * time.Second},
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempt, time.Second, 5*time.Second); got != tt.expect {
			t.Fatalf("attempt %d: expected %s, got %s", tt.attempt, tt.expect, got)
		}
	}
}
