package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPolicyDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Policy{Attempts: 3, Delay: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPolicyDoRetriesRetryable(t *testing.T) {
	calls := 0
	err := Policy{Attempts: 3, Delay: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("503"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestPolicyDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("404")
	calls := 0
	err := Policy{Attempts: 5, Delay: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("Do() error = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPolicyDoReturnsLastError(t *testing.T) {
	calls := 0
	err := Policy{Attempts: 2, Delay: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return Retryable(errors.New("still down"))
	})
	if !IsRetryable(err) || err.Error() != "still down" {
		t.Errorf("Do() error = %v, want retryable 'still down'", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestPolicyDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Policy{Attempts: 3, Delay: time.Hour}.Do(ctx, func() error {
		return Retryable(errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestNoRetry(t *testing.T) {
	calls := 0
	_ = NoRetry.Do(context.Background(), func() error {
		calls++
		return Retryable(errors.New("down"))
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryableNil(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}
