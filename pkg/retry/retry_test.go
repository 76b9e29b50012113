package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, nil, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesTransient(t *testing.T) {
	transientErr := errors.New("rate limited")
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, func(e error) bool {
		return errors.Is(e, transientErr)
	}, func() error {
		calls++
		if calls < 3 {
			return transientErr
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected recovery after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	permanent := errors.New("invalid api key")
	calls := 0
	err := Do(context.Background(), 5, time.Millisecond, func(e error) bool {
		return false
	}, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent error should not be retried, got %d calls", calls)
	}
}

func TestDo_BudgetExhausted(t *testing.T) {
	transientErr := errors.New("unavailable")
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, func(e error) bool {
		return true
	}, func() error {
		calls++
		return transientErr
	})
	if !errors.Is(err, transientErr) {
		t.Fatalf("expected the last transient error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, 3, 10*time.Millisecond, func(e error) bool {
		return true
	}, func() error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
