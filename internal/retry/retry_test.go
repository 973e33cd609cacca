package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDoReturnsFirstSuccess(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), Policy{Retries: 3}, func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Fatalf("expected single successful call, got %q after %d calls", got, calls)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	sentinel := errors.New("lookup failed")
	calls := 0
	_, err := Do(context.Background(), Policy{Retries: 3, Delay: time.Millisecond}, func(context.Context) (int, error) {
		calls++
		return 0, sentinel
	})
	if err != sentinel {
		t.Fatalf("expected last error unchanged, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 calls, got %d", calls)
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	calls := 0
	got, err := Do(context.Background(), Policy{Retries: 3, Logger: zap.New(core)}, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return calls, nil
	})
	if err != nil || got != 3 {
		t.Fatalf("expected success on third call, got %d %v", got, err)
	}
	if n := logs.FilterMessage("attempt failed, retrying").Len(); n != 2 {
		t.Fatalf("expected 2 retry logs, got %d", n)
	}
}

func TestDoPropagatesLastError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{Retries: 2}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("failure " + string(rune('0'+calls)))
	})
	if err == nil || err.Error() != "failure 3" {
		t.Fatalf("expected final failure, got %v", err)
	}
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Policy{Retries: 5, Delay: time.Hour}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
