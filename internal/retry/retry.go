package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Policy is a fixed retry budget with a fixed delay between attempts.
// Retries counts the attempts made after the first failure.
type Policy struct {
	Retries int
	Delay   time.Duration
	Logger  *zap.Logger
}

// Do runs op until it succeeds or the budget is spent. Attempts are strictly
// sequential. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retries := p.Retries
	if retries < 0 {
		retries = 0
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			logger.Debug("attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("retries", retries),
				zap.Duration("delay", p.Delay),
				zap.Error(lastErr),
			)
			if err := sleep(ctx, p.Delay); err != nil {
				return zero, err
			}
		}
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
