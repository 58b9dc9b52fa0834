package scheduler

import (
	"context"
	"log"
	"time"
)

// RetryPolicy retries a failed unit of work with exponential backoff and no
// jitter. Exhausting the budget is terminal for that tick, not for the
// scheduler.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Factor:      2,
	}
}

func Retry(ctx context.Context, policy RetryPolicy, name string, fn func() error) error {
	delay := policy.BaseDelay

	var err error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if attempt == policy.MaxAttempts {
			break
		}

		log.Printf("%s attempt %d/%d failed: %v, retrying in %s", name, attempt, policy.MaxAttempts, err, delay)

		if waitErr := sleepContext(ctx, delay); waitErr != nil {
			return waitErr
		}

		delay *= time.Duration(policy.Factor)
	}

	log.Printf("%s failed after %d attempts: %v", name, policy.MaxAttempts, err)

	return err
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
