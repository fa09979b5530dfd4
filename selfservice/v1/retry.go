package v1

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Backoff selects how the wait between attempts grows.
type Backoff int

const (
	// BackoffLinear waits BaseDelay * attempt.
	BackoffLinear Backoff = iota
	// BackoffExponential waits BaseDelay * 2^(attempt-1).
	BackoffExponential
)

// RetryPolicy configures Execute.
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	Timeout        time.Duration
	RetryableKinds []Kind
	Backoff        Backoff

	// Sleep waits between attempts. Nil means a context-aware timer.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *zap.Logger
}

// DefaultTimeout bounds an attempt whose policy sets no timeout.
const DefaultTimeout = 15 * time.Second

// DefaultRetryPolicy returns the policy used by the client when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		Timeout:        DefaultTimeout,
		RetryableKinds: []Kind{KindServerError, KindNetwork, KindTimeout},
		Backoff:        BackoffLinear,
	}
}

// Retryable reports whether a failure of kind k is retried. Validation and
// Unauthenticated never are, whatever RetryableKinds says.
func (p RetryPolicy) Retryable(k Kind) bool {
	if k == KindValidation || k == KindUnauthenticated {
		return false
	}
	for _, r := range p.RetryableKinds {
		if r == k {
			return true
		}
	}
	return false
}

// Delay is the wait after the given 1-based attempt failed.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if p.Backoff == BackoffExponential {
		return p.BaseDelay * time.Duration(1<<(attempt-1))
	}
	return p.BaseDelay * time.Duration(attempt)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
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

// AttemptFunc performs one attempt. attempt starts at 1.
type AttemptFunc func(ctx context.Context, attempt int) Outcome

// Execute drives fn up to MaxAttempts times. Only the terminal outcome is
// returned; retryable failures before it are absorbed.
func Execute(ctx context.Context, fn AttemptFunc, policy RetryPolicy) Outcome {
	log := policy.Logger
	if log == nil {
		log = zap.NewNop()
	}

	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last Outcome
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if attempt == 1 {
				return NormalizeError(err)
			}
			return last
		}

		last = fn(ctx, attempt)
		if last.OK() {
			if attempt > 1 {
				log.Info("retry succeeded", zap.Int("attempt", attempt))
			}
			return last
		}

		if !policy.Retryable(last.Kind) {
			return last
		}

		// Don't sleep after the last attempt
		if attempt == attempts {
			break
		}

		delay := policy.Delay(attempt)
		log.Warn("attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.String("kind", last.Kind.String()),
			zap.String("message", last.Message),
			zap.Duration("delay", delay),
		)
		if err := policy.sleep(ctx, delay); err != nil {
			return last
		}
	}

	log.Warn("attempts exhausted",
		zap.Int("attempts", attempts),
		zap.String("kind", last.Kind.String()),
		zap.String("message", last.Message),
	)
	return last
}
