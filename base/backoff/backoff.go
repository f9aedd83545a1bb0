package backoff

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrAttemptsExhausted is returned by Retry when every attempt failed
var ErrAttemptsExhausted = errors.New("backoff: attempts exhausted")

type BackoffStrategy interface {
	GetBackoffDuration(int, time.Duration, time.Duration) time.Duration
}

type Backoff struct {
	LastDuration time.Duration
	NextDuration time.Duration
	start        time.Duration
	limit        time.Duration
	count        int
	strategy     BackoffStrategy
}

func NewBackoff(strategy BackoffStrategy, start time.Duration, limit time.Duration) *Backoff {
	backoff := Backoff{strategy: strategy, start: start, limit: limit}
	backoff.Reset()
	return &backoff
}

func (b *Backoff) Reset() {
	b.count = 0
	b.LastDuration = 0
	b.NextDuration = b.getNextDuration()
}

// Attempts returns how many times Backoff slept since the last Reset
func (b *Backoff) Attempts() int {
	return b.count
}

// Backoff sleeps NextDuration or until ctx is done, whichever comes first.
func (b *Backoff) Backoff(ctx context.Context) error {
	timer := time.NewTimer(b.NextDuration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	b.count++
	b.LastDuration = b.NextDuration
	b.NextDuration = b.getNextDuration()
	return nil
}

// Retry calls fn until it succeeds, returns a permanent error, or maxAttempts
// is reached. shouldRetry decides whether an error is worth another attempt;
// nil retries every error.
func (b *Backoff) Retry(ctx context.Context, maxAttempts int, shouldRetry func(error) bool, fn func() error) error {
	var err error
	for attempt := 0; maxAttempts <= 0 || attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if bErr := b.Backoff(ctx); bErr != nil {
				if err != nil {
					return err
				}
				return bErr
			}
		}
		if err = fn(); err == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
	}
	if err == nil {
		return ErrAttemptsExhausted
	}
	return err
}

func (b *Backoff) getNextDuration() time.Duration {
	backoff := b.strategy.GetBackoffDuration(b.count, b.start, b.LastDuration)
	if b.limit > 0 && backoff > b.limit {
		backoff = b.limit
	}
	return backoff
}

type exponential struct{}

func (exponential) GetBackoffDuration(backoffCount int, start time.Duration, lastBackoff time.Duration) time.Duration {
	period := int64(math.Pow(2, float64(backoffCount)))
	return time.Duration(period) * start
}

func NewExponential(start time.Duration, limit time.Duration) *Backoff {
	return NewBackoff(exponential{}, start, limit)
}

type constant struct{}

func (constant) GetBackoffDuration(backoffCount int, start time.Duration, lastBackoff time.Duration) time.Duration {
	return start
}

func NewConstant(interval time.Duration) *Backoff {
	return NewBackoff(constant{}, interval, 0)
}
