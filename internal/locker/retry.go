package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"ynvest-tube/internal/biddingerrors"
)

// ErrBusy is returned by WithRetry when the key stayed locked for every attempt
var ErrBusy = errors.New("resource busy")

// RetryPolicy bounds how often a contended operation is retried
type RetryPolicy struct {
	Attempts  uint64
	BaseDelay time.Duration
}

// DefaultRetryPolicy is used when a zero policy is supplied
var DefaultRetryPolicy = RetryPolicy{Attempts: 5, BaseDelay: 20 * time.Millisecond}

// Backoff returns the exponential backoff described by p, falling back to
// DefaultRetryPolicy when p is zero
func (p RetryPolicy) Backoff() retry.Backoff {
	if p.Attempts == 0 || p.BaseDelay <= 0 {
		p = DefaultRetryPolicy
	}
	return retry.WithMaxRetries(p.Attempts, retry.NewExponential(p.BaseDelay))
}

// WithRetry runs fn while holding key. A busy key or a persistence conflict
// reported by fn is retried with exponential backoff; any other error is returned as is.
func (k *Keyed) WithRetry(ctx context.Context, key string, policy RetryPolicy, fn func(ctx context.Context) error) error {
	err := retry.Do(ctx, policy.Backoff(), func(ctx context.Context) error {
		unlock, ok := k.TryLock(key)
		if !ok {
			return retry.RetryableError(fmt.Errorf("lock %s: %w", key, ErrBusy))
		}
		defer unlock()

		if err := fn(ctx); err != nil {
			if errors.Is(err, biddingerrors.ErrPersistenceConflict) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if errors.Is(err, ErrBusy) {
		return fmt.Errorf("%w: %v", biddingerrors.ErrPersistenceConflict, err)
	}
	return err
}
