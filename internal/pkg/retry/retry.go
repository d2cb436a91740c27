package retry

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/cenkalti/backoff/v5"
)

// Retrier re-runs an operation while it fails with a retryable error.
type Retrier struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func New(maxTries uint) Retrier {
	return Retrier{
		MaxTries:        maxTries,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// Do runs op until it succeeds, fails with a non-retryable error, or MaxTries is reached.
// The last error is returned unchanged.
func (r Retrier) Do(ctx context.Context, op func() error) error {
	tries := r.MaxTries
	if tries == 0 {
		tries = 1
	}

	b := backoff.NewExponentialBackOff()
	if r.InitialInterval > 0 {
		b.InitialInterval = r.InitialInterval
	}
	if r.MaxInterval > 0 {
		b.MaxInterval = r.MaxInterval
	}
	b.Reset()

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err != nil && !apperr.IsRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
	return err
}
