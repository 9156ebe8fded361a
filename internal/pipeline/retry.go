package pipeline

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// MaxStageAttempts is the per-job retry budget: the stage runs once
// plus up to this many retries.
const MaxStageAttempts = 3

// NewStageBackOff returns the exponential backoff policy spec'd for
// stage retries: 1s, 4s, 16s, capped at MaxStageAttempts retries.
func NewStageBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 4
	b.RandomizationFactor = 0
	b.MaxInterval = 16 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, MaxStageAttempts)
}

// RunWithRetry executes op, retrying per NewStageBackOff whenever the
// returned error classifies as Transient or Internal. Terminal errors
// (InputInvalid, Contract, Forbidden, NotFound, Cancelled) are
// returned immediately without consuming the retry budget.
func RunWithRetry(ctx context.Context, op func(ctx context.Context) error) error {
	policy := backoff.WithContext(NewStageBackOff(), ctx)
	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
