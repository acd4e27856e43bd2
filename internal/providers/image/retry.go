package image

import (
	"context"
	"fmt"
	"time"

	"pipeline/internal/domain"
	"pipeline/internal/infra"
)

// Retrying wraps a Generator with the pipeline's retry policy: a bounded
// number of attempts, a fixed backoff between them, and a per-attempt
// timeout. Only transient failures are retried; terminal failures surface
// immediately. Either way the caller sees domain.ErrGenerationFailed.
type Retrying struct {
	inner       Generator
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	logger      *infra.Logger
}

// RetryOptions configures a Retrying decorator.
type RetryOptions struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
	Logger      *infra.Logger
}

// NewRetrying wraps inner with retry policy. A zero MaxAttempts means a
// single attempt; a zero Timeout leaves attempts unbounded by the decorator.
func NewRetrying(inner Generator, opts RetryOptions) *Retrying {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Retrying{
		inner:       inner,
		timeout:     opts.Timeout,
		maxAttempts: attempts,
		backoff:     opts.Backoff,
		logger:      opts.Logger,
	}
}

func (r *Retrying) Name() string { return r.inner.Name() }

// Generate fulfils the Generator interface.
func (r *Retrying) Generate(ctx context.Context, req GenerateRequest) (Asset, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 && r.backoff > 0 {
			select {
			case <-ctx.Done():
				return Asset{}, ctx.Err()
			case <-time.After(r.backoff):
			}
		}

		asset, err := r.attempt(ctx, req)
		if err == nil {
			return asset, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			// The run itself was cancelled, not just this attempt.
			return Asset{}, ctx.Err()
		}
		if !domain.IsTransient(err) {
			return Asset{}, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
		}
		if r.logger != nil && attempt < r.maxAttempts {
			r.logger.Warn().Err(err).
				Str("product_id", req.ProductID).
				Int("attempt", attempt).
				Int("max_attempts", r.maxAttempts).
				Msg("image: transient generation failure, retrying")
		}
	}
	return Asset{}, fmt.Errorf("%w after %d attempts: %v", domain.ErrGenerationFailed, r.maxAttempts, lastErr)
}

func (r *Retrying) attempt(ctx context.Context, req GenerateRequest) (Asset, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.inner.Generate(ctx, req)
}

var _ Generator = (*Retrying)(nil)
