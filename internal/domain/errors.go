package domain

import (
	"context"
	"errors"
)

var (
	// ErrAssetNotFound is the resolver's negative result: no reusable asset
	// exists for the product. It drives fallback to generation and is not a
	// pipeline failure.
	ErrAssetNotFound = errors.New("asset not found")

	ErrGenerationFailed  = errors.New("generation failed")
	ErrCompositionFailed = errors.New("composition failed")
	ErrPersistFailed     = errors.New("persist failed")
)

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

// Transient marks a remote failure as retriable (timeout, rate limit,
// temporary service error). The retry layer only re-attempts errors that
// carry this marker.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err, anywhere in its chain, was marked
// transient or is a context deadline from a timed-out attempt.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
