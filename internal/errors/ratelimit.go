package errors

import (
	"fmt"
	"time"
)

// RateLimitError wraps ErrTooManyLoginAttempts with the time left in the
// current window so the boundary can emit a Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrTooManyLoginAttempts, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return ErrTooManyLoginAttempts
}

func NewRateLimitError(retryAfter time.Duration) *RateLimitError {
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return &RateLimitError{RetryAfter: retryAfter}
}
