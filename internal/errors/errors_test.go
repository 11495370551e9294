package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: ErrValidationFailed, want: fiber.StatusBadRequest},
		{err: ErrEmailAlreadyInUse, want: fiber.StatusBadRequest},
		{err: ErrInvalidOrExpiredToken, want: fiber.StatusBadRequest},
		{err: ErrAlreadyVerified, want: fiber.StatusBadRequest},
		{err: ErrInvalidCredentials, want: fiber.StatusUnauthorized},
		{err: ErrAccountDeactivated, want: fiber.StatusUnauthorized},
		{err: ErrUnauthenticated, want: fiber.StatusUnauthorized},
		{err: ErrInvalidToken, want: fiber.StatusUnauthorized},
		{err: ErrTokenExpired, want: fiber.StatusUnauthorized},
		{err: ErrTokenRevoked, want: fiber.StatusUnauthorized},
		{err: ErrInvalidRefreshToken, want: fiber.StatusUnauthorized},
		{err: ErrForbidden, want: fiber.StatusForbidden},
		{err: ErrUserNotFound, want: fiber.StatusNotFound},
		{err: ErrTooManyLoginAttempts, want: fiber.StatusTooManyRequests},
		{err: errors.New("something else"), want: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestStatusCode_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", ErrTokenRevoked)
	assert.Equal(t, fiber.StatusUnauthorized, StatusCode(wrapped))

	rl := NewRateLimitError(time.Minute)
	assert.Equal(t, fiber.StatusTooManyRequests, StatusCode(rl))
}

func TestPublicMessage_CollapsesTokenFailures(t *testing.T) {
	// Revoked, expired and malformed tokens must be indistinguishable to the
	// caller.
	for _, err := range []error{ErrInvalidToken, ErrTokenExpired, ErrTokenRevoked, ErrUnauthenticated} {
		assert.Equal(t, "not authorized", PublicMessage(err))
	}

	assert.Equal(t, "invalid credentials", PublicMessage(ErrInvalidCredentials))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("pq: connection refused")))
}

func TestRateLimitError(t *testing.T) {
	rl := NewRateLimitError(7 * time.Minute)

	assert.ErrorIs(t, rl, ErrTooManyLoginAttempts)
	assert.Equal(t, 7*time.Minute, rl.RetryAfter)

	// The wait is never reported as less than a second.
	assert.Equal(t, time.Second, NewRateLimitError(0).RetryAfter)
	assert.Equal(t, time.Second, NewRateLimitError(-time.Minute).RetryAfter)
}
