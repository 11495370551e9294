package errors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors returned by the auth service. Handlers never build their own
// status codes; StatusCode is the single place that maps an error to HTTP.
var (
	ErrValidationFailed      = errors.New("validation failed")
	ErrEmailAlreadyInUse     = errors.New("email already in use")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountDeactivated    = errors.New("account is deactivated")
	ErrTooManyLoginAttempts  = errors.New("too many failed login attempts")
	ErrUnauthenticated       = errors.New("not authorized")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenRevoked          = errors.New("token revoked")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrForbidden             = errors.New("insufficient permissions")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrAlreadyVerified       = errors.New("email already verified")
	ErrCacheUnavailable      = errors.New("cache unavailable")
)

// StatusCode maps a service error to its HTTP status. Unknown errors are
// treated as internal failures.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidationFailed),
		errors.Is(err, ErrEmailAlreadyInUse),
		errors.Is(err, ErrInvalidOrExpiredToken),
		errors.Is(err, ErrAlreadyVerified):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrAccountDeactivated),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenRevoked),
		errors.Is(err, ErrInvalidRefreshToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrTooManyLoginAttempts):
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// PublicMessage returns the body message for an error. Token verification
// failures are collapsed to a uniform message so callers cannot distinguish
// a revoked token from an expired or malformed one.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenRevoked),
		errors.Is(err, ErrUnauthenticated):
		return ErrUnauthenticated.Error()
	case StatusCode(err) == fiber.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}
