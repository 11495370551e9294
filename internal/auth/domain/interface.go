package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/domain UserRepository
//go:generate mockgen -destination=../../mocks/mock_stores.go -package=mocks github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/domain RevocationLedger,AttemptStore,SessionStore,Notifier

// UserRepository is the durable credential store. Email lookups are
// case-insensitive; uniqueness is enforced by the store itself.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, token string) (*User, error)
	ResetPassword(ctx context.Context, id, passwordHash string) error
	SetVerificationToken(ctx context.Context, id, token string) error
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*User, error)
}

// RevocationLedger records blacklisted tokens until their natural expiry.
// Implementations must fail open: an unreachable backend reads as "not
// revoked" and IsRevoked reports the lookup error alongside that answer.
type RevocationLedger interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AttemptStore tracks consecutive failed logins per key inside a rolling
// window. Count returns the current value plus the time left in the window.
type AttemptStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	Count(ctx context.Context, key string) (int, time.Duration, error)
	Clear(ctx context.Context, key string) error
}

// SessionStore caches the per-user session projection with a short TTL.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*SessionEntry, error)
	Set(ctx context.Context, entry *SessionEntry, ttl time.Duration) error
	Delete(ctx context.Context, userID string) error
}

// Notifier delivers out-of-band mail. Calls are fire-and-forget from the
// service's point of view; a delivery failure never fails the operation that
// triggered it.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}
