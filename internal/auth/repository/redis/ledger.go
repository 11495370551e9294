package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const ledgerKeyPrefix = "blacklist:"

// Ledger is the redis-backed token revocation ledger. Tokens are stored
// hashed; the TTL equals the token's remaining validity so entries expire
// exactly when the token would have anyway.
type Ledger struct {
	rc *redis.Client
	cb *gobreaker.CircuitBreaker
}

func NewLedger(rc *redis.Client) *Ledger {
	return &Ledger{rc: rc, cb: newBreaker("revocation-ledger")}
}

func ledgerKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return ledgerKeyPrefix + hex.EncodeToString(sum[:])
}

func (l *Ledger) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to blacklist.
		return nil
	}
	if l.rc == nil {
		return autherror.ErrCacheUnavailable
	}

	_, err := l.cb.Execute(func() (interface{}, error) {
		return nil, l.rc.Set(ctx, ledgerKey(token), time.Now().Unix(), ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("%w: %v", autherror.ErrCacheUnavailable, err)
	}

	return nil
}

// IsRevoked reports whether the token is blacklisted. When the backend is
// unreachable it answers false together with ErrCacheUnavailable: revocation
// checking fails open by policy, and the caller decides whether to log it.
func (l *Ledger) IsRevoked(ctx context.Context, token string) (bool, error) {
	if l.rc == nil {
		return false, autherror.ErrCacheUnavailable
	}

	res, err := l.cb.Execute(func() (interface{}, error) {
		return l.rc.Exists(ctx, ledgerKey(token)).Result()
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", autherror.ErrCacheUnavailable, err)
	}

	return res.(int64) > 0, nil
}
