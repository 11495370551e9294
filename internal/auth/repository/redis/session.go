package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const sessionKeyPrefix = "session:"

// SessionCache stores the JSON projection of a user so the gate can skip the
// credential store on repeat requests. A miss and an unreachable backend look
// the same to callers apart from the returned error.
type SessionCache struct {
	rc *redis.Client
	cb *gobreaker.CircuitBreaker
}

func NewSessionCache(rc *redis.Client) *SessionCache {
	return &SessionCache{rc: rc, cb: newBreaker("session-cache")}
}

func (s *SessionCache) Get(ctx context.Context, userID string) (*domain.SessionEntry, error) {
	if s.rc == nil {
		return nil, autherror.ErrCacheUnavailable
	}

	res, err := s.cb.Execute(func() (interface{}, error) {
		raw, err := s.rc.Get(ctx, sessionKeyPrefix+userID).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", autherror.ErrCacheUnavailable, err)
	}
	if res == nil {
		return nil, nil // cache miss
	}

	var entry domain.SessionEntry
	if err := json.Unmarshal([]byte(res.(string)), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session entry: %w", err)
	}

	return &entry, nil
}

func (s *SessionCache) Set(ctx context.Context, entry *domain.SessionEntry, ttl time.Duration) error {
	if s.rc == nil {
		return autherror.ErrCacheUnavailable
	}

	bytes, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal session entry: %w", err)
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		return nil, s.rc.Set(ctx, sessionKeyPrefix+entry.UserID, bytes, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("%w: %v", autherror.ErrCacheUnavailable, err)
	}

	return nil
}

func (s *SessionCache) Delete(ctx context.Context, userID string) error {
	if s.rc == nil {
		return autherror.ErrCacheUnavailable
	}

	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.rc.Del(ctx, sessionKeyPrefix+userID).Err()
	})
	if err != nil {
		return fmt.Errorf("%w: %v", autherror.ErrCacheUnavailable, err)
	}

	return nil
}
