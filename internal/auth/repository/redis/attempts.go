package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// AttemptCounter keeps failed-login counters with a rolling window. The
// window TTL is set when the counter is created and left untouched on later
// increments, so the block always clears a fixed time after the first
// failure.
type AttemptCounter struct {
	rc *redis.Client
	cb *gobreaker.CircuitBreaker
}

func NewAttemptCounter(rc *redis.Client) *AttemptCounter {
	return &AttemptCounter{rc: rc, cb: newBreaker("login-attempts")}
}

func (a *AttemptCounter) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	if a.rc == nil {
		return 0, autherror.ErrCacheUnavailable
	}

	res, err := a.cb.Execute(func() (interface{}, error) {
		count, err := a.rc.Incr(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if count == 1 {
			if err := a.rc.Expire(ctx, key, window).Err(); err != nil {
				return nil, err
			}
		}
		return count, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", autherror.ErrCacheUnavailable, err)
	}

	return int(res.(int64)), nil
}

// Count returns the current counter value and how long the window has left.
// A missing key reads as zero.
func (a *AttemptCounter) Count(ctx context.Context, key string) (int, time.Duration, error) {
	if a.rc == nil {
		return 0, 0, autherror.ErrCacheUnavailable
	}

	type countTTL struct {
		count int64
		ttl   time.Duration
	}

	res, err := a.cb.Execute(func() (interface{}, error) {
		count, err := a.rc.Get(ctx, key).Int64()
		if errors.Is(err, redis.Nil) {
			return countTTL{}, nil
		}
		if err != nil {
			return nil, err
		}
		ttl, err := a.rc.TTL(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		return countTTL{count: count, ttl: ttl}, nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", autherror.ErrCacheUnavailable, err)
	}

	ct := res.(countTTL)
	if ct.ttl < 0 {
		ct.ttl = 0
	}

	return int(ct.count), ct.ttl, nil
}

func (a *AttemptCounter) Clear(ctx context.Context, key string) error {
	if a.rc == nil {
		return autherror.ErrCacheUnavailable
	}

	_, err := a.cb.Execute(func() (interface{}, error) {
		return nil, a.rc.Del(ctx, key).Err()
	})
	if err != nil {
		return fmt.Errorf("%w: %v", autherror.ErrCacheUnavailable, err)
	}

	return nil
}
