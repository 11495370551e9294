// Package redis holds the ephemeral auth stores: the token revocation ledger,
// the failed-login counters and the session cache. Every call runs through a
// circuit breaker so a dead redis fails fast instead of stalling each request
// on a dial timeout; callers treat ErrCacheUnavailable as a cache miss.
package redis

import (
	"time"

	"github.com/sony/gobreaker"
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}
