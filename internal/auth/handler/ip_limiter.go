package handler

import (
	"sync"
	"time"

	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const ipLimiterCleanupInterval = 5 * time.Minute

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// IPRateLimiter caps request throughput per client address across the auth
// routes. It complements the per-email failed-login counters: this one is
// in-process and guards the endpoints themselves, the counters guard a
// specific identity.
type IPRateLimiter struct {
	perMin int
	burst  int

	mu       sync.RWMutex
	limiters map[string]*ipLimiter

	stopCh chan struct{}
}

func NewIPRateLimiter(perMin, burst int) *IPRateLimiter {
	rl := &IPRateLimiter{
		perMin:   perMin,
		burst:    burst,
		limiters: make(map[string]*ipLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *IPRateLimiter) Stop() {
	close(rl.stopCh)
}

// Middleware rejects requests from addresses that exhausted their bucket.
func (rl *IPRateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.get(c.IP()).Allow() {
			c.Set(fiber.HeaderRetryAfter, formatSeconds(time.Minute/time.Duration(rl.perMin)))
			return autherror.NewRateLimitError(time.Minute / time.Duration(rl.perMin))
		}
		return c.Next()
	}
}

func (rl *IPRateLimiter) get(ip string) *rate.Limiter {
	rl.mu.RLock()
	l, exists := rl.limiters[ip]
	rl.mu.RUnlock()

	if exists {
		rl.mu.Lock()
		l.lastAccess = time.Now()
		rl.mu.Unlock()
		return l.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, exists := rl.limiters[ip]; exists {
		l.lastAccess = time.Now()
		return l.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(float64(rl.perMin)/60.0), rl.burst)
	rl.limiters[ip] = &ipLimiter{limiter: limiter, lastAccess: time.Now()}

	return limiter
}

func (rl *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(ipLimiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *IPRateLimiter) cleanup() {
	ttl := ipLimiterCleanupInterval * 2
	now := time.Now()

	rl.mu.Lock()
	for ip, l := range rl.limiters {
		if now.Sub(l.lastAccess) > ttl {
			delete(rl.limiters, ip)
		}
	}
	rl.mu.Unlock()
}
