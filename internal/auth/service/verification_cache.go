package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// VerificationCache memoizes successful signature verifications for a short
// window so the gate does not re-run HMAC on every request carrying the same
// token. Bounded by size (LRU) and by TTL; the expirable LRU runs its own
// background eviction tick and is safe for concurrent use.
//
// Entries never outlive the token itself: Put refuses tokens whose remaining
// lifetime is shorter than the cache TTL.
type VerificationCache struct {
	lru *expirable.LRU[string, *JWTCustomClaims]
	ttl time.Duration
}

func NewVerificationCache(size int, ttl time.Duration) *VerificationCache {
	return &VerificationCache{
		lru: expirable.NewLRU[string, *JWTCustomClaims](size, nil, ttl),
		ttl: ttl,
	}
}

func (c *VerificationCache) Get(token string) (*JWTCustomClaims, bool) {
	return c.lru.Get(token)
}

func (c *VerificationCache) Put(token string, claims *JWTCustomClaims) {
	if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < c.ttl {
		return
	}
	c.lru.Add(token, claims)
}

// Invalidate drops a single token, used when a cached token gets revoked.
func (c *VerificationCache) Invalidate(token string) {
	c.lru.Remove(token)
}

func (c *VerificationCache) Len() int {
	return c.lru.Len()
}
