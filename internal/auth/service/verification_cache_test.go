package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func cacheClaims(ttl time.Duration) *JWTCustomClaims {
	return &JWTCustomClaims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func TestVerificationCache_PutGet(t *testing.T) {
	c := NewVerificationCache(10, time.Minute)

	claims := cacheClaims(time.Hour)
	c.Put("token-a", claims)

	got, ok := c.Get("token-a")
	assert.True(t, ok)
	assert.Equal(t, "user-123", got.UserID)

	_, ok = c.Get("token-b")
	assert.False(t, ok)
}

func TestVerificationCache_RefusesNearExpiryTokens(t *testing.T) {
	c := NewVerificationCache(10, time.Minute)

	// A token expiring before the cache TTL must not be memoized, otherwise
	// the cache would vouch for an expired token.
	c.Put("short-lived", cacheClaims(time.Second))

	_, ok := c.Get("short-lived")
	assert.False(t, ok)
}

func TestVerificationCache_EntriesExpire(t *testing.T) {
	c := NewVerificationCache(10, 50*time.Millisecond)

	c.Put("token-a", cacheClaims(time.Hour))
	_, ok := c.Get("token-a")
	assert.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	_, ok = c.Get("token-a")
	assert.False(t, ok)
}

func TestVerificationCache_BoundedSize(t *testing.T) {
	c := NewVerificationCache(8, time.Minute)

	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("token-%d", i), cacheClaims(time.Hour))
	}

	assert.LessOrEqual(t, c.Len(), 8)
}

func TestVerificationCache_Invalidate(t *testing.T) {
	c := NewVerificationCache(10, time.Minute)

	c.Put("token-a", cacheClaims(time.Hour))
	c.Invalidate("token-a")

	_, ok := c.Get("token-a")
	assert.False(t, ok)
}
