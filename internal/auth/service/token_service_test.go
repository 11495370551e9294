package service

import (
	"testing"
	"time"

	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name          string
		accessSecret  string
		refreshSecret string
		accessExpiry  time.Duration
		refreshExpiry time.Duration
	}{
		{
			name:          "valid parameters",
			accessSecret:  "access-secret-key",
			refreshSecret: "refresh-secret-key",
			accessExpiry:  15 * time.Minute,
			refreshExpiry: 24 * time.Hour,
		},
		{
			name:          "empty secrets",
			accessSecret:  "",
			refreshSecret: "",
			accessExpiry:  30 * time.Minute,
			refreshExpiry: 48 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTokenService(tt.accessSecret, tt.refreshSecret, tt.accessExpiry, tt.refreshExpiry)

			assert.NotNil(t, ts)
			assert.Equal(t, tt.accessSecret, ts.AccessTokenSecret)
			assert.Equal(t, tt.refreshSecret, ts.RefreshTokenSecret)
			assert.Equal(t, tt.accessExpiry, ts.AccessTokenExpiry)
			assert.Equal(t, tt.refreshExpiry, ts.RefreshTokenExpiry)
		})
	}
}

func TestTokenService_Generate(t *testing.T) {
	ts := NewTokenService("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)

	accessToken, refreshToken, expiresAt, err := ts.Generate("user-123", "test@example.com", "customer")

	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := ts.VerifyAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)

	refreshClaims, err := ts.VerifyRefreshToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", refreshClaims.UserID)
	// The refresh token carries only the subject.
	assert.Empty(t, refreshClaims.Role)
}

func TestTokenService_Verify_WrongKind(t *testing.T) {
	ts := NewTokenService("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)

	accessToken, refreshToken, _, err := ts.Generate("user-123", "test@example.com", "customer")
	require.NoError(t, err)

	// A refresh token must not verify as an access token and vice versa.
	_, err = ts.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, err, autherror.ErrInvalidToken)

	_, err = ts.VerifyRefreshToken(accessToken)
	assert.ErrorIs(t, err, autherror.ErrInvalidToken)
}

func TestTokenService_Verify_Expired(t *testing.T) {
	ts := NewTokenService("test-access-secret", "test-refresh-secret", -1*time.Minute, -1*time.Minute)

	accessToken, refreshToken, _, err := ts.Generate("user-123", "test@example.com", "customer")
	require.NoError(t, err)

	_, err = ts.VerifyAccessToken(accessToken)
	assert.ErrorIs(t, err, autherror.ErrTokenExpired)

	_, err = ts.VerifyRefreshToken(refreshToken)
	assert.ErrorIs(t, err, autherror.ErrTokenExpired)
}

func TestTokenService_Verify_Malformed(t *testing.T) {
	ts := NewTokenService("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ts.VerifyAccessToken(token)
		assert.ErrorIs(t, err, autherror.ErrInvalidToken)
	}
}

func TestTokenService_Verify_WrongSigningMethod(t *testing.T) {
	ts := NewTokenService("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)

	// alg=none is rejected before the signature is even considered.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, JWTCustomClaims{UserID: "user-123"})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ts.VerifyAccessToken(tokenString)
	assert.ErrorIs(t, err, autherror.ErrInvalidToken)
}

func TestTokenService_RemainingLifetime(t *testing.T) {
	ts := NewTokenService("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)

	accessToken, refreshToken, _, err := ts.Generate("user-123", "test@example.com", "customer")
	require.NoError(t, err)

	accessRemaining := ts.RemainingLifetime(accessToken)
	assert.InDelta(t, (15 * time.Minute).Seconds(), accessRemaining.Seconds(), 5)

	refreshRemaining := ts.RemainingLifetime(refreshToken)
	assert.InDelta(t, (24 * time.Hour).Seconds(), refreshRemaining.Seconds(), 5)

	assert.Zero(t, ts.RemainingLifetime("garbage"))

	expired := NewTokenService("test-access-secret", "test-refresh-secret", -1*time.Minute, -1*time.Minute)
	expiredToken, _, _, err := expired.Generate("user-123", "test@example.com", "customer")
	require.NoError(t, err)
	assert.Zero(t, ts.RemainingLifetime(expiredToken))
}
