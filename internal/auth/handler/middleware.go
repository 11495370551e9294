package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/service"
	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const sessionLocalsKey = "authSession"

// SessionResolver resolves a subject id to its session projection, consulting
// the session cache before the credential store. *service.UserService
// implements it.
type SessionResolver interface {
	ResolveSession(ctx context.Context, userID string) (*domain.SessionEntry, error)
}

// AuthMiddleware is the access-control gate. Per request: bearer extraction,
// revocation check, signature verification (memoized in a bounded short-TTL
// cache), identity resolution, active check, then context attachment.
type AuthMiddleware struct {
	tokens      service.TokenGenerator
	ledger      domain.RevocationLedger
	verifyCache *service.VerificationCache
	resolver    SessionResolver
}

func NewAuthMiddleware(
	tokens service.TokenGenerator,
	ledger domain.RevocationLedger,
	verifyCache *service.VerificationCache,
	resolver SessionResolver,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:      tokens,
		ledger:      ledger,
		verifyCache: verifyCache,
		resolver:    resolver,
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// authenticate runs the gate steps and returns the resolved session.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*domain.SessionEntry, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, autherror.ErrUnauthenticated
	}

	ctx := c.UserContext()

	revoked, err := m.ledger.IsRevoked(ctx, token)
	if err != nil {
		// Fail open: an unreachable ledger reads as "not revoked".
		log.Warn().Err(err).Msg("revocation check failed open")
		metrics.CacheFailOpens.Inc()
	}
	if revoked {
		metrics.RevokedTokenRejections.Inc()
		m.verifyCache.Invalidate(token)
		return nil, autherror.ErrTokenRevoked
	}

	claims, ok := m.verifyCache.Get(token)
	if !ok {
		claims, err = m.tokens.VerifyAccessToken(token)
		if err != nil {
			return nil, err // ErrInvalidToken or ErrTokenExpired
		}
		m.verifyCache.Put(token, claims)
	}

	entry, err := m.resolver.ResolveSession(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, autherror.ErrUnauthenticated
	}
	if !entry.Active {
		return nil, autherror.ErrAccountDeactivated
	}

	return entry, nil
}

// RequireAuth rejects the request unless the gate passes.
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		entry, err := m.authenticate(c)
		if err != nil {
			return err
		}
		c.Locals(sessionLocalsKey, entry)
		return c.Next()
	}
}

// OptionalAuth runs the same gate but swallows every failure, leaving the
// request unauthenticated instead of rejecting it. Used by endpoints that
// serve both guests and signed-in users.
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if entry, err := m.authenticate(c); err == nil {
			c.Locals(sessionLocalsKey, entry)
		}
		return c.Next()
	}
}

// RequireRole gates a route on role membership. Must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entry := SessionFromContext(c)
		if entry == nil {
			return autherror.ErrUnauthenticated
		}
		for _, role := range roles {
			if entry.Role == role {
				return c.Next()
			}
		}
		return autherror.ErrForbidden
	}
}

// SessionFromContext returns the session the gate attached, or nil.
func SessionFromContext(c *fiber.Ctx) *domain.SessionEntry {
	entry, _ := c.Locals(sessionLocalsKey).(*domain.SessionEntry)
	return entry
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
