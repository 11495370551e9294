package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/AnthoniusHendriyanto/ecommerce-auth/config"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/metrics"
	authconstant "github.com/AnthoniusHendriyanto/ecommerce-auth/pkg/constant"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	failKeyPrefix       = "login:fail:"
	strictFailKeyPrefix = "login:fail:strict:"
	asyncTimeout        = 5 * time.Second
)

type UserService struct {
	repo         domain.UserRepository
	tokenService TokenGenerator
	ledger       domain.RevocationLedger
	attempts     domain.AttemptStore
	sessions     domain.SessionStore
	notifier     domain.Notifier
	cfg          *config.Config
}

func NewUserService(
	repo domain.UserRepository,
	tokenService TokenGenerator,
	ledger domain.RevocationLedger,
	attempts domain.AttemptStore,
	sessions domain.SessionStore,
	notifier domain.Notifier,
	cfg *config.Config,
) *UserService {
	return &UserService{
		repo:         repo,
		tokenService: tokenService,
		ledger:       ledger,
		attempts:     attempts,
		sessions:     sessions,
		notifier:     notifier,
		cfg:          cfg,
	}
}

func failKey(email string) string {
	return failKeyPrefix + strings.ToLower(email)
}

func strictFailKey(email string) string {
	return strictFailKeyPrefix + strings.ToLower(email)
}

// failOpen reports whether err is a cache outage the operation should shrug
// off. Anything else is a real error.
func failOpen(op string, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, autherror.ErrCacheUnavailable) {
		metrics.CacheFailOpens.Inc()
		log.Warn().Err(err).Str("op", op).Msg("cache unavailable, failing open")
		return true
	}
	return false
}

// async runs fn detached from the request with its own deadline. Used for
// writes whose outcome must not block or fail the surrounding operation.
func async(op string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Str("op", op).Msg("background task failed")
		}
	}()
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existingUser, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	verificationToken, err := generateOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()

	user := &domain.User{
		ID:                uuid.NewString(),
		Email:             email,
		PasswordHash:      string(hashedPassword),
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Phone:             input.Phone,
		Role:              authconstant.DefaultUserRole,
		Active:            true,
		EmailVerified:     false,
		VerificationToken: verificationToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	accessToken, refreshToken, _, err := s.tokenService.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	async("send verification email", func(ctx context.Context) error {
		return s.notifier.SendVerificationEmail(ctx, user.Email, verificationToken)
	})

	metrics.Registrations.Inc()

	return &dto.AuthResponse{
		User:         dto.NewUserOutput(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if err := s.checkLoginAllowed(ctx, email); err != nil {
		metrics.Logins.WithLabelValues("rate_limited").Inc()
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// The response for an unknown email and a wrong password is identical so
	// the endpoint cannot be used to probe which addresses are registered.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		s.recordFailedAttempt(ctx, email)
		metrics.Logins.WithLabelValues("invalid_credentials").Inc()
		return nil, autherror.ErrInvalidCredentials
	}

	if !user.Active {
		metrics.Logins.WithLabelValues("deactivated").Inc()
		return nil, autherror.ErrAccountDeactivated
	}

	if err := s.attempts.Clear(ctx, failKey(email)); err != nil && !failOpen("clear attempts", err) {
		return nil, err
	}
	if err := s.attempts.Clear(ctx, strictFailKey(email)); err != nil && !failOpen("clear strict attempts", err) {
		return nil, err
	}

	accessToken, refreshToken, _, err := s.tokenService.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now

	async("record last login", func(ctx context.Context) error {
		return s.repo.UpdateLastLogin(ctx, user.ID, now)
	})

	if err := s.sessions.Set(ctx, domain.SessionFromUser(user), s.cfg.SessionCacheTTL()); err != nil {
		failOpen("populate session cache", err)
	}

	metrics.Logins.WithLabelValues("ok").Inc()

	return &dto.AuthResponse{
		User:         dto.NewUserOutput(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// checkLoginAllowed consults both failed-attempt windows before any store
// access. The strict window is longer and lower-capped to slow targeted
// credential stuffing against a single identity.
func (s *UserService) checkLoginAllowed(ctx context.Context, email string) error {
	count, retryAfter, err := s.attempts.Count(ctx, failKey(email))
	if err != nil {
		if !failOpen("count attempts", err) {
			return err
		}
		return nil
	}
	if count >= s.cfg.LoginMaxAttempts {
		return autherror.NewRateLimitError(retryAfter)
	}

	strictCount, strictRetryAfter, err := s.attempts.Count(ctx, strictFailKey(email))
	if err != nil {
		if !failOpen("count strict attempts", err) {
			return err
		}
		return nil
	}
	if strictCount >= s.cfg.StrictMaxAttempts {
		return autherror.NewRateLimitError(strictRetryAfter)
	}

	return nil
}

func (s *UserService) recordFailedAttempt(ctx context.Context, email string) {
	if _, err := s.attempts.Increment(ctx, failKey(email), s.cfg.LoginWindow()); err != nil {
		failOpen("increment attempts", err)
	}
	if _, err := s.attempts.Increment(ctx, strictFailKey(email), s.cfg.StrictWindow()); err != nil {
		failOpen("increment strict attempts", err)
	}
}

// Refresh exchanges a refresh token for a fresh pair. The presented token is
// written to the revocation ledger before the replacement is minted, so a
// concurrent replay of the same token observes it already revoked.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.TokenResponse, error) {
	revoked, err := s.ledger.IsRevoked(ctx, input.RefreshToken)
	if err != nil {
		failOpen("check refresh revocation", err)
	}
	if revoked {
		metrics.Refreshes.WithLabelValues("revoked").Inc()
		return nil, autherror.ErrTokenRevoked
	}

	claims, err := s.tokenService.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		metrics.Refreshes.WithLabelValues("invalid").Inc()
		return nil, autherror.ErrInvalidRefreshToken
	}

	entry, err := s.resolveSession(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if entry == nil || !entry.Active {
		metrics.Refreshes.WithLabelValues("invalid").Inc()
		return nil, autherror.ErrInvalidRefreshToken
	}

	// Rotation point: the old token must be unusable before the new pair
	// exists. When the ledger is down we still rotate; availability wins over
	// perfect revocation under partial outage.
	remaining := s.tokenService.GetRefreshTokenExpiry()
	if claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.ledger.Revoke(ctx, input.RefreshToken, remaining); err != nil && !failOpen("rotate refresh token", err) {
		return nil, err
	}

	accessToken, refreshToken, _, err := s.tokenService.Generate(entry.UserID, entry.Email, entry.Role)
	if err != nil {
		return nil, err
	}

	metrics.Refreshes.WithLabelValues("ok").Inc()

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// resolveSession answers the cached projection for a user, falling back to
// the store and repopulating the cache on a miss. A missing or unknown user
// resolves to nil without error.
func (s *UserService) resolveSession(ctx context.Context, userID string) (*domain.SessionEntry, error) {
	entry, err := s.sessions.Get(ctx, userID)
	if err != nil {
		failOpen("session cache lookup", err)
	}
	if entry != nil {
		return entry, nil
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	entry = domain.SessionFromUser(user)
	if err := s.sessions.Set(ctx, entry, s.cfg.SessionCacheTTL()); err != nil {
		failOpen("session cache populate", err)
	}

	return entry, nil
}

// ResolveSession is the store-backed identity lookup used by the gate.
func (s *UserService) ResolveSession(ctx context.Context, userID string) (*domain.SessionEntry, error) {
	return s.resolveSession(ctx, userID)
}

// Logout blacklists whichever tokens the client presented, each for its
// remaining lifetime. Calling it twice with the same tokens is harmless, and
// tokens that fail to parse are ignored: the response is 200 either way.
func (s *UserService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		remaining := s.tokenService.RemainingLifetime(token)
		if remaining <= 0 {
			continue
		}
		if err := s.ledger.Revoke(ctx, token, remaining); err != nil {
			failOpen("logout revoke", err)
		}
	}

	return nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*dto.UserOutput, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}

	return dto.NewUserOutput(user), nil
}

// ListUsers is the admin-only listing behind the role gate.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*dto.UserOutput, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.UserOutput, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserOutput(u))
	}

	return out, nil
}

// ChangePassword verifies the current password before storing the new hash.
// Previously issued access tokens stay valid until they expire; only future
// logins and refreshes use the new credential.
func (s *UserService) ChangePassword(ctx context.Context, userID string, input dto.ChangePasswordInput) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)) != nil {
		return autherror.ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(ctx, userID, string(hashedPassword))
}

// ForgotPassword issues a single-use reset token. Unknown emails return
// ErrUserNotFound; the enumeration trade-off is inherited and documented.
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", autherror.ErrUserNotFound
	}

	resetToken, err := generateOpaqueToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(s.cfg.ResetTokenExpiry())
	if err := s.repo.SetResetToken(ctx, user.ID, resetToken, expiresAt); err != nil {
		return "", err
	}

	async("send password reset email", func(ctx context.Context) error {
		return s.notifier.SendPasswordResetEmail(ctx, user.Email, resetToken)
	})

	return resetToken, nil
}

func (s *UserService) ResetPassword(ctx context.Context, token string, input dto.ResetPasswordInput) (*dto.AuthResponse, error) {
	user, err := s.repo.GetByResetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrInvalidOrExpiredToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ResetPassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return nil, err
	}

	accessToken, refreshToken, _, err := s.tokenService.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	user.ResetToken = ""
	user.ResetTokenExpiresAt = nil

	return &dto.AuthResponse{
		User:         dto.NewUserOutput(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrInvalidOrExpiredToken
	}
	if user.EmailVerified {
		return autherror.ErrAlreadyVerified
	}

	if err := s.repo.MarkEmailVerified(ctx, user.ID); err != nil {
		return err
	}

	// The cached projection carries the verified flag; drop it so the next
	// request sees the new state.
	if err := s.sessions.Delete(ctx, user.ID); err != nil {
		failOpen("invalidate session cache", err)
	}

	return nil
}

func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}
	if user.EmailVerified {
		return autherror.ErrAlreadyVerified
	}

	verificationToken, err := generateOpaqueToken()
	if err != nil {
		return err
	}

	if err := s.repo.SetVerificationToken(ctx, user.ID, verificationToken); err != nil {
		return err
	}

	async("resend verification email", func(ctx context.Context) error {
		return s.notifier.SendVerificationEmail(ctx, user.Email, verificationToken)
	})

	return nil
}
