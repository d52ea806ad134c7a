// internal/service/passwordreset/reset.go
package passwordreset

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"authcore-service/internal/audit"
	"authcore-service/internal/domain/identity"
	xerrors "authcore-service/internal/pkg/errors"
	"authcore-service/internal/pkg/ratelimit"

	"go.uber.org/zap"
)

// Mailer is the outgoing-notification collaborator. Delivery happens off
// the request path; failures are logged, never surfaced to the caller.
type Mailer interface {
	SendPasswordReset(to, token string) error
}

// Service runs the forgot-password flow: issue an opaque single-use secret,
// deliver it out of band, and later exchange it atomically for a new
// password. Every response on the request path is deliberately identical
// whether or not the account exists.
type Service struct {
	users    identity.UserStore
	tokens   identity.ResetTokenStore
	sessions identity.SessionRegistry
	hasher   identity.PasswordHasher
	limiter  *ratelimit.Limiter
	limitCfg ratelimit.Config
	mailer   Mailer
	audit    audit.Recorder
	ttl      time.Duration
	logger   *zap.Logger
}

func NewService(
	users identity.UserStore,
	tokens identity.ResetTokenStore,
	sessions identity.SessionRegistry,
	hasher identity.PasswordHasher,
	limiter *ratelimit.Limiter,
	limitCfg ratelimit.Config,
	mailer Mailer,
	recorder audit.Recorder,
	ttl time.Duration,
	logger *zap.Logger,
) *Service {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		hasher:   hasher,
		limiter:  limiter,
		limitCfg: limitCfg,
		mailer:   mailer,
		audit:    recorder,
		ttl:      ttl,
		logger:   logger,
	}
}

// hashToken is the only transformation ever applied before storage; the
// plaintext secret exists in memory and in the outgoing mail, nowhere else.
func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Request starts a reset for the given email. It always returns nil for
// input-shaped failures: a missing account, an inactive account and a
// throttled account all look exactly like success from the outside, so the
// endpoint cannot be used to enumerate registered addresses.
func (s *Service) Request(ctx context.Context, email, ip string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			s.audit.Record(ctx, audit.Event{
				Action: "password_reset_request", Email: email, IPAddress: ip,
				Success: false, Detail: "unknown account",
			})
			return nil
		}
		return err
	}

	if !user.IsActive() {
		s.audit.Record(ctx, audit.Event{
			Action: "password_reset_request", UserID: user.ID, Email: email, IPAddress: ip,
			Success: false, Detail: "inactive account",
		})
		return nil
	}

	// Throttle per account, not per address: a distributed attacker
	// rotating IPs still cannot flood one mailbox.
	res, err := s.limiter.Check(ctx, fmt.Sprintf("reset:user:%d", user.ID), s.limitCfg)
	if err != nil {
		return err
	}
	if !res.Allowed {
		s.audit.Record(ctx, audit.Event{
			Action: "password_reset_request", UserID: user.ID, Email: email, IPAddress: ip,
			Success: false, Detail: "rate_limited",
		})
		return nil
	}

	secret, err := newSecret()
	if err != nil {
		return err
	}

	token := &identity.ResetToken{
		TokenHash: hashToken(secret),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{
		Action: "password_reset_request", UserID: user.ID, Email: email, IPAddress: ip,
		Success: true,
	})

	// Delivery is fire-and-forget; the caller already got its generic
	// acknowledgement and must not learn whether mail went out.
	go func(to, secret string) {
		if err := s.mailer.SendPasswordReset(to, secret); err != nil {
			s.logger.Error("password reset mail failed",
				zap.String("email", to), zap.Error(err))
		}
	}(user.Email, secret)

	return nil
}

// TokenPreview is what Validate hands back for rendering a reset form.
type TokenPreview struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Validate checks a secret without consuming it, so a reset form can be
// rendered before the user commits to a new password. The owner address
// comes back masked.
func (s *Service) Validate(ctx context.Context, secret string) (*TokenPreview, error) {
	token, err := s.tokens.FindValidByHash(ctx, hashToken(secret))
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, xerrors.ErrInvalidResetToken
	}
	return &TokenPreview{Email: maskEmail(user.Email), ExpiresAt: token.ExpiresAt}, nil
}

// Consume exchanges a valid secret for a new password. The single-use flip
// and the password write commit together; afterwards every active session
// of the account is revoked so a stolen session cannot outlive the reset.
func (s *Service) Consume(ctx context.Context, secret, newPassword, ip string) error {
	token, err := s.tokens.FindValidByHash(ctx, hashToken(secret))
	if err != nil {
		return err
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	userID, err := s.tokens.Consume(ctx, token.TokenHash, passwordHash)
	if err != nil {
		return err
	}

	terminated, err := s.sessions.TerminateAll(ctx, userID)
	if err != nil {
		// The password already changed; session revocation failing is
		// operator-visible but not a reason to report failure upstream.
		s.logger.Error("session revocation after reset failed",
			zap.Int64("user_id", userID), zap.Error(err))
	}

	s.audit.Record(ctx, audit.Event{
		Action: "password_reset_consume", UserID: userID, IPAddress: ip,
		Success: true, Detail: fmt.Sprintf("terminated %d sessions", terminated),
	})

	return nil
}

// maskEmail keeps the first character of the local part and the full
// domain: "alice@example.com" becomes "a***@example.com".
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
