// internal/pkg/token/codec.go
package token

import (
	"fmt"
	"time"

	"authcore-service/internal/domain/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Config holds the two signing secrets and the TTL per token kind. Access
// and refresh tokens are signed with distinct secrets so a leaked refresh
// secret cannot mint API credentials and vice versa.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ActivationTTL time.Duration
	ResetTTL      time.Duration
}

// Codec mints and validates every structured token kind. It is stateless
// and never touches durable storage.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	activationTTL time.Duration
	resetTTL      time.Duration
}

// TokenPair is what login and refresh hand back to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
	RefreshJTI   string `json:"-"`
}

// NewCodec validates the signing configuration once at startup. A missing
// secret is a fatal misconfiguration, not a per-request error.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("token: access signing secret is not configured")
	}
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("token: refresh signing secret is not configured")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("token: access and refresh secrets must differ")
	}
	c := &Codec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		activationTTL: cfg.ActivationTTL,
		resetTTL:      cfg.ResetTTL,
	}
	if c.accessTTL == 0 {
		c.accessTTL = 15 * time.Minute
	}
	if c.refreshTTL == 0 {
		c.refreshTTL = 7 * 24 * time.Hour
	}
	if c.activationTTL == 0 {
		c.activationTTL = 24 * time.Hour
	}
	if c.resetTTL == 0 {
		c.resetTTL = time.Hour
	}
	return c, nil
}

func registered(audience string, ttl time.Duration, subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   subject,
		Audience:  []string{audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        ulid.Make().String(),
	}
}

// IssueAccessToken embeds the principal and session binding into a short
// lived API credential.
func (c *Codec) IssueAccessToken(p identity.Principal, sessionID string) (string, error) {
	claims := &AccessClaims{
		UserID:           p.ID,
		Email:            p.Email,
		Role:             p.Role,
		TenantID:         p.TenantID,
		SessionID:        sessionID,
		RegisteredClaims: registered(AudienceAPI, c.accessTTL, fmt.Sprintf("%d", p.ID)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
}

// IssueRefreshToken mints the long-lived credential bound to a session.
// The returned jti is recorded on the session row so rotation can detect
// replay of superseded tokens.
func (c *Codec) IssueRefreshToken(userID int64, sessionID string) (string, string, error) {
	claims := &RefreshClaims{
		UserID:           userID,
		SessionID:        sessionID,
		RegisteredClaims: registered(AudienceRefresh, c.refreshTTL, fmt.Sprintf("%d", userID)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	return signed, claims.ID, err
}

// IssuePair mints an access/refresh pair. ExpiresAt is read back out of the
// freshly minted access token rather than computed independently, so the
// value shown to clients can never drift from the token's real expiry.
func (c *Codec) IssuePair(p identity.Principal, sessionID string) (*TokenPair, error) {
	access, err := c.IssueAccessToken(p, sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, jti, err := c.IssueRefreshToken(p.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	claims := c.DecodeUnsafe(access)
	if claims == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("decode minted access token")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
		RefreshJTI:   jti,
	}, nil
}

// IssueActivationToken mints a stateless account-activation token.
func (c *Codec) IssueActivationToken(userID int64) (string, error) {
	claims := &PurposeClaims{
		UserID:           userID,
		Type:             TypeActivation,
		RegisteredClaims: registered(AudienceActivation, c.activationTTL, fmt.Sprintf("%d", userID)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
}

// IssuePasswordResetToken mints the JWT variant of a reset token. Distinct
// from the opaque single-use secret the reset flow persists.
func (c *Codec) IssuePasswordResetToken(userID int64) (string, error) {
	claims := &PurposeClaims{
		UserID:           userID,
		Type:             TypePasswordReset,
		RegisteredClaims: registered(AudiencePasswordReset, c.resetTTL, fmt.Sprintf("%d", userID)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
}

// DecodeUnsafe decodes the access-claims structure without verifying the
// signature. Diagnostics and expired-token introspection only; never an
// input to authorization decisions.
func (c *Codec) DecodeUnsafe(tokenString string) *AccessClaims {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

// IsExpiringSoon reports whether the token's exp claim falls inside the
// given threshold. Operates on the unverified decode.
func (c *Codec) IsExpiringSoon(tokenString string, threshold time.Duration) bool {
	claims := c.DecodeUnsafe(tokenString)
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return time.Until(claims.ExpiresAt.Time) <= threshold
}

// RemainingSeconds returns the seconds until the token's exp claim, or 0
// once past it (or for undecodable input).
func (c *Codec) RemainingSeconds(tokenString string) int64 {
	claims := c.DecodeUnsafe(tokenString)
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	remaining := int64(time.Until(claims.ExpiresAt.Time).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasRolePermission verifies the token and checks its role against the
// hierarchy. Unknown roles rank lowest, so a bad token or bad role always
// fails closed.
func (c *Codec) HasRolePermission(tokenString, requiredRole string) bool {
	claims, vr := c.VerifyAccessToken(tokenString)
	if !vr.Valid {
		return false
	}
	return RoleAtLeast(claims.Role, requiredRole)
}
