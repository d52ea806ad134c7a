// internal/pkg/token/claims.go
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token purposes carried in the `type` claim of single-purpose tokens.
const (
	TypeActivation    = "activation"
	TypePasswordReset = "password_reset"
)

// Audiences. Each token kind is only accepted by its intended consumer.
const (
	AudienceAPI           = "api"
	AudienceRefresh       = "refresh"
	AudienceActivation    = "activation"
	AudiencePasswordReset = "password_reset"
)

// Issuer stamped on every token this codec mints.
const Issuer = "auth"

// AccessClaims authorize API calls for the lifetime of the token.
type AccessClaims struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TenantID  int64  `json:"tenant_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the binding back to a session row; everything
// else is re-read from the user store at redemption time.
type RefreshClaims struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// PurposeClaims back single-purpose tokens (activation, password reset as
// JWT). The Type claim is checked on verification in addition to the
// audience so a token minted for one endpoint cannot be replayed against
// another.
type PurposeClaims struct {
	UserID int64  `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}
