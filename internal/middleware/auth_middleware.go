// internal/middleware/auth_middleware.go
package middleware

import (
	"context"

	"authcore-service/internal/domain/identity"
	"authcore-service/internal/pkg/response"
	"authcore-service/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

const principalKey = "auth_principal"

// Validator is the slice of the auth service the middleware needs.
type Validator interface {
	Validate(ctx context.Context, accessToken string) (identity.Principal, error)
}

// Authenticate extracts the bearer token (Authorization header first, then
// the access_token cookie) and resolves it to a Principal. The dual check
// against the session registry happens inside Validate; a revoked session
// never gets past this middleware no matter how fresh its token is.
func Authenticate(svc Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := token.ExtractFromAuthorizationHeader(c.GetHeader("Authorization"))
		if raw == "" {
			raw = token.ExtractFromCookie(c.Request.Cookies(), "access_token")
		}
		if raw == "" {
			response.Unauthorized(c, "missing credentials")
			return
		}

		principal, err := svc.Validate(c.Request.Context(), raw)
		if err != nil {
			response.FromError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// GetPrincipal returns the authenticated principal, if any.
func GetPrincipal(c *gin.Context) (identity.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return identity.Principal{}, false
	}
	p, ok := v.(identity.Principal)
	return p, ok
}

// MustGetPrincipal is for handlers mounted behind Authenticate; a missing
// principal there is a routing bug, answered with 401 rather than a panic.
func MustGetPrincipal(c *gin.Context) (identity.Principal, bool) {
	p, ok := GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "missing credentials")
	}
	return p, ok
}

// RequireRole gates a route on the role hierarchy. An unknown role ranks
// below every known one, so it always fails closed.
func RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := MustGetPrincipal(c)
		if !ok {
			return
		}
		if !token.RoleAtLeast(p.Role, required) {
			response.Forbidden(c, "insufficient role")
			return
		}
		c.Next()
	}
}
