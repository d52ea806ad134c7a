// internal/pkg/token/verifier.go
package token

import (
	"errors"
	"fmt"

	xerrors "authcore-service/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyResult tags the outcome of a verification instead of surfacing raw
// parser errors. Expired means the signature checked out but exp is in the
// past; callers use the distinction to offer a refresh flow instead of
// forcing re-authentication. Anything else that fails is Invalid.
type VerifyResult struct {
	Valid   bool
	Expired bool
	Err     error
}

func verifyOK() VerifyResult {
	return VerifyResult{Valid: true}
}

func verifyExpired(err error) VerifyResult {
	return VerifyResult{Expired: true, Err: fmt.Errorf("%w: %v", xerrors.ErrTokenExpired, err)}
}

func verifyInvalid(err error) VerifyResult {
	return VerifyResult{Err: fmt.Errorf("%w: %v", xerrors.ErrTokenInvalid, err)}
}

// classify maps golang-jwt parse errors into the tagged result. Signature,
// issuer and audience problems take precedence over expiry: a tampered
// token that also happens to be old must read as Invalid, not Expired.
func classify(err error) VerifyResult {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenNotValidYet):
		return verifyInvalid(err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return verifyExpired(err)
	default:
		return verifyInvalid(err)
	}
}

func (c *Codec) parse(tokenString string, claims jwt.Claims, secret []byte, audience string) VerifyResult {
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(audience),
	)
	if err != nil {
		return classify(err)
	}
	return verifyOK()
}

// VerifyAccessToken checks signature, issuer, audience and expiry, in that
// order, and never panics or throws across the codec boundary.
func (c *Codec) VerifyAccessToken(tokenString string) (*AccessClaims, VerifyResult) {
	claims := &AccessClaims{}
	vr := c.parse(tokenString, claims, c.accessSecret, AudienceAPI)
	if !vr.Valid {
		return nil, vr
	}
	return claims, vr
}

// VerifyRefreshToken validates against the refresh secret and audience.
func (c *Codec) VerifyRefreshToken(tokenString string) (*RefreshClaims, VerifyResult) {
	claims := &RefreshClaims{}
	vr := c.parse(tokenString, claims, c.refreshSecret, AudienceRefresh)
	if !vr.Valid {
		return nil, vr
	}
	return claims, vr
}

func (c *Codec) verifyPurpose(tokenString, audience, wantType string) (*PurposeClaims, VerifyResult) {
	claims := &PurposeClaims{}
	vr := c.parse(tokenString, claims, c.accessSecret, audience)
	if !vr.Valid {
		return nil, vr
	}
	// Even with a good signature and audience, the type claim must match
	// the endpoint's expectation.
	if claims.Type != wantType {
		return nil, verifyInvalid(fmt.Errorf("token type %q, want %q", claims.Type, wantType))
	}
	return claims, vr
}

// VerifyActivationToken additionally requires the `type` claim to be
// "activation".
func (c *Codec) VerifyActivationToken(tokenString string) (*PurposeClaims, VerifyResult) {
	return c.verifyPurpose(tokenString, AudienceActivation, TypeActivation)
}

// VerifyPasswordResetToken additionally requires the `type` claim to be
// "password_reset".
func (c *Codec) VerifyPasswordResetToken(tokenString string) (*PurposeClaims, VerifyResult) {
	return c.verifyPurpose(tokenString, AudiencePasswordReset, TypePasswordReset)
}
