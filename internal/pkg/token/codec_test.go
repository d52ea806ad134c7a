// internal/pkg/token/codec_test.go
package token

import (
	"net/http"
	"testing"
	"time"

	"authcore-service/internal/domain/identity"
	xerrors "authcore-service/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
)

func newTestCodec(t *testing.T, cfg Config) *Codec {
	t.Helper()
	if cfg.AccessSecret == "" {
		cfg.AccessSecret = testAccessSecret
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = testRefreshSecret
	}
	c, err := NewCodec(cfg)
	require.NoError(t, err)
	return c
}

func testPrincipal() identity.Principal {
	return identity.Principal{
		ID:       42,
		Email:    "alice@example.com",
		Role:     "manager",
		TenantID: 7,
	}
}

func TestNewCodecConfigValidation(t *testing.T) {
	_, err := NewCodec(Config{RefreshSecret: "x"})
	assert.Error(t, err, "missing access secret must be rejected")

	_, err = NewCodec(Config{AccessSecret: "x"})
	assert.Error(t, err, "missing refresh secret must be rejected")

	_, err = NewCodec(Config{AccessSecret: "same", RefreshSecret: "same"})
	assert.Error(t, err, "identical secrets must be rejected")
}

func TestAccessTokenRoundTrip(t *testing.T) {
	codec := newTestCodec(t, Config{})

	signed, err := codec.IssueAccessToken(testPrincipal(), "sess-1")
	require.NoError(t, err)

	claims, vr := codec.VerifyAccessToken(signed)
	require.True(t, vr.Valid)
	assert.False(t, vr.Expired)
	assert.NoError(t, vr.Err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, int64(7), claims.TenantID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.NotEmpty(t, claims.ID, "jti must be stamped")
}

func TestExpiredTokenIsExpiredNotInvalid(t *testing.T) {
	codec := newTestCodec(t, Config{AccessTTL: -time.Minute})

	signed, err := codec.IssueAccessToken(testPrincipal(), "sess-1")
	require.NoError(t, err)

	claims, vr := codec.VerifyAccessToken(signed)
	assert.Nil(t, claims)
	assert.False(t, vr.Valid)
	assert.True(t, vr.Expired)
	assert.ErrorIs(t, vr.Err, xerrors.ErrTokenExpired)
}

func TestTamperedTokenIsInvalidEvenWhenExpired(t *testing.T) {
	// Signed with a different key AND already expired: the signature
	// failure must win over the expiry.
	other := newTestCodec(t, Config{
		AccessSecret:  "some-other-secret",
		RefreshSecret: testRefreshSecret,
		AccessTTL:     -time.Minute,
	})
	signed, err := other.IssueAccessToken(testPrincipal(), "sess-1")
	require.NoError(t, err)

	codec := newTestCodec(t, Config{})
	claims, vr := codec.VerifyAccessToken(signed)
	assert.Nil(t, claims)
	assert.False(t, vr.Valid)
	assert.False(t, vr.Expired, "tampered token must read invalid, not expired")
	assert.ErrorIs(t, vr.Err, xerrors.ErrTokenInvalid)
}

func TestGarbageTokenIsInvalid(t *testing.T) {
	codec := newTestCodec(t, Config{})
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, vr := codec.VerifyAccessToken(tok)
		assert.False(t, vr.Valid)
		assert.False(t, vr.Expired)
		assert.ErrorIs(t, vr.Err, xerrors.ErrTokenInvalid)
	}
}

func TestAccessAndRefreshSecretsAreNotInterchangeable(t *testing.T) {
	codec := newTestCodec(t, Config{})

	access, err := codec.IssueAccessToken(testPrincipal(), "sess-1")
	require.NoError(t, err)
	refresh, _, err := codec.IssueRefreshToken(42, "sess-1")
	require.NoError(t, err)

	_, vr := codec.VerifyRefreshToken(access)
	assert.False(t, vr.Valid, "access token must not verify as refresh")

	_, vr = codec.VerifyAccessToken(refresh)
	assert.False(t, vr.Valid, "refresh token must not verify as access")
}

func TestRefreshTokenRoundTripReturnsJTI(t *testing.T) {
	codec := newTestCodec(t, Config{})

	signed, jti, err := codec.IssueRefreshToken(42, "sess-9")
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, vr := codec.VerifyRefreshToken(signed)
	require.True(t, vr.Valid)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "sess-9", claims.SessionID)
	assert.Equal(t, jti, claims.ID)
}

func TestIssuePairExpiresAtMatchesAccessToken(t *testing.T) {
	codec := newTestCodec(t, Config{AccessTTL: 15 * time.Minute})

	pair, err := codec.IssuePair(testPrincipal(), "sess-1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEmpty(t, pair.RefreshJTI)

	claims := codec.DecodeUnsafe(pair.AccessToken)
	require.NotNil(t, claims)
	want := claims.ExpiresAt.Time.UTC().Format(time.RFC3339)
	assert.Equal(t, want, pair.ExpiresAt, "ExpiresAt must be read off the minted token")
}

func TestPurposeTokensCheckTypeClaim(t *testing.T) {
	codec := newTestCodec(t, Config{})

	activation, err := codec.IssueActivationToken(42)
	require.NoError(t, err)
	reset, err := codec.IssuePasswordResetToken(42)
	require.NoError(t, err)

	claims, vr := codec.VerifyActivationToken(activation)
	require.True(t, vr.Valid)
	assert.Equal(t, TypeActivation, claims.Type)

	claims, vr = codec.VerifyPasswordResetToken(reset)
	require.True(t, vr.Valid)
	assert.Equal(t, TypePasswordReset, claims.Type)

	// Cross-replay fails on the audience check.
	_, vr = codec.VerifyPasswordResetToken(activation)
	assert.False(t, vr.Valid)
	_, vr = codec.VerifyActivationToken(reset)
	assert.False(t, vr.Valid)
}

func TestPurposeTypeClaimCheckedBeyondAudience(t *testing.T) {
	// Hand-sign a token carrying the password_reset audience but the
	// activation type: signature and audience pass, the type check must
	// still refuse it.
	now := time.Now()
	claims := &PurposeClaims{
		UserID: 42,
		Type:   TypeActivation,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  []string{AudiencePasswordReset},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	codec := newTestCodec(t, Config{})
	_, vr := codec.VerifyPasswordResetToken(signed)
	assert.False(t, vr.Valid)
	assert.ErrorIs(t, vr.Err, xerrors.ErrTokenInvalid)
}

func TestAlgorithmConfusionRejected(t *testing.T) {
	// alg=none must never verify.
	claims := &AccessClaims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  []string{AudienceAPI},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	codec := newTestCodec(t, Config{})
	_, vr := codec.VerifyAccessToken(signed)
	assert.False(t, vr.Valid)
}

func TestDecodeUnsafeIgnoresSignature(t *testing.T) {
	other := newTestCodec(t, Config{
		AccessSecret:  "unrelated-secret",
		RefreshSecret: testRefreshSecret,
	})
	signed, err := other.IssueAccessToken(testPrincipal(), "sess-1")
	require.NoError(t, err)

	codec := newTestCodec(t, Config{})
	claims := codec.DecodeUnsafe(signed)
	require.NotNil(t, claims, "unsafe decode must not check the signature")
	assert.Equal(t, int64(42), claims.UserID)

	assert.Nil(t, codec.DecodeUnsafe("not a token"))
}

func TestRemainingSecondsAndExpiringSoon(t *testing.T) {
	codec := newTestCodec(t, Config{AccessTTL: time.Hour})
	signed, err := codec.IssueAccessToken(testPrincipal(), "sess-1")
	require.NoError(t, err)

	remaining := codec.RemainingSeconds(signed)
	assert.Greater(t, remaining, int64(3500))
	assert.LessOrEqual(t, remaining, int64(3600))

	assert.False(t, codec.IsExpiringSoon(signed, time.Minute))
	assert.True(t, codec.IsExpiringSoon(signed, 2*time.Hour))

	assert.Equal(t, int64(0), codec.RemainingSeconds("garbage"))
	assert.True(t, codec.IsExpiringSoon("garbage", time.Minute))
}

func TestHasRolePermission(t *testing.T) {
	codec := newTestCodec(t, Config{})
	signed, err := codec.IssueAccessToken(testPrincipal(), "sess-1")
	require.NoError(t, err)

	assert.True(t, codec.HasRolePermission(signed, "user"))
	assert.True(t, codec.HasRolePermission(signed, "manager"))
	assert.False(t, codec.HasRolePermission(signed, "admin"))
	assert.False(t, codec.HasRolePermission("garbage", "guest"))
}

func TestRoleHierarchy(t *testing.T) {
	ordered := []string{"guest", "user", "coordinator", "manager", "admin", "super_admin"}
	for i, role := range ordered {
		for j, required := range ordered {
			assert.Equal(t, i >= j, RoleAtLeast(role, required),
				"RoleAtLeast(%q, %q)", role, required)
		}
	}

	assert.False(t, RoleAtLeast("intern", "guest"), "unknown role fails closed")
	assert.False(t, RoleAtLeast("super_admin", "owner"), "unknown requirement fails closed")
	assert.Equal(t, 0, RoleRank("intern"))
}

func TestExtractFromAuthorizationHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractFromAuthorizationHeader("Bearer abc"))
	assert.Equal(t, "abc", ExtractFromAuthorizationHeader("bearer abc"))
	assert.Equal(t, "", ExtractFromAuthorizationHeader(""))
	assert.Equal(t, "", ExtractFromAuthorizationHeader("Basic abc"))
	assert.Equal(t, "", ExtractFromAuthorizationHeader("Bearer"))
	assert.Equal(t, "", ExtractFromAuthorizationHeader("Bearer a b"))
}

func TestExtractFromCookie(t *testing.T) {
	cookies := []*http.Cookie{
		{Name: "theme", Value: "dark"},
		{Name: "access_token", Value: "tok"},
	}
	assert.Equal(t, "tok", ExtractFromCookie(cookies, "access_token"))
	assert.Equal(t, "", ExtractFromCookie(cookies, "missing"))
	assert.Equal(t, "", ExtractFromCookie(nil, "access_token"))
}
