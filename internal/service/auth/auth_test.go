// internal/service/auth/auth_test.go
package auth

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"authcore-service/internal/audit"
	"authcore-service/internal/domain/identity"
	xerrors "authcore-service/internal/pkg/errors"
	"authcore-service/internal/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ----- fakes -----

type fakeUserStore struct {
	byEmail map[string]*identity.User
	byID    map[int64]*identity.User
}

func newFakeUserStore(users ...*identity.User) *fakeUserStore {
	s := &fakeUserStore{byEmail: map[string]*identity.User{}, byID: map[int64]*identity.User{}}
	for _, u := range users {
		s.byEmail[u.Email] = u
		s.byID[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, xerrors.ErrNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id int64) (*identity.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, xerrors.ErrNotFound
}

type fakeSessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*identity.Session
}

func newFakeSessionRegistry() *fakeSessionRegistry {
	return &fakeSessionRegistry{sessions: map[string]*identity.Session{}}
}

func (s *fakeSessionRegistry) Create(_ context.Context, sess *identity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.IsActive = true
	sess.CreatedAt = time.Now()
	sess.LastActivity = sess.CreatedAt
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *fakeSessionRegistry) FindByID(_ context.Context, id string) (*identity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *fakeSessionRegistry) ListActive(_ context.Context, userID int64) ([]*identity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*identity.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.IsActive {
			cp := *sess
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeSessionRegistry) IsActive(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return ok && sess.IsActive, nil
}

func (s *fakeSessionRegistry) Touch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.LastActivity = time.Now()
	}
	return nil
}

func (s *fakeSessionRegistry) BindRefreshToken(_ context.Context, id, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	sess.RefreshJTI = sql.NullString{String: jti, Valid: true}
	return nil
}

func (s *fakeSessionRegistry) Terminate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.IsActive = false
	}
	return nil
}

func (s *fakeSessionRegistry) TerminateAll(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.IsActive {
			sess.IsActive = false
			n++
		}
	}
	return n, nil
}

func (s *fakeSessionRegistry) CountActive(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, sess := range s.sessions {
		if sess.IsActive {
			n++
		}
	}
	return n, nil
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Compare(plain, digest string) bool { return "hashed:"+plain == digest }

// ----- fixtures -----

type fixture struct {
	svc      *Service
	users    *fakeUserStore
	sessions *fakeSessionRegistry
	codec    *token.Codec
}

func activeUser() *identity.User {
	return &identity.User{
		ID:           1,
		Email:        "alice@example.com",
		PasswordHash: "hashed:Str0ng!pass",
		Role:         "user",
		TenantID:     3,
		Status:       "active",
	}
}

func adminUser() *identity.User {
	return &identity.User{
		ID:           2,
		Email:        "root@example.com",
		PasswordHash: "hashed:Adm1n!pass",
		Role:         "admin",
		TenantID:     3,
		Status:       "active",
	}
}

func newFixture(t *testing.T, users ...*identity.User) *fixture {
	t.Helper()
	codec, err := token.NewCodec(token.Config{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
	})
	require.NoError(t, err)

	f := &fixture{
		users:    newFakeUserStore(users...),
		sessions: newFakeSessionRegistry(),
		codec:    codec,
	}
	f.svc = NewService(f.users, f.sessions, plainHasher{}, codec, audit.NopRecorder{}, zap.NewNop())
	return f
}

func login(t *testing.T, f *fixture, email, pass string) *identity.LoginResponse {
	t.Helper()
	resp, err := f.svc.Login(context.Background(), identity.LoginRequest{
		Email: email, Password: pass, IPAddress: "1.2.3.4", UserAgent: "test-agent",
	})
	require.NoError(t, err)
	return resp
}

// ----- tests -----

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t, activeUser())

	resp := login(t, f, "alice@example.com", "Str0ng!pass")

	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.ExpiresAt)
	assert.Equal(t, int64(1), resp.User.ID)
	assert.Equal(t, "user", resp.User.Role)
	assert.Equal(t, int64(3), resp.User.TenantID)
	require.NotEmpty(t, resp.User.SessionID)

	// The session row exists, is active and carries the refresh binding.
	sess, err := f.sessions.FindByID(context.Background(), resp.User.SessionID)
	require.NoError(t, err)
	assert.True(t, sess.IsActive)
	assert.True(t, sess.RefreshJTI.Valid)
	assert.Equal(t, "1.2.3.4", sess.IPAddress.String)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	f := newFixture(t, activeUser())
	ctx := context.Background()

	_, err1 := f.svc.Login(ctx, identity.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	_, err2 := f.svc.Login(ctx, identity.LoginRequest{Email: "nobody@example.com", Password: "wrong"})

	assert.ErrorIs(t, err1, xerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, err2, xerrors.ErrInvalidCredentials)
	assert.Equal(t, err1.Error(), err2.Error(), "both failures must be indistinguishable")
}

func TestLoginInactiveAccount(t *testing.T) {
	u := activeUser()
	u.Status = "suspended"
	f := newFixture(t, u)

	_, err := f.svc.Login(context.Background(), identity.LoginRequest{
		Email: u.Email, Password: "Str0ng!pass",
	})
	assert.ErrorIs(t, err, xerrors.ErrAccountInactive)
}

func TestValidateHonorsRevocation(t *testing.T) {
	f := newFixture(t, activeUser())
	ctx := context.Background()
	resp := login(t, f, "alice@example.com", "Str0ng!pass")

	p, err := f.svc.Validate(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, resp.User.SessionID, p.SessionID)

	// Revoke the session; the still-unexpired token must stop working.
	require.NoError(t, f.svc.Logout(ctx, p))
	_, err = f.svc.Validate(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, xerrors.ErrSessionInactive)
}

func TestValidateRejectsBadToken(t *testing.T) {
	f := newFixture(t, activeUser())
	_, err := f.svc.Validate(context.Background(), "garbage")
	assert.ErrorIs(t, err, xerrors.ErrTokenInvalid)
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	f := newFixture(t, activeUser())
	ctx := context.Background()
	resp := login(t, f, "alice@example.com", "Str0ng!pass")

	rotated, err := f.svc.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, resp.User.SessionID, rotated.User.SessionID, "refresh keeps the session")

	// The superseded token no longer matches the session binding.
	_, err = f.svc.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, xerrors.ErrTokenInvalid)

	// The current one still works.
	_, err = f.svc.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshOfRevokedSessionFails(t *testing.T) {
	f := newFixture(t, activeUser())
	ctx := context.Background()
	resp := login(t, f, "alice@example.com", "Str0ng!pass")

	require.NoError(t, f.sessions.Terminate(ctx, resp.User.SessionID))

	_, err := f.svc.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, xerrors.ErrSessionInactive)
}

func TestRefreshOfDeactivatedAccountFails(t *testing.T) {
	u := activeUser()
	f := newFixture(t, u)
	resp := login(t, f, "alice@example.com", "Str0ng!pass")

	u.Status = "suspended"

	_, err := f.svc.Refresh(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, xerrors.ErrAccountInactive)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newFixture(t, activeUser())
	ctx := context.Background()
	resp := login(t, f, "alice@example.com", "Str0ng!pass")

	require.NoError(t, f.svc.Logout(ctx, resp.User))
	assert.NoError(t, f.svc.Logout(ctx, resp.User), "second logout is a no-op success")
}

func TestLogoutAllEndsEveryDevice(t *testing.T) {
	f := newFixture(t, activeUser())
	ctx := context.Background()

	first := login(t, f, "alice@example.com", "Str0ng!pass")
	second := login(t, f, "alice@example.com", "Str0ng!pass")
	require.NotEqual(t, first.User.SessionID, second.User.SessionID)

	n, err := f.svc.LogoutAll(ctx, second.User)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Both refresh tokens are now dead.
	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, xerrors.ErrSessionInactive)
	_, err = f.svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, xerrors.ErrSessionInactive)
}

func TestListSessionsFlagsCurrent(t *testing.T) {
	f := newFixture(t, activeUser())
	ctx := context.Background()

	first := login(t, f, "alice@example.com", "Str0ng!pass")
	second := login(t, f, "alice@example.com", "Str0ng!pass")

	infos, err := f.svc.ListSessions(ctx, second.User)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	current := map[string]bool{}
	for _, info := range infos {
		current[info.ID] = info.Current
	}
	assert.False(t, current[first.User.SessionID])
	assert.True(t, current[second.User.SessionID])
}

func TestTerminateSessionOwnership(t *testing.T) {
	f := newFixture(t, activeUser(), adminUser())
	ctx := context.Background()

	alice := login(t, f, "alice@example.com", "Str0ng!pass")
	admin := login(t, f, "root@example.com", "Adm1n!pass")

	// A plain user cannot terminate someone else's session, and cannot
	// tell whether the target even exists.
	err := f.svc.TerminateSession(ctx, alice.User, admin.User.SessionID)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
	err = f.svc.TerminateSession(ctx, alice.User, "no-such-session")
	assert.ErrorIs(t, err, xerrors.ErrForbidden)

	// The owner can terminate their own.
	require.NoError(t, f.svc.TerminateSession(ctx, alice.User, alice.User.SessionID))

	// An admin can terminate anyone's.
	bob := login(t, f, "alice@example.com", "Str0ng!pass")
	require.NoError(t, f.svc.TerminateSession(ctx, admin.User, bob.User.SessionID))
	active, err := f.sessions.IsActive(ctx, bob.User.SessionID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestSessionStats(t *testing.T) {
	f := newFixture(t, activeUser(), adminUser())
	ctx := context.Background()

	login(t, f, "alice@example.com", "Str0ng!pass")
	login(t, f, "root@example.com", "Adm1n!pass")

	stats, err := f.svc.SessionStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ActiveSessions)
}
