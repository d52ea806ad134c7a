// internal/service/auth/auth.go
package auth

import (
	"context"
	"fmt"

	"authcore-service/internal/audit"
	"authcore-service/internal/domain/identity"
	xerrors "authcore-service/internal/pkg/errors"
	"authcore-service/internal/pkg/token"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Service orchestrates credential authentication, token refresh and the
// session surface. It owns no policy of its own beyond sequencing; the
// codec, registry and limiter each enforce their piece.
type Service struct {
	users    identity.UserStore
	sessions identity.SessionRegistry
	hasher   identity.PasswordHasher
	codec    *token.Codec
	audit    audit.Recorder
	logger   *zap.Logger
}

func NewService(
	users identity.UserStore,
	sessions identity.SessionRegistry,
	hasher identity.PasswordHasher,
	codec *token.Codec,
	recorder audit.Recorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		codec:    codec,
		audit:    recorder,
		logger:   logger,
	}
}

// Stats is the operator view of the session registry.
type Stats struct {
	ActiveSessions int64 `json:"active_sessions"`
}

// Login authenticates credentials, registers a session and mints a token
// pair. A wrong password and an unknown email produce the same error so
// the endpoint leaks nothing about which half was wrong.
func (s *Service) Login(ctx context.Context, req identity.LoginRequest) (*identity.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			s.recordLogin(ctx, 0, req, false, "unknown account")
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Compare(req.Password, user.PasswordHash) {
		s.recordLogin(ctx, user.ID, req, false, "bad password")
		return nil, xerrors.ErrInvalidCredentials
	}

	if !user.IsActive() {
		s.recordLogin(ctx, user.ID, req, false, "inactive account")
		return nil, xerrors.ErrAccountInactive
	}

	session := &identity.Session{
		ID:     ulid.Make().String(),
		UserID: user.ID,
	}
	session.IPAddress.String, session.IPAddress.Valid = req.IPAddress, req.IPAddress != ""
	session.UserAgent.String, session.UserAgent.Valid = req.UserAgent, req.UserAgent != ""

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	principal := user.Principal()
	principal.SessionID = session.ID

	pair, err := s.codec.IssuePair(principal, session.ID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.BindRefreshToken(ctx, session.ID, pair.RefreshJTI); err != nil {
		return nil, err
	}

	s.recordLogin(ctx, user.ID, req, true, "")

	return &identity.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    pair.ExpiresAt,
		User:         principal,
	}, nil
}

// Refresh exchanges a refresh token for a fresh pair, rotating the refresh
// credential. The presented token must be the session's current one; a
// superseded jti means the token was replayed after rotation and the
// exchange is refused.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*identity.LoginResponse, error) {
	claims, vr := s.codec.VerifyRefreshToken(refreshToken)
	if !vr.Valid {
		return nil, vr.Err
	}

	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrSessionInactive
		}
		return nil, err
	}
	if !session.IsActive {
		return nil, xerrors.ErrSessionInactive
	}

	if !session.RefreshJTI.Valid || session.RefreshJTI.String != claims.ID {
		s.audit.Record(ctx, audit.Event{
			Action: "token_refresh", UserID: claims.UserID,
			Success: false, Detail: "rotated token replayed",
		})
		return nil, fmt.Errorf("%w: refresh token superseded", xerrors.ErrTokenInvalid)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, xerrors.ErrAccountInactive
	}

	principal := user.Principal()
	principal.SessionID = session.ID

	pair, err := s.codec.IssuePair(principal, session.ID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.BindRefreshToken(ctx, session.ID, pair.RefreshJTI); err != nil {
		return nil, err
	}
	if err := s.sessions.Touch(ctx, session.ID); err != nil {
		s.logger.Warn("session touch failed", zap.String("session_id", session.ID), zap.Error(err))
	}

	s.audit.Record(ctx, audit.Event{
		Action: "token_refresh", UserID: user.ID, Email: user.Email, Success: true,
	})

	return &identity.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    pair.ExpiresAt,
		User:         principal,
	}, nil
}

// Validate verifies an access token and then checks its session against
// the registry. A cryptographically valid token whose session was revoked
// fails with ErrSessionInactive; revocation always wins.
func (s *Service) Validate(ctx context.Context, accessToken string) (identity.Principal, error) {
	claims, vr := s.codec.VerifyAccessToken(accessToken)
	if !vr.Valid {
		return identity.Principal{}, vr.Err
	}

	active, err := s.sessions.IsActive(ctx, claims.SessionID)
	if err != nil {
		return identity.Principal{}, err
	}
	if !active {
		return identity.Principal{}, xerrors.ErrSessionInactive
	}

	if err := s.sessions.Touch(ctx, claims.SessionID); err != nil {
		s.logger.Warn("session touch failed", zap.String("session_id", claims.SessionID), zap.Error(err))
	}

	return identity.Principal{
		ID:        claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		TenantID:  claims.TenantID,
		SessionID: claims.SessionID,
	}, nil
}

// Logout revokes the caller's own session. Idempotent: logging out an
// already-revoked session succeeds.
func (s *Service) Logout(ctx context.Context, p identity.Principal) error {
	if err := s.sessions.Terminate(ctx, p.SessionID); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.Event{
		Action: "logout", UserID: p.ID, Email: p.Email, Success: true,
	})
	return nil
}

// LogoutAll revokes every active session of the caller and reports how
// many were live.
func (s *Service) LogoutAll(ctx context.Context, p identity.Principal) (int64, error) {
	n, err := s.sessions.TerminateAll(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	s.audit.Record(ctx, audit.Event{
		Action: "logout_all", UserID: p.ID, Email: p.Email, Success: true,
		Detail: fmt.Sprintf("terminated %d sessions", n),
	})
	return n, nil
}

// ListSessions returns the caller's active sessions with the current one
// flagged.
func (s *Service) ListSessions(ctx context.Context, p identity.Principal) ([]identity.SessionInfo, error) {
	sessions, err := s.sessions.ListActive(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	infos := make([]identity.SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, identity.SessionInfoFromEntity(sess, p.SessionID))
	}
	return infos, nil
}

// TerminateSession revokes a specific session. Allowed for the session's
// owner or for admin-and-above; anyone else gets ErrForbidden without
// learning whether the session exists.
func (s *Service) TerminateSession(ctx context.Context, p identity.Principal, sessionID string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) && !token.RoleAtLeast(p.Role, "admin") {
			return xerrors.ErrForbidden
		}
		return err
	}

	if session.UserID != p.ID && !token.RoleAtLeast(p.Role, "admin") {
		return xerrors.ErrForbidden
	}

	if err := s.sessions.Terminate(ctx, sessionID); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{
		Action: "session_terminate", UserID: p.ID, Email: p.Email, Success: true,
		Detail: fmt.Sprintf("session %s (owner %d)", sessionID, session.UserID),
	})
	return nil
}

// SessionStats reports registry-wide counters for the admin surface.
func (s *Service) SessionStats(ctx context.Context) (*Stats, error) {
	n, err := s.sessions.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{ActiveSessions: n}, nil
}

func (s *Service) recordLogin(ctx context.Context, userID int64, req identity.LoginRequest, ok bool, detail string) {
	s.audit.Record(ctx, audit.Event{
		Action:    "login",
		UserID:    userID,
		Email:     req.Email,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Success:   ok,
		Detail:    detail,
	})
}
