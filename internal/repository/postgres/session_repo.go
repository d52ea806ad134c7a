// internal/repository/postgres/session_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authcore-service/internal/domain/identity"
	xerrors "authcore-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository is the durable session registry. Sessions are flipped
// inactive on logout/revocation and retained for audit, never deleted.
type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts an active session row.
func (r *SessionRepository) Create(ctx context.Context, session *identity.Session) error {
	query := `
		INSERT INTO auth_sessions (id, user_id, ip_address, user_agent, refresh_jti, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING created_at, last_activity
	`

	err := r.db.QueryRow(
		ctx, query,
		session.ID, session.UserID, session.IPAddress, session.UserAgent, session.RefreshJTI,
	).Scan(&session.CreatedAt, &session.LastActivity)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	session.IsActive = true
	return nil
}

// FindByID retrieves a session regardless of its active flag.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*identity.Session, error) {
	query := `
		SELECT id, user_id, ip_address, user_agent, refresh_jti, is_active,
		       created_at, last_activity
		FROM auth_sessions
		WHERE id = $1
	`

	var session identity.Session
	err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID, &session.UserID, &session.IPAddress, &session.UserAgent,
		&session.RefreshJTI, &session.IsActive, &session.CreatedAt, &session.LastActivity,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &session, nil
}

// ListActive returns a user's active sessions, most recent activity first.
func (r *SessionRepository) ListActive(ctx context.Context, userID int64) ([]*identity.Session, error) {
	query := `
		SELECT id, user_id, ip_address, user_agent, refresh_jti, is_active,
		       created_at, last_activity
		FROM auth_sessions
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY last_activity DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*identity.Session
	for rows.Next() {
		var session identity.Session
		if err := rows.Scan(
			&session.ID, &session.UserID, &session.IPAddress, &session.UserAgent,
			&session.RefreshJTI, &session.IsActive, &session.CreatedAt, &session.LastActivity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}

// IsActive reports whether the session row is still active.
func (r *SessionRepository) IsActive(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM auth_sessions WHERE id = $1 AND is_active = TRUE)`
	var active bool
	err := r.db.QueryRow(ctx, query, id).Scan(&active)
	return active, err
}

// Touch updates the last activity timestamp.
func (r *SessionRepository) Touch(ctx context.Context, id string) error {
	query := `UPDATE auth_sessions SET last_activity = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, time.Now(), id)
	return err
}

// BindRefreshToken records the jti of the session's current refresh token.
// Redeeming a refresh token whose jti no longer matches is treated as
// replay of a rotated-out credential.
func (r *SessionRepository) BindRefreshToken(ctx context.Context, id, jti string) error {
	query := `UPDATE auth_sessions SET refresh_jti = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, jti, id)
	if err != nil {
		return fmt.Errorf("failed to bind refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// Terminate deactivates a session. Terminating an already-inactive session
// is a no-op success.
func (r *SessionRepository) Terminate(ctx context.Context, id string) error {
	query := `
		UPDATE auth_sessions
		SET is_active = FALSE, last_activity = $1
		WHERE id = $2 AND is_active = TRUE
	`
	_, err := r.db.Exec(ctx, query, time.Now(), id)
	return err
}

// TerminateAll deactivates every active session of a user and returns how
// many actually transitioned.
func (r *SessionRepository) TerminateAll(ctx context.Context, userID int64) (int64, error) {
	query := `
		UPDATE auth_sessions
		SET is_active = FALSE, last_activity = $1
		WHERE user_id = $2 AND is_active = TRUE
	`
	tag, err := r.db.Exec(ctx, query, time.Now(), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to terminate sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountActive reports the number of active sessions across all users.
func (r *SessionRepository) CountActive(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM auth_sessions WHERE is_active = TRUE`
	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	return count, err
}
