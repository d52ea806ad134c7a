// internal/repository/postgres/reset_token_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"authcore-service/internal/domain/identity"
	xerrors "authcore-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResetTokenRepository stores only the SHA-256 digest of each opaque
// reset secret. The plaintext exists once, in the issuance response path.
type ResetTokenRepository struct {
	db *pgxpool.Pool
}

func NewResetTokenRepository(db *pgxpool.Pool) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Create persists a hashed reset token.
func (r *ResetTokenRepository) Create(ctx context.Context, token *identity.ResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, token.TokenHash, token.UserID, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	return nil
}

// FindValidByHash returns the row matching hash that is unexpired and
// unused. Read-only; does not consume.
func (r *ResetTokenRepository) FindValidByHash(ctx context.Context, hash string) (*identity.ResetToken, error) {
	query := `
		SELECT id, token_hash, user_id, created_at, expires_at, used_at
		FROM password_reset_tokens
		WHERE token_hash = $1 AND expires_at > NOW() AND used_at IS NULL
	`

	var token identity.ResetToken
	err := r.db.QueryRow(ctx, query, hash).Scan(
		&token.ID, &token.TokenHash, &token.UserID,
		&token.CreatedAt, &token.ExpiresAt, &token.UsedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrInvalidResetToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reset token: %w", err)
	}

	return &token, nil
}

// Consume marks the token used and updates the owner's password hash in
// one transaction. The conditional UPDATE on used_at is the single-use
// guard: under concurrent redemptions exactly one caller gets the row back
// and every other one sees ErrInvalidResetToken.
func (r *ResetTokenRepository) Consume(ctx context.Context, hash, passwordHash string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID int64
	err = tx.QueryRow(ctx, `
		UPDATE password_reset_tokens
		SET used_at = NOW()
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > NOW()
		RETURNING user_id
	`, hash).Scan(&userID)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, xerrors.ErrInvalidResetToken
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume reset token: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`, passwordHash, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, xerrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit reset: %w", err)
	}

	return userID, nil
}
