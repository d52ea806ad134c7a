// internal/domain/identity/repository.go
package identity

import "context"

// UserStore is the external account collaborator. Validation, plan limits
// and the rest of the user lifecycle live outside the auth core.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}

// SessionRegistry is the durable source of truth for revocation. A refresh
// token is only as valid as the session row it points at.
type SessionRegistry interface {
	Create(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	ListActive(ctx context.Context, userID int64) ([]*Session, error)
	IsActive(ctx context.Context, id string) (bool, error)
	Touch(ctx context.Context, id string) error
	BindRefreshToken(ctx context.Context, id, jti string) error
	Terminate(ctx context.Context, id string) error
	TerminateAll(ctx context.Context, userID int64) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

// ResetTokenStore persists hashed opaque reset secrets. Consume performs
// the single-use transition and the password update in one transaction and
// returns the owning user id; at most one concurrent caller can succeed.
type ResetTokenStore interface {
	Create(ctx context.Context, t *ResetToken) error
	FindValidByHash(ctx context.Context, hash string) (*ResetToken, error)
	Consume(ctx context.Context, hash, passwordHash string) (int64, error)
}

// PasswordHasher abstracts the adaptive hash so tests can swap in a cheap
// implementation.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, digest string) bool
}
