package repository

import "context"

// SessionRepository persists the signed identity of the signed-in user.
type SessionRepository interface {
	// Get returns the stored session token or errs.ErrNotFound.
	Get(ctx context.Context) (string, error)
	// Put stores the session token.
	Put(ctx context.Context, token string) error
	// Clear removes the stored token.
	Clear(ctx context.Context) error
	// SigningKey returns the local token signing key, generating and storing one on first use.
	SigningKey(ctx context.Context) ([]byte, error)
}
