// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/codenotes/internal/model"
)

// UserRepository provides access to stored accounts. Accounts are never updated or deleted.
type UserRepository interface {
	// Create inserts a new account; errs.ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, a *model.Account) error
	// GetByEmail loads an account by exact email.
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
}
