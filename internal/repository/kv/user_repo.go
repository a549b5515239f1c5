package kv

import (
	"context"

	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/model"
	"github.com/and161185/codenotes/internal/storage"
)

// UserRepo implements UserRepository over the "users" record set.
type UserRepo struct{ s storage.Store }

// NewUserRepo constructs a user repository.
func NewUserRepo(s storage.Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) all(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if _, err := getJSON(ctx, r.s, KeyUsers, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Create appends the account unless its email is already registered.
func (r *UserRepo) Create(ctx context.Context, a *model.Account) error {
	accounts, err := r.all(ctx)
	if err != nil {
		return err
	}
	for _, cur := range accounts {
		if cur.Email == a.Email {
			return errs.ErrDuplicateEmail
		}
	}
	return putJSON(ctx, r.s, KeyUsers, append(accounts, *a))
}

// GetByEmail finds an account by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	accounts, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Email == email {
			return &accounts[i], nil
		}
	}
	return nil, errs.ErrNotFound
}
