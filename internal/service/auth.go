// Package service contains the credential, session and note services.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/codenotes/internal/crypto"
	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/model"
	"github.com/and161185/codenotes/internal/repository"
)

// CredentialStore defines registration and credential checks.
type CredentialStore interface {
	// Register creates an account with a hashed secret and returns its public identity.
	Register(ctx context.Context, name, email, secret string) (model.User, error)
	// Authenticate checks email and secret against stored accounts.
	Authenticate(ctx context.Context, email, secret string) (model.User, error)
}

type CredentialStoreImpl struct {
	users  repository.UserRepository
	hasher *crypto.Hasher
	log    *zap.Logger
}

// NewCredentialStore constructs CredentialStore. A nil hasher uses crypto.DefaultParams.
func NewCredentialStore(users repository.UserRepository, hasher *crypto.Hasher, log *zap.Logger) *CredentialStoreImpl {
	if hasher == nil {
		hasher = crypto.NewHasher(crypto.DefaultParams)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CredentialStoreImpl{users: users, hasher: hasher, log: log}
}

// Register validates presence of all fields, then inserts the account.
func (s *CredentialStoreImpl) Register(ctx context.Context, name, email, secret string) (model.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(secret) == "" {
		return model.User{}, fmt.Errorf("register: name, email and password are required: %w", errs.ErrValidation)
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, err
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return model.User{}, fmt.Errorf("hash secret: %w", err)
	}
	a := &model.Account{
		ID:        uid,
		Name:      name,
		Email:     email,
		Secret:    hash,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, a); err != nil {
		return model.User{}, err
	}
	s.log.Debug("account registered", zap.Stringer("user_id", uid))
	return a.Public(), nil
}

// Authenticate returns errs.ErrInvalidCredentials for an unknown email or a wrong secret.
func (s *CredentialStoreImpl) Authenticate(ctx context.Context, email, secret string) (model.User, error) {
	a, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		return model.User{}, errs.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	ok, err := s.hasher.Verify(secret, a.Secret)
	if err != nil {
		s.log.Warn("stored secret unreadable", zap.Stringer("user_id", a.ID), zap.Error(err))
		return model.User{}, fmt.Errorf("verify secret: %w", err)
	}
	if !ok {
		return model.User{}, errs.ErrInvalidCredentials
	}
	return a.Public(), nil
}
