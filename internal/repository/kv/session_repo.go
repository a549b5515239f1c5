package kv

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/and161185/codenotes/internal/crypto"
	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/storage"
)

const signingKeyLen = 32

// SessionRepo implements SessionRepository over the "user" scalar.
type SessionRepo struct{ s storage.Store }

// NewSessionRepo constructs a session repository.
func NewSessionRepo(s storage.Store) *SessionRepo { return &SessionRepo{s: s} }

// Get returns the stored token.
func (r *SessionRepo) Get(ctx context.Context) (string, error) {
	b, err := r.s.Get(ctx, KeySession)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", errs.ErrNotFound
	}
	return string(b), nil
}

// Put stores the token.
func (r *SessionRepo) Put(ctx context.Context, token string) error {
	return r.s.Set(ctx, KeySession, []byte(token))
}

// Clear removes the token.
func (r *SessionRepo) Clear(ctx context.Context) error {
	return r.s.Remove(ctx, KeySession)
}

// SigningKey loads the hex-encoded key or creates it.
func (r *SessionRepo) SigningKey(ctx context.Context) ([]byte, error) {
	b, err := r.s.Get(ctx, KeySessionKey)
	switch {
	case err == nil:
		key, derr := hex.DecodeString(string(b))
		if derr != nil || len(key) != signingKeyLen {
			return nil, fmt.Errorf("stored %s is corrupt", KeySessionKey)
		}
		return key, nil
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	key, err := crypto.RandBytes(signingKeyLen)
	if err != nil {
		return nil, err
	}
	if err := r.s.Set(ctx, KeySessionKey, []byte(hex.EncodeToString(key))); err != nil {
		return nil, err
	}
	return key, nil
}
