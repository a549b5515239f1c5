// Package kv implements the repositories as JSON records in a storage.Store.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/storage"
)

// Storage keys of the persisted layout.
const (
	KeyUsers      = "users"
	KeySession    = "user"
	KeySessionKey = "session-key"
	notesPrefix   = "notes-"
)

// NotesKey is the key of one user's note collection.
func NotesKey(userID uuid.UUID) string { return notesPrefix + userID.String() }

// getJSON decodes key into v. found is false when the key is absent.
func getJSON(ctx context.Context, s storage.Store, key string, v any) (found bool, err error) {
	b, err := s.Get(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func putJSON(ctx context.Context, s storage.Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, b); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
