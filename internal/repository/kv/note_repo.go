package kv

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/codenotes/internal/model"
	"github.com/and161185/codenotes/internal/storage"
)

// NoteRepo implements NoteRepository with one record set per user.
type NoteRepo struct{ s storage.Store }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(s storage.Store) *NoteRepo { return &NoteRepo{s: s} }

// ListByUser loads the user's collection. Records owned by anyone else are dropped.
func (r *NoteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Note, error) {
	var stored []model.Note
	if _, err := getJSON(ctx, r.s, NotesKey(userID), &stored); err != nil {
		return nil, err
	}
	out := make([]model.Note, 0, len(stored))
	for _, n := range stored {
		if n.UserID != userID {
			continue
		}
		out = append(out, n.Clone())
	}
	return out, nil
}

// ReplaceAll writes the whole collection.
func (r *NoteRepo) ReplaceAll(ctx context.Context, userID uuid.UUID, notes []model.Note) error {
	if notes == nil {
		notes = []model.Note{}
	}
	return putJSON(ctx, r.s, NotesKey(userID), notes)
}
