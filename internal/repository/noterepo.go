package repository

import (
	"context"

	"github.com/and161185/codenotes/internal/model"
	"github.com/gofrs/uuid/v5"
)

// NoteRepository persists whole per-user note collections.
type NoteRepository interface {
	// ListByUser returns the user's collection in insertion order; empty when none is stored.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Note, error)
	// ReplaceAll overwrites the user's collection in one write.
	ReplaceAll(ctx context.Context, userID uuid.UUID, notes []model.Note) error
}
