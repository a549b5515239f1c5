package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/model"
	"github.com/and161185/codenotes/internal/notify"
	"github.com/and161185/codenotes/internal/repository"
)

// NoteStore holds the active user's notes in memory and persists every mutation.
type NoteStore interface {
	// Load replaces the collection with the persisted notes of userID.
	Load(ctx context.Context, userID uuid.UUID) error
	// Reset empties the collection and forgets the loaded user.
	Reset()
	// Add creates a note owned by userID, which must be the loaded user.
	Add(ctx context.Context, userID uuid.UUID, f model.NoteFields) (model.Note, error)
	// Update merges the non-nil patch fields into the note.
	Update(ctx context.Context, id uuid.UUID, p model.NotePatch) error
	// Delete removes the note.
	Delete(ctx context.Context, id uuid.UUID) error
	// Get finds a note by ID.
	Get(id uuid.UUID) (model.Note, bool)
	// Search matches query case-insensitively against title, description and tags.
	Search(query string) []model.Note
	// FilterByLanguage keeps notes whose language equals lang exactly.
	FilterByLanguage(lang string) []model.Note
	// Query applies Search and then FilterByLanguage.
	Query(search, lang string) []model.Note
	// Languages lists distinct non-empty languages in first-seen order.
	Languages() []string
	// Notes returns the whole collection in insertion order.
	Notes() []model.Note
}

type NoteStoreImpl struct {
	repo repository.NoteRepository
	bus  *notify.Bus
	log  *zap.Logger
	now  func() time.Time

	mu     sync.RWMutex
	userID uuid.UUID
	notes  []model.Note
}

// NewNoteStore constructs an empty NoteStore. bus may be nil.
func NewNoteStore(repo repository.NoteRepository, bus *notify.Bus, log *zap.Logger) *NoteStoreImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoteStoreImpl{repo: repo, bus: bus, log: log, now: time.Now, notes: []model.Note{}}
}

// Load swaps in userID's collection. On error the current collection is kept.
func (s *NoteStoreImpl) Load(ctx context.Context, userID uuid.UUID) error {
	notes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.notes = notes
	s.log.Debug("notes loaded", zap.Stringer("user_id", userID), zap.Int("count", len(notes)))
	return nil
}

// Reset drops the in-memory collection.
func (s *NoteStoreImpl) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = uuid.Nil
	s.notes = []model.Note{}
}

// Add validates f, then appends and persists a new note.
func (s *NoteStoreImpl) Add(ctx context.Context, userID uuid.UUID, f model.NoteFields) (model.Note, error) {
	if strings.TrimSpace(f.Title) == "" {
		s.bus.Fail("Title required", "Please provide a title for your note")
		return model.Note{}, fmt.Errorf("add note: title is required: %w", errs.ErrValidation)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == uuid.Nil || userID != s.userID {
		s.bus.Fail("Not signed in", "Please log in first")
		return model.Note{}, fmt.Errorf("add note: %w", errs.ErrUnauthenticated)
	}
	s.checkLanguage(f.Language)
	now := s.now().UTC()
	n := model.Note{
		ID:          id,
		UserID:      userID,
		Title:       f.Title,
		Description: f.Description,
		Code:        f.Code,
		Language:    f.Language,
		Tags:        f.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}.Clone()

	next := append(slices.Clone(s.notes), n)
	if err := s.persistLocked(ctx, next); err != nil {
		return model.Note{}, err
	}
	s.bus.Info("Note created", "Your note has been saved")
	return n.Clone(), nil
}

// Update applies p and refreshes UpdatedAt. UpdatedAt never moves backwards.
func (s *NoteStoreImpl) Update(ctx context.Context, id uuid.UUID, p model.NotePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("update note %s: %w", id, errs.ErrNotFound)
	}
	n := s.notes[i].Clone()
	p.Apply(&n)
	if strings.TrimSpace(n.Title) == "" {
		s.bus.Fail("Title required", "Please provide a title for your note")
		return fmt.Errorf("update note: title is required: %w", errs.ErrValidation)
	}
	if p.Language != nil {
		s.checkLanguage(n.Language)
	}
	now := s.now().UTC()
	if now.Before(n.UpdatedAt) {
		now = n.UpdatedAt
	}
	n.UpdatedAt = now

	next := slices.Clone(s.notes)
	next[i] = n
	if err := s.persistLocked(ctx, next); err != nil {
		return err
	}
	s.bus.Info("Note updated", "Your changes have been saved")
	return nil
}

// Delete removes the note with id.
func (s *NoteStoreImpl) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("delete note %s: %w", id, errs.ErrNotFound)
	}
	next := slices.Delete(slices.Clone(s.notes), i, i+1)
	if err := s.persistLocked(ctx, next); err != nil {
		return err
	}
	s.bus.Info("Note deleted", "Your note has been removed")
	return nil
}

// persistLocked writes next and only then makes it the live collection.
func (s *NoteStoreImpl) persistLocked(ctx context.Context, next []model.Note) error {
	if err := s.repo.ReplaceAll(ctx, s.userID, next); err != nil {
		s.log.Warn("persist notes", zap.Stringer("user_id", s.userID), zap.Error(err))
		return fmt.Errorf("persist notes: %w", err)
	}
	s.notes = next
	return nil
}

// checkLanguage accepts any label; unusual ones are only logged.
func (s *NoteStoreImpl) checkLanguage(lang string) {
	if lang != "" && !model.IsSuggestedLanguage(lang) {
		s.log.Debug("language not in suggested list", zap.String("language", lang))
	}
}

func (s *NoteStoreImpl) indexLocked(id uuid.UUID) int {
	return slices.IndexFunc(s.notes, func(n model.Note) bool { return n.ID == id })
}

// Get returns a copy of the note.
func (s *NoteStoreImpl) Get(id uuid.UUID) (model.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.notes[i].Clone(), true
	}
	return model.Note{}, false
}

// Search returns every note for a blank query.
func (s *NoteStoreImpl) Search(query string) []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return search(s.notes, query)
}

// FilterByLanguage returns every note for "" and model.AllLanguages.
func (s *NoteStoreImpl) FilterByLanguage(lang string) []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByLanguage(s.notes, lang)
}

// Query is the dashboard listing.
func (s *NoteStoreImpl) Query(query, lang string) []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByLanguage(search(s.notes, query), lang)
}

// Languages lists the languages in use.
func (s *NoteStoreImpl) Languages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []string{}
	for _, n := range s.notes {
		if n.Language != "" && !slices.Contains(out, n.Language) {
			out = append(out, n.Language)
		}
	}
	return out
}

// Notes returns copies of all notes.
func (s *NoteStoreImpl) Notes() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.notes, func(model.Note) bool { return true })
}

func search(notes []model.Note, query string) []model.Note {
	if strings.TrimSpace(query) == "" {
		return cloneAll(notes, func(model.Note) bool { return true })
	}
	q := strings.ToLower(query)
	return cloneAll(notes, func(n model.Note) bool {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Description), q) {
			return true
		}
		return slices.ContainsFunc(n.Tags, func(t string) bool {
			return strings.Contains(strings.ToLower(t), q)
		})
	})
}

func filterByLanguage(notes []model.Note, lang string) []model.Note {
	if lang == "" || lang == model.AllLanguages {
		return cloneAll(notes, func(model.Note) bool { return true })
	}
	return cloneAll(notes, func(n model.Note) bool { return n.Language == lang })
}

func cloneAll(notes []model.Note, keep func(model.Note) bool) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if keep(n) {
			out = append(out, n.Clone())
		}
	}
	return out
}
