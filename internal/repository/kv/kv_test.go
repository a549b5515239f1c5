package kv

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/model"
	"github.com/and161185/codenotes/internal/repository"
	"github.com/and161185/codenotes/internal/storage/memory"
)

var (
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.NoteRepository    = (*NoteRepo)(nil)
	_ repository.SessionRepository = (*SessionRepo)(nil)
)

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("get-fail") }
func (brokenStore) Set(context.Context, string, []byte) error   { return errors.New("set-fail") }
func (brokenStore) Remove(context.Context, string) error        { return errors.New("rm-fail") }
func (brokenStore) Close() error                                { return nil }

func account(email string) *model.Account {
	return &model.Account{
		ID:        uuid.Must(uuid.NewV4()),
		Name:      "n",
		Email:     email,
		Secret:    "$argon2id$...",
		CreatedAt: time.Now().UTC(),
	}
}

func TestUserRepo_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(memory.New())

	_, err := r.GetByEmail(ctx, "a@x")
	require.ErrorIs(t, err, errs.ErrNotFound)

	a := account("a@x")
	require.NoError(t, r.Create(ctx, a))
	require.NoError(t, r.Create(ctx, account("b@x")))

	got, err := r.GetByEmail(ctx, "a@x")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, a.Secret, got.Secret)

	// exact match only
	_, err = r.GetByEmail(ctx, "A@x")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	r := NewUserRepo(s)

	require.NoError(t, r.Create(ctx, account("a@x")))
	err := r.Create(ctx, account("a@x"))
	require.ErrorIs(t, err, errs.ErrDuplicateEmail)

	var stored []model.Account
	found, err := getJSON(ctx, s, KeyUsers, &stored)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, stored, 1)
}

func TestUserRepo_StorageErrors(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(brokenStore{})
	require.Error(t, r.Create(ctx, account("a@x")))
	_, err := r.GetByEmail(ctx, "a@x")
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_CorruptRecordSet(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Set(ctx, KeyUsers, []byte("{not json")))

	_, err := NewUserRepo(s).GetByEmail(ctx, "a@x")
	require.Error(t, err)
}

func TestNoteRepo_PartitionedPerUser(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	r := NewNoteRepo(s)
	a, b := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	empty, err := r.ListByUser(ctx, a)
	require.NoError(t, err)
	require.Empty(t, empty)

	n1 := model.Note{ID: uuid.Must(uuid.NewV4()), UserID: a, Title: "one", Tags: []string{"x"}}
	n2 := model.Note{ID: uuid.Must(uuid.NewV4()), UserID: a, Title: "two"}
	require.NoError(t, r.ReplaceAll(ctx, a, []model.Note{n1, n2}))

	got, err := r.ListByUser(ctx, a)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "one", got[0].Title)
	require.Equal(t, "two", got[1].Title)
	require.Equal(t, []string{}, got[1].Tags)

	other, err := r.ListByUser(ctx, b)
	require.NoError(t, err)
	require.Empty(t, other)

	// a record under B's key that claims another owner is not surfaced
	require.NoError(t, r.ReplaceAll(ctx, b, []model.Note{n1}))
	other, err = r.ListByUser(ctx, b)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestNoteRepo_ReplaceAllEmpty(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	r := NewNoteRepo(s)
	u := uuid.Must(uuid.NewV4())

	require.NoError(t, r.ReplaceAll(ctx, u, nil))
	b, err := s.Get(ctx, NotesKey(u))
	require.NoError(t, err)
	require.Equal(t, "[]", string(b))
}

func TestSessionRepo_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepo(memory.New())

	_, err := r.Get(ctx)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, r.Put(ctx, "tok"))
	tok, err := r.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok", tok)

	require.NoError(t, r.Clear(ctx))
	_, err = r.Get(ctx)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSessionRepo_SigningKeyIsStable(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	r := NewSessionRepo(s)

	k1, err := r.SigningKey(ctx)
	require.NoError(t, err)
	require.Len(t, k1, signingKeyLen)

	k2, err := NewSessionRepo(s).SigningKey(ctx)
	require.NoError(t, err)
	require.Equal(t, k1, k2)

	raw, err := s.Get(ctx, KeySessionKey)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(k1), string(raw))

	require.NoError(t, s.Set(ctx, KeySessionKey, []byte("zz")))
	_, err = r.SigningKey(ctx)
	require.Error(t, err)

	_, err = NewSessionRepo(brokenStore{}).SigningKey(ctx)
	require.Error(t, err)
}
