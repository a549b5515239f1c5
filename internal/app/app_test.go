package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/codenotes/internal/config"
	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/model"
	"github.com/and161185/codenotes/internal/notify"
	"github.com/and161185/codenotes/internal/repository/kv"
	"github.com/and161185/codenotes/internal/storage"
	"github.com/and161185/codenotes/internal/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Driver: storage.DriverMemory},
		Auth:    config.AuthConfig{ArgonTime: 1, ArgonMemory: 1024, ArgonThreads: 1},
	}
}

func TestApp_SessionDrivesNotes(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a, err := NewWithStore(ctx, testConfig(), st, notify.NewBus(), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = a.RequireUser(ctx)
	require.ErrorIs(t, err, errs.ErrUnauthenticated)

	alice, err := a.Session.Register(ctx, "Alice", "alice@example.com", "pw")
	require.NoError(t, err)
	_, err = a.Notes.Add(ctx, alice.ID, model.NoteFields{Title: "alice note"})
	require.NoError(t, err)

	require.NoError(t, a.Session.Logout(ctx))
	require.Empty(t, a.Notes.Notes())

	bob, err := a.Session.Register(ctx, "Bob", "bob@example.com", "pw")
	require.NoError(t, err)
	require.Empty(t, a.Notes.Notes())
	_, err = a.Notes.Add(ctx, alice.ID, model.NoteFields{Title: "sneaky"})
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
	_, err = a.Notes.Add(ctx, bob.ID, model.NoteFields{Title: "bob note"})
	require.NoError(t, err)

	_, err = a.Session.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	notes := a.Notes.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, "alice note", notes[0].Title)
}

func TestApp_RestoreAcrossProcesses(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a, err := NewWithStore(ctx, testConfig(), st, nil, nil)
	require.NoError(t, err)
	u, err := a.Session.Register(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)
	_, err = a.Notes.Add(ctx, u.ID, model.NoteFields{Title: "persisted", Language: "Go"})
	require.NoError(t, err)

	b, err := NewWithStore(ctx, testConfig(), st, nil, nil)
	require.NoError(t, err)
	got, err := b.RequireUser(ctx)
	require.NoError(t, err)
	require.Equal(t, u, got)
	require.Equal(t, []string{"Go"}, b.Notes.Languages())
}

func TestApp_ConfiguredSigningKey(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	cfg := testConfig()
	cfg.Session.SigningKey = "first"
	a, err := NewWithStore(ctx, cfg, st, nil, nil)
	require.NoError(t, err)
	_, err = a.Session.Register(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)
	require.NotContains(t, st.Keys(), "session-key")

	cfg.Session.SigningKey = "rotated"
	b, err := NewWithStore(ctx, cfg, st, nil, nil)
	require.NoError(t, err)
	require.False(t, b.Session.IsAuthenticated(ctx))
	require.NotContains(t, st.Keys(), "user")
}

func TestApp_CorruptNotesDoNotLockOut(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a, err := NewWithStore(ctx, testConfig(), st, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	u, err := a.Session.Register(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, a.Session.Logout(ctx))
	require.NoError(t, st.Set(ctx, kv.NotesKey(u.ID), []byte("not json")))

	_, err = a.Session.Login(ctx, "ada@example.com", "pw")
	require.Error(t, err)
	require.False(t, a.Session.IsAuthenticated(ctx))
	_, err = st.Get(ctx, kv.KeySession)
	require.ErrorIs(t, err, errs.ErrNotFound)

	// the next process starts cleanly and can still log out and register
	b, err := NewWithStore(ctx, testConfig(), st, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, b.Session.Logout(ctx))
	_, err = b.Session.Register(ctx, "Bob", "bob@example.com", "pw")
	require.NoError(t, err)
}

func TestApp_CorruptNotesOnRestore(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a, err := NewWithStore(ctx, testConfig(), st, nil, nil)
	require.NoError(t, err)
	u, err := a.Session.Register(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, kv.NotesKey(u.ID), []byte("not json")))

	b, err := NewWithStore(ctx, testConfig(), st, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = b.RequireUser(ctx)
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
	require.NoError(t, b.Session.Logout(ctx))
}

func TestOpenStore_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := OpenStore(ctx, config.StorageConfig{Driver: storage.DriverFile, Path: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenStore(ctx, config.StorageConfig{Driver: storage.DriverSQLite, Path: t.TempDir() + "/cn.db"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	mr := miniredis.RunT(t)
	s, err = OpenStore(ctx, config.StorageConfig{Driver: storage.DriverRedis, RedisAddr: mr.Addr(), KeyPrefix: "t:"})
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.True(t, mr.Exists("t:k"))
	require.NoError(t, s.Close())

	_, err = OpenStore(ctx, config.StorageConfig{Driver: "tape"})
	require.Error(t, err)
}

func TestNew_OpensConfiguredStore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Storage = config.StorageConfig{Driver: storage.DriverFile, Path: t.TempDir()}
	a, err := New(ctx, cfg, nil, nil)
	require.NoError(t, err)
	_, err = a.Session.Register(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg, nil, nil)
	require.NoError(t, err)
	defer b.Close()
	require.True(t, b.Session.IsAuthenticated(ctx))
}
