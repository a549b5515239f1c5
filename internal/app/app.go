// Package app wires storage, repositories and services for one process.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/codenotes/internal/config"
	"github.com/and161185/codenotes/internal/crypto"
	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/model"
	"github.com/and161185/codenotes/internal/notify"
	"github.com/and161185/codenotes/internal/repository/kv"
	"github.com/and161185/codenotes/internal/service"
	"github.com/and161185/codenotes/internal/storage"
	"github.com/and161185/codenotes/internal/storage/file"
	"github.com/and161185/codenotes/internal/storage/memory"
	"github.com/and161185/codenotes/internal/storage/postgres"
	"github.com/and161185/codenotes/internal/storage/redis"
	"github.com/and161185/codenotes/internal/storage/sqlite"
)

// App holds the services of a running process.
type App struct {
	Store       storage.Store
	Bus         *notify.Bus
	Credentials *service.CredentialStoreImpl
	Session     *service.SessionManagerImpl
	Notes       *service.NoteStoreImpl

	log *zap.Logger
}

// OpenStore opens the backend named by c.Driver.
func OpenStore(ctx context.Context, c config.StorageConfig) (storage.Store, error) {
	switch c.Driver {
	case storage.DriverMemory:
		return memory.New(), nil
	case storage.DriverFile:
		return file.Open(c.Path)
	case storage.DriverSQLite:
		return sqlite.Open(ctx, c.Path)
	case storage.DriverPostgres:
		return postgres.Open(ctx, c.DSN)
	case storage.DriverRedis:
		return redis.Open(ctx, redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.Driver)
	}
}

// New opens the configured store and builds the App on it.
func New(ctx context.Context, cfg *config.Config, bus *notify.Bus, log *zap.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	a, err := NewWithStore(ctx, cfg, st, bus, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore builds the services over st, links the note store to session
// changes and restores the persisted session. Restore failures are logged, not returned.
func NewWithStore(ctx context.Context, cfg *config.Config, st storage.Store, bus *notify.Bus, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	users := kv.NewUserRepo(st)
	sessions := kv.NewSessionRepo(st)
	notes := kv.NewNoteRepo(st)

	key := []byte(cfg.Session.SigningKey)
	if len(key) == 0 {
		var err error
		if key, err = sessions.SigningKey(ctx); err != nil {
			return nil, fmt.Errorf("session signing key: %w", err)
		}
	}

	hasher := crypto.NewHasher(crypto.Params{
		Time:    cfg.Auth.ArgonTime,
		Memory:  cfg.Auth.ArgonMemory,
		Threads: cfg.Auth.ArgonThreads,
	})
	a := &App{
		Store:       st,
		Bus:         bus,
		Credentials: service.NewCredentialStore(users, hasher, log.Named("auth")),
		Notes:       service.NewNoteStore(notes, bus, log.Named("notes")),
		log:         log,
	}
	a.Session = service.NewSessionManager(a.Credentials, sessions, service.NewTokenCodec(key, cfg.Session.TTL), bus, log.Named("session"))
	a.Session.OnChange(a.syncNotes)

	// A session that cannot be restored reads as signed out; logout and login stay usable.
	if err := a.Session.Restore(ctx); err != nil {
		log.Warn("restore session", zap.Error(err))
	}
	return a, nil
}

func (a *App) syncNotes(ctx context.Context, u *model.User) error {
	if u == nil {
		a.Notes.Reset()
		return nil
	}
	return a.Notes.Load(ctx, u.ID)
}

// RequireUser returns the active user or errs.ErrUnauthenticated.
func (a *App) RequireUser(ctx context.Context) (model.User, error) {
	u, ok := a.Session.CurrentUser(ctx)
	if !ok {
		a.Bus.Fail("Not signed in", "Please log in first")
		return model.User{}, errs.ErrUnauthenticated
	}
	return u, nil
}

// Close releases the store.
func (a *App) Close() error {
	a.log.Debug("closing storage")
	return a.Store.Close()
}
