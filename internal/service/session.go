package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/model"
	"github.com/and161185/codenotes/internal/notify"
	"github.com/and161185/codenotes/internal/repository"
)

// ChangeHook is invoked after every session change with the new active user, or nil when signed out.
type ChangeHook func(ctx context.Context, u *model.User) error

// SessionManager tracks the active user and keeps it persisted across restarts.
type SessionManager interface {
	// Restore loads the persisted identity. Only the first call has an effect.
	Restore(ctx context.Context) error
	// SignIn makes u the active user and persists its identity.
	SignIn(ctx context.Context, u model.User) error
	// SignOut clears the active user and the persisted identity.
	SignOut(ctx context.Context) error
	// CurrentUser returns the active user, restoring first if needed.
	CurrentUser(ctx context.Context) (model.User, bool)
	// IsAuthenticated reports whether a user is active.
	IsAuthenticated(ctx context.Context) bool
	// OnChange registers a hook for session changes.
	OnChange(h ChangeHook)

	// Login authenticates and signs in.
	Login(ctx context.Context, email, secret string) (model.User, error)
	// Register creates an account and signs it in.
	Register(ctx context.Context, name, email, secret string) (model.User, error)
	// Logout is SignOut.
	Logout(ctx context.Context) error
}

type SessionManagerImpl struct {
	creds    CredentialStore
	sessions repository.SessionRepository
	tokens   *TokenCodec
	bus      *notify.Bus
	log      *zap.Logger

	mu       sync.Mutex
	restored bool
	user     *model.User
	hooks    []ChangeHook
}

// NewSessionManager constructs SessionManager. bus may be nil.
func NewSessionManager(creds CredentialStore, sessions repository.SessionRepository, tokens *TokenCodec, bus *notify.Bus, log *zap.Logger) *SessionManagerImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManagerImpl{creds: creds, sessions: sessions, tokens: tokens, bus: bus, log: log}
}

// OnChange appends h to the hooks run after each change.
func (m *SessionManagerImpl) OnChange(h ChangeHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

// Restore reads the persisted token. A token that does not verify is removed and ignored.
func (m *SessionManagerImpl) Restore(ctx context.Context) error {
	m.mu.Lock()
	if m.restored {
		m.mu.Unlock()
		return nil
	}
	u, err := m.restoreLocked(ctx)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.restored = true
	m.user = u
	m.mu.Unlock()
	if u == nil {
		return m.fire(ctx, nil)
	}
	return m.activate(ctx, u)
}

func (m *SessionManagerImpl) restoreLocked(ctx context.Context) (*model.User, error) {
	tok, err := m.sessions.Get(ctx)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	u, err := m.tokens.Parse(tok)
	if err != nil {
		m.log.Warn("discarding persisted session", zap.Error(err))
		if cerr := m.sessions.Clear(ctx); cerr != nil {
			return nil, fmt.Errorf("clear session: %w", cerr)
		}
		return nil, nil
	}
	return &u, nil
}

// SignIn persists u and makes it active.
func (m *SessionManagerImpl) SignIn(ctx context.Context, u model.User) error {
	tok, err := m.tokens.Issue(u)
	if err != nil {
		return fmt.Errorf("issue session token: %w", err)
	}
	m.mu.Lock()
	if err := m.sessions.Put(ctx, tok); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}
	m.restored = true
	m.user = &u
	m.mu.Unlock()
	m.log.Debug("signed in", zap.Stringer("user_id", u.ID))
	return m.activate(ctx, &u)
}

// activate runs the hooks for a newly active user. If any hook fails the
// session is signed out again, in memory and in storage.
func (m *SessionManagerImpl) activate(ctx context.Context, u *model.User) error {
	herr := m.fire(ctx, u)
	if herr == nil {
		return nil
	}
	m.log.Warn("session change failed, signing out", zap.Stringer("user_id", u.ID), zap.Error(herr))

	m.mu.Lock()
	m.user = nil
	cerr := m.sessions.Clear(ctx)
	m.mu.Unlock()
	if cerr != nil {
		cerr = fmt.Errorf("clear session: %w", cerr)
	}
	return errors.Join(herr, cerr, m.fire(ctx, nil))
}

// SignOut removes the persisted identity and clears the active user.
func (m *SessionManagerImpl) SignOut(ctx context.Context) error {
	m.mu.Lock()
	if err := m.sessions.Clear(ctx); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("clear session: %w", err)
	}
	m.restored = true
	m.user = nil
	m.mu.Unlock()
	m.log.Debug("signed out")
	return m.fire(ctx, nil)
}

// CurrentUser returns a copy of the active user. A failing restore is logged and reads as signed out.
func (m *SessionManagerImpl) CurrentUser(ctx context.Context) (model.User, bool) {
	if err := m.Restore(ctx); err != nil {
		m.log.Warn("restore failed", zap.Error(err))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return model.User{}, false
	}
	return *m.user, true
}

// IsAuthenticated reports whether CurrentUser would return a user.
func (m *SessionManagerImpl) IsAuthenticated(ctx context.Context) bool {
	_, ok := m.CurrentUser(ctx)
	return ok
}

func (m *SessionManagerImpl) fire(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	hooks := append([]ChangeHook(nil), m.hooks...)
	m.mu.Unlock()

	var errsOut []error
	for _, h := range hooks {
		var arg *model.User
		if u != nil {
			cp := *u
			arg = &cp
		}
		if err := h(ctx, arg); err != nil {
			errsOut = append(errsOut, err)
		}
	}
	return errors.Join(errsOut...)
}

// Login authenticates email/secret and signs the user in.
func (m *SessionManagerImpl) Login(ctx context.Context, email, secret string) (model.User, error) {
	u, err := m.creds.Authenticate(ctx, email, secret)
	switch {
	case errors.Is(err, errs.ErrInvalidCredentials):
		m.bus.Fail("Login failed", "Invalid email or password")
		return model.User{}, err
	case err != nil:
		m.log.Error("login", zap.Error(err))
		m.bus.Fail("Login error", "Something went wrong. Please try again.")
		return model.User{}, err
	}
	if err := m.SignIn(ctx, u); err != nil {
		m.log.Error("login", zap.Error(err))
		m.bus.Fail("Login error", "Something went wrong. Please try again.")
		return model.User{}, err
	}
	m.bus.Info("Login successful", fmt.Sprintf("Welcome back, %s!", u.Name))
	return u, nil
}

// Register creates the account and signs it in.
func (m *SessionManagerImpl) Register(ctx context.Context, name, email, secret string) (model.User, error) {
	u, err := m.creds.Register(ctx, name, email, secret)
	switch {
	case errors.Is(err, errs.ErrDuplicateEmail):
		m.bus.Fail("Registration failed", "Email already in use")
		return model.User{}, err
	case errors.Is(err, errs.ErrValidation):
		m.bus.Fail("Registration failed", "Please fill in all fields")
		return model.User{}, err
	case err != nil:
		m.log.Error("register", zap.Error(err))
		m.bus.Fail("Registration error", "Something went wrong. Please try again.")
		return model.User{}, err
	}
	if err := m.SignIn(ctx, u); err != nil {
		m.log.Error("register", zap.Error(err))
		m.bus.Fail("Registration error", "Something went wrong. Please try again.")
		return model.User{}, err
	}
	m.bus.Info("Registration successful", "Your account has been created")
	return u, nil
}

// Logout signs out and confirms it.
func (m *SessionManagerImpl) Logout(ctx context.Context) error {
	if err := m.SignOut(ctx); err != nil {
		return err
	}
	m.bus.Info("Logged out", "You have been logged out successfully")
	return nil
}
