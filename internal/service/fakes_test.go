package service

import (
	"context"
	"slices"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/codenotes/internal/crypto"
	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/model"
	"github.com/and161185/codenotes/internal/notify"
	"github.com/and161185/codenotes/internal/repository"
)

var cheapHasher = crypto.NewHasher(crypto.Params{Time: 1, Memory: 1024, Threads: 1})

type fakeUsers struct {
	byEmail map[string]*model.Account

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, a *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byEmail == nil {
		f.byEmail = map[string]*model.Account{}
	}
	if _, exists := f.byEmail[a.Email]; exists {
		return errs.ErrDuplicateEmail
	}
	cpy := *a
	f.byEmail[a.Email] = &cpy
	return nil
}
func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *a
	return &c, nil
}

type fakeSessions struct {
	token string
	key   []byte

	putErr   error
	getErr   error
	clearErr error
	cleared  int
}

var _ repository.SessionRepository = (*fakeSessions)(nil)

func (f *fakeSessions) Get(context.Context) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	if f.token == "" {
		return "", errs.ErrNotFound
	}
	return f.token, nil
}
func (f *fakeSessions) Put(_ context.Context, token string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.token = token
	return nil
}
func (f *fakeSessions) Clear(context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared++
	f.token = ""
	return nil
}
func (f *fakeSessions) SigningKey(context.Context) ([]byte, error) {
	if f.key == nil {
		f.key = []byte("0123456789abcdef0123456789abcdef")
	}
	return f.key, nil
}

type fakeNotes struct {
	byUser map[uuid.UUID][]model.Note

	listErr    error
	replaceErr error
	writes     int
}

var _ repository.NoteRepository = (*fakeNotes)(nil)

func (f *fakeNotes) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Note, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Note{}
	for _, n := range f.byUser[userID] {
		out = append(out, n.Clone())
	}
	return out, nil
}
func (f *fakeNotes) ReplaceAll(_ context.Context, userID uuid.UUID, notes []model.Note) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	if f.byUser == nil {
		f.byUser = map[uuid.UUID][]model.Note{}
	}
	f.writes++
	f.byUser[userID] = slices.Clone(notes)
	return nil
}

// recorder captures published notifications.
type recorder struct{ events []notify.Event }

func newRecorder() (*notify.Bus, *recorder) {
	b := notify.NewBus()
	r := &recorder{}
	b.Subscribe(func(ev notify.Event) { r.events = append(r.events, ev) })
	return b, r
}

func (r *recorder) titles() []string {
	out := []string{}
	for _, ev := range r.events {
		out = append(out, ev.Title)
	}
	return out
}

func mustUUID() uuid.UUID {
	id, err := uuid.NewV4()
	if err != nil {
		panic(err)
	}
	return id
}
