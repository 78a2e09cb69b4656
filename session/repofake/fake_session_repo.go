package repofake

import (
	"context"
	"sync"

	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps the session in memory. It is the "memory" backend and
// the repo used by tests; SaveErr/DeleteErr let tests simulate storage faults.
type FakeSessionRepo struct {
	lock      sync.RWMutex
	stored    *session.Session
	saves     int
	SaveErr   error
	DeleteErr error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

// NewFakeSessionRepoWith returns a repo that already holds s.
func NewFakeSessionRepoWith(s session.Session) *FakeSessionRepo {
	stored := s.Clone()
	return &FakeSessionRepo{stored: &stored}
}

func (r *FakeSessionRepo) Load(_ context.Context) (*session.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.stored == nil {
		return nil, lmserrors.ErrSessionNotFound
	}
	s := r.stored.Clone()
	return &s, nil
}

func (r *FakeSessionRepo) Save(_ context.Context, s session.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	stored := s.Clone()
	r.stored = &stored
	r.saves++
	return nil
}

func (r *FakeSessionRepo) Delete(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.stored = nil
	return nil
}

// Saves reports how many successful writes the repo has seen.
func (r *FakeSessionRepo) Saves() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.saves
}
