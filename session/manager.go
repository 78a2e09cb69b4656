package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var (
	ErrMissingTokens = errors.New("access and refresh tokens are required")
	ErrInvalidRole   = errors.New("role must be student or teacher")
)

// Manager owns the process-wide session. Reads are served from memory; every
// mutation is written through to the Repo before it becomes visible.
type Manager struct {
	repo    Repo
	lock    sync.RWMutex
	current Session
}

// NewManager creates a manager and restores any session previously saved in repo.
func NewManager(ctx context.Context, repo Repo) (*Manager, error) {
	m := &Manager{repo: repo}

	stored, err := repo.Load(ctx)
	switch {
	case errors.Is(err, lmserrors.ErrSessionNotFound):
	case err != nil:
		return nil, fmt.Errorf("[Session NewManager] failed to restore session: %w", err)
	case stored != nil:
		m.current = stored.Clone()
	}
	return m, nil
}

// State returns a copy of the current session.
func (m *Manager) State() Session {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current.Clone()
}

func (m *Manager) AccessToken() string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current.AccessToken
}

func (m *Manager) RefreshToken() string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current.RefreshToken
}

func (m *Manager) Role() Role {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current.Role
}

func (m *Manager) IsAuthenticated() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current.IsAuthenticated()
}

// Login replaces the session with the result of a successful login.
func (m *Manager) Login(ctx context.Context, tokens Tokens, role Role, profile json.RawMessage) error {
	if tokens.Access == "" || tokens.Refresh == "" {
		return ErrMissingTokens
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	next := Session{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
		Role:         role,
		Profile:      append(json.RawMessage(nil), profile...),
		UpdatedAt:    NowTimeFunc(),
	}
	return m.update(ctx, "Login", func(Session) Session { return next })
}

// SetTokens stores a new token pair, leaving role and profile untouched.
func (m *Manager) SetTokens(ctx context.Context, tokens Tokens) error {
	if tokens.Access == "" {
		return ErrMissingTokens
	}
	return m.update(ctx, "SetTokens", func(s Session) Session {
		s.AccessToken = tokens.Access
		s.RefreshToken = tokens.Refresh
		s.UpdatedAt = NowTimeFunc()
		return s
	})
}

// SetProfile replaces the stored user record, e.g. after a profile update.
func (m *Manager) SetProfile(ctx context.Context, profile json.RawMessage) error {
	return m.update(ctx, "SetProfile", func(s Session) Session {
		s.Profile = append(json.RawMessage(nil), profile...)
		s.UpdatedAt = NowTimeFunc()
		return s
	})
}

// Clear destroys the session: both tokens, role and profile.
func (m *Manager) Clear(ctx context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	// Memory is cleared even if the repo fails so the stale token is never sent again.
	m.current = Session{}
	if err := m.repo.Delete(ctx); err != nil {
		return fmt.Errorf("[Session Clear] failed to delete stored session: %w", err)
	}
	return nil
}

func (m *Manager) update(ctx context.Context, op string, mutate func(Session) Session) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	next := mutate(m.current.Clone())
	if err := m.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("[Session %s] failed to save session: %w", op, err)
	}
	m.current = next
	return nil
}
