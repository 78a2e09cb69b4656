package filerepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/session"
)

var _ session.Repo = (*FileSessionRepo)(nil)

const storageVersion = 0

// envelope mirrors the persisted-store layout: a named key wrapping the state.
type envelope struct {
	Name    string          `json:"name"`
	State   session.Session `json:"state"`
	Version int             `json:"version"`
}

// FileSessionRepo stores the session as JSON in a single file readable only by
// the current user.
type FileSessionRepo struct {
	path string
	name string
	lock sync.Mutex
}

func New(path, name string) *FileSessionRepo {
	return &FileSessionRepo{path: path, name: name}
}

func (r *FileSessionRepo) Load(_ context.Context) (*session.Session, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, lmserrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[FileSessionRepo Load] failed to read %s: %w", r.path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("[FileSessionRepo Load] corrupt session file %s: %w", r.path, err)
	}
	if env.Name != r.name {
		return nil, lmserrors.ErrSessionNotFound
	}
	return &env.State, nil
}

func (r *FileSessionRepo) Save(_ context.Context, s session.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	data, err := json.MarshalIndent(envelope{Name: r.name, State: s, Version: storageVersion}, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileSessionRepo Save] failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("[FileSessionRepo Save] failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*")
	if err != nil {
		return fmt.Errorf("[FileSessionRepo Save] failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileSessionRepo Save] failed to write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileSessionRepo Save] failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[FileSessionRepo Save] failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("[FileSessionRepo Save] failed to replace session file: %w", err)
	}
	return nil
}

func (r *FileSessionRepo) Delete(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("[FileSessionRepo Delete] failed to remove %s: %w", r.path, err)
	}
	return nil
}
