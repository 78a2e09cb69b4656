package filerepo_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/session/filerepo"
	"github.com/stretchr/testify/require"
)

func TestFileSessionRepo(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	repo := filerepo.New(path, "auth-storage")

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, lmserrors.ErrSessionNotFound)

	s := session.Session{
		AccessToken:  "a1",
		RefreshToken: "r1",
		Role:         session.RoleStudent,
		Profile:      json.RawMessage(`{"id":3}`),
	}
	require.NoError(t, repo.Save(ctx, s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "a1", loaded.AccessToken)
	require.Equal(t, session.RoleStudent, loaded.Role)
	require.JSONEq(t, `{"id":3}`, string(loaded.Profile))

	t.Run("other store name is not read", func(t *testing.T) {
		_, err := filerepo.New(path, "other").Load(ctx)
		require.ErrorIs(t, err, lmserrors.ErrSessionNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx))
		require.NoError(t, repo.Delete(ctx))
		_, err := repo.Load(ctx)
		require.ErrorIs(t, err, lmserrors.ErrSessionNotFound)
	})

	t.Run("corrupt file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		_, err := repo.Load(ctx)
		require.Error(t, err)
		require.Contains(t, err.Error(), "corrupt session file")
	})
}

func TestFileSessionRepo_WithManager(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	m, err := session.NewManager(ctx, filerepo.New(path, "auth-storage"))
	require.NoError(t, err)
	require.NoError(t, m.Login(ctx, session.Tokens{Access: "a", Refresh: "r"}, session.RoleTeacher, nil))

	restored, err := session.NewManager(ctx, filerepo.New(path, "auth-storage"))
	require.NoError(t, err)
	require.Equal(t, "a", restored.AccessToken())
	require.Equal(t, session.RoleTeacher, restored.Role())
}
