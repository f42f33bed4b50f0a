package vault_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/taskvault/internal/vault"
)

func openTestSQLite(t *testing.T, path string) *vault.SQLiteBackend {
	t.Helper()

	backend, err := vault.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	return backend
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	t.Parallel()

	backend := openTestSQLite(t, filepath.Join(t.TempDir(), "vault.db"))

	require.NoError(t, backend.Set("appState", "v1"))
	require.NoError(t, backend.Set("appState", "v2"), "set must replace")

	value, ok, err := backend.Get("appState")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", value)

	_, ok, err = backend.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteBackendBootstrapIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vault.db")

	first := openTestSQLite(t, path)
	require.NoError(t, first.Set("appState", "persisted"))
	require.NoError(t, first.Close())

	second := openTestSQLite(t, path)

	value, ok, err := second.Get("appState")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", value)
}

func TestSQLiteBackendKeysAndClear(t *testing.T) {
	t.Parallel()

	backend := openTestSQLite(t, filepath.Join(t.TempDir(), "vault.db"))

	require.NoError(t, backend.Set("b", "2"))
	require.NoError(t, backend.Set("a", "1"))
	require.NoError(t, backend.Set("demo:a", "3"))

	keys, err := backend.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "demo:a"}, keys)

	require.NoError(t, backend.Delete("b"))
	require.NoError(t, backend.Delete("b"), "deleting a missing key is not an error")

	require.NoError(t, backend.Clear())

	keys, err = backend.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStoreOverSQLiteBackend(t *testing.T) {
	t.Parallel()

	backend := openTestSQLite(t, filepath.Join(t.TempDir(), "vault.db"))
	store := vault.New(backend, vault.NewMemBackend())

	require.NoError(t, store.Save("appState", vault.ModeDemo, smallState("From sqlite")))

	loaded, err := store.Load("appState", vault.ModeDemo)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "From sqlite", loaded.Tasks[0].Title)
}
