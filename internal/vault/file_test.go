package vault_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/taskvault/internal/vault"
)

func TestFileBackendRoundTrip(t *testing.T) {
	t.Parallel()

	backend, err := vault.NewFileBackend(filepath.Join(t.TempDir(), "vault"))
	require.NoError(t, err)

	require.NoError(t, backend.Set("appState", `{"ok":true}`))

	value, ok, err := backend.Get("appState")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"ok":true}`, value)

	_, ok, err = backend.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileBackendSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "vault")

	backend, err := vault.NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, backend.Set("appState", "persisted"))

	reopened, err := vault.NewFileBackend(dir)
	require.NoError(t, err)

	value, ok, err := reopened.Get("appState")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", value)
}

func TestFileBackendEscapesNamespacedKeys(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "vault")

	backend, err := vault.NewFileBackend(dir)
	require.NoError(t, err)

	require.NoError(t, backend.Set("demo:appState", "demo"))
	require.NoError(t, backend.Set("appState", "real"))
	require.NoError(t, backend.Set("weird/../key", "tricky"))

	keys, err := backend.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"demo:appState", "appState", "weird/../key"}, keys)

	// No entry file may escape the backend directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	count := 0

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".state" {
			count++
		}
	}

	assert.Equal(t, 3, count)

	value, ok, err := backend.Get("weird/../key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tricky", value)
}

func TestFileBackendDeleteAndClear(t *testing.T) {
	t.Parallel()

	backend, err := vault.NewFileBackend(filepath.Join(t.TempDir(), "vault"))
	require.NoError(t, err)

	require.NoError(t, backend.Set("a", "1"))
	require.NoError(t, backend.Set("b", "2"))

	require.NoError(t, backend.Delete("a"))
	require.NoError(t, backend.Delete("a"), "deleting a missing key is not an error")

	keys, err := backend.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)

	require.NoError(t, backend.Clear())

	keys, err = backend.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFileBackendIgnoresForeignFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "vault")

	backend, err := vault.NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, backend.Set("appState", "real"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("hi"), 0o600))

	keys, err := backend.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"appState"}, keys)

	require.NoError(t, backend.Clear())

	_, err = os.Stat(filepath.Join(dir, "README.txt"))
	assert.NoError(t, err, "clear must leave foreign files alone")
}
