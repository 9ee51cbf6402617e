package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStoreSetGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("server.port", 5001))
	require.NoError(t, store.Set("server.token", "secret"))
	require.NoError(t, store.Set("worker.quit_on_idle", true))

	assert.Equal(t, 5001, store.GetInt("server.port"))
	assert.Equal(t, "secret", store.GetString("server.token"))
	assert.True(t, store.GetBool("worker.quit_on_idle"))

	// Missing and mistyped keys fall back to zero values.
	assert.Equal(t, "", store.GetString("server.port"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStorePersistence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("data_dir", "/var/lib/docflow"))

	// A second store over the same directory sees the value.
	store2, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/docflow", store2.GetString("data_dir"))
}

func TestConfigStoreFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 5001\ntoken = \"abc\"\n"), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 5001, store.GetInt("server.port"))
	assert.Equal(t, "abc", store.GetString("server.token"))
	assert.Equal(t, path, store.Path())
}

func TestConfigStoreEmptyDirectory(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("anything")
	assert.False(t, ok)
}
