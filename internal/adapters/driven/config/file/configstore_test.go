package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, FileName), store.Path())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("github.owner", "acme"))
	require.NoError(t, store.Set("publish.parallelism", 4))
	require.NoError(t, store.Set("watch.enabled", true))
	require.NoError(t, store.Set("lint.ignore", []string{"orphan"}))

	assert.Equal(t, "acme", store.GetString("github.owner"))
	assert.Equal(t, "", store.GetString("publish.parallelism"))
	assert.Equal(t, 4, store.GetInt("publish.parallelism"))
	assert.True(t, store.GetBool("watch.enabled"))
	assert.Equal(t, []string{"orphan"}, store.GetStringSlice("lint.ignore"))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("store.backend", "github"))
	require.NoError(t, store.Set("shard.target", 1024))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "github", reopened.GetString("store.backend"))
	// TOML integers come back as int64.
	assert.Equal(t, 1024, reopened.GetInt("shard.target"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("github.owner", "acme"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	assert.Contains(t, string(data), "[github]")
	assert.Contains(t, string(data), "owner = 'acme'")
}

func TestConfigStore_Load_HandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[store]
backend = "git"

[git]
path = "/srv/kb"

[shard]
target = "2MiB"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "git", store.GetString("store.backend"))
	assert.Equal(t, "/srv/kb", store.GetString("git.path"))
	assert.Equal(t, "2MiB", store.GetString("shard.target"))
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), nil, 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, "", store.GetString("store.backend"))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte("[unterminated"), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("github.token_env", "KB_TOKEN"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)

	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("publish.parallelism", n)
			_ = store.GetInt("publish.parallelism")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("publish.parallelism")
	assert.True(t, ok)
}
