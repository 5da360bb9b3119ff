package dir

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

func TestStore_WriteRead(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := New(root)

	sha, err := store.Write(ctx, "kb/search/search-1.json", []byte("[]"), "", "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "kb", "search", "search-1.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	got, gotSHA, err := store.Read(ctx, "/kb/search/search-1.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
	assert.Equal(t, sha, gotSHA)
}

func TestStore_Read_NotFound(t *testing.T) {
	_, _, err := New(t.TempDir()).Read(context.Background(), "registry.json")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Write_Conflict(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())
	sha, err := store.Write(ctx, "registry.json", []byte("[]"), "", "")
	require.NoError(t, err)

	_, err = store.Write(ctx, "registry.json", []byte("[1]"), "", "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = store.Write(ctx, "registry.json", []byte("[1]"), sha, "")
	assert.NoError(t, err)

	_, err = store.Write(ctx, "registry.json", []byte("[2]"), sha, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())
	sha, err := store.Write(ctx, "search.json", []byte("[]"), "", "")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "missing.json", "", ""))
	assert.ErrorIs(t, store.Delete(ctx, "search.json", "stale", ""), domain.ErrConflict)
	require.NoError(t, store.Delete(ctx, "search.json", sha, ""))

	_, _, err = store.Read(ctx, "search.json")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := New(root)
	for _, p := range []string{"kb/search/search-2.json", "kb/search/search-1.json", "kb/registry.json"} {
		_, err := store.Write(ctx, p, []byte("[]"), "", "")
		require.NoError(t, err)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "kb", "search", "nested"), 0755))

	got, err := store.List(ctx, "kb/search")
	require.NoError(t, err)
	assert.Equal(t, []string{"kb/search/search-1.json", "kb/search/search-2.json"}, got)

	got, err = store.List(ctx, "nowhere")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_RejectsEscapingPaths(t *testing.T) {
	_, err := New(t.TempDir()).Write(context.Background(), "../outside.json", nil, "", "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Write(ctx, filepath.Join("search", "f", string(rune('a'+i))+".json"), []byte("[]"), "", "")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	got, err := store.List(ctx, "search/f")
	require.NoError(t, err)
	assert.Len(t, got, 8)
}
