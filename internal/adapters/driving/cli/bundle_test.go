package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udigitrentals/github-kb/internal/bundle"
)

func TestBundleCmd_WritesArchive(t *testing.T) {
	setupTestServices(t)
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "registry.json"), []byte("[]\n"), 0644))
	dst := filepath.Join(t.TempDir(), "kb.zip")

	out, err := execute(t, "", "bundle", src, "--out", dst)

	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+dst+" (1 files, 3 B)")
	m, err := bundle.Verify(dst)
	require.NoError(t, err)
	assert.Equal(t, "registry.json", m.Files[0].Path)
}

func TestBundleCmd_DefaultName(t *testing.T) {
	setupTestServices(t)
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.json"), []byte("{}"), 0644))

	original := now
	now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	defer func() { now = original }()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	_, err = execute(t, "", "bundle", src)

	require.NoError(t, err)
	_, err = os.Stat("kb_bundle_20260301T120000Z.zip")
	assert.NoError(t, err)
}

func TestBundleCmd_MissingDir(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "bundle", filepath.Join(t.TempDir(), "missing"), "--out", filepath.Join(t.TempDir(), "x.zip"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundle failed")
}
