package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

func TestComposeCmd_Use(t *testing.T) {
	assert.Equal(t, "compose <file.md>", composeCmd.Use)
}

func TestComposeCmd_HasFlags(t *testing.T) {
	out := composeCmd.Flags().Lookup("out")
	require.NotNil(t, out)
	assert.Equal(t, ".", out.DefValue)
	assert.NotNil(t, composeCmd.Flags().Lookup("existing"))
	assert.NotNil(t, composeCmd.Flags().Lookup("watch"))
}

func TestComposeCmd_WritesToOutDir(t *testing.T) {
	ts := setupTestServices(t)
	out := t.TempDir()

	stdout, err := execute(t, "", "compose", writeMarkdown(t, "## Block 1\n"), "--out", out)

	require.NoError(t, err)
	require.Len(t, ts.requests, 1)
	assert.Equal(t, StoreRequest{Backend: domain.StoreDir, Path: out}, ts.requests[0])
	assert.Same(t, ts.stores[out], ts.publisher.ws.Target)
	assert.Nil(t, ts.publisher.ws.Source)
	assert.Empty(t, ts.publisher.ws.BasePath)
	assert.Contains(t, stdout, "Published")
}

func TestComposeCmd_SeparateExisting(t *testing.T) {
	ts := setupTestServices(t)
	out, existing := t.TempDir(), t.TempDir()

	_, err := execute(t, "", "compose", writeMarkdown(t, "## Block 1\n"), "--out", out, "--existing", existing)

	require.NoError(t, err)
	require.Len(t, ts.requests, 2)
	assert.Equal(t, existing, ts.requests[1].Path)
	assert.Same(t, ts.stores[existing], ts.publisher.ws.Source)
}

func TestComposeCmd_DryRun(t *testing.T) {
	ts := setupTestServices(t)

	_, err := execute(t, "", "compose", writeMarkdown(t, "## Block 1\n"), "--out", t.TempDir(), "--dry-run")

	require.NoError(t, err)
	assert.True(t, ts.publisher.opts[0].DryRun)
}

func TestComposeCmd_ErrorWithoutWatch(t *testing.T) {
	ts := setupTestServices(t)
	ts.publisher.err = domain.ErrLosslessViolation

	_, err := execute(t, "", "compose", writeMarkdown(t, "## Block 1\n"), "--out", t.TempDir())

	assert.ErrorIs(t, err, domain.ErrLosslessViolation)
}
