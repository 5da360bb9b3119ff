package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

func writeMarkdown(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kb.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPublishCmd_Use(t *testing.T) {
	assert.Equal(t, "publish <file.md>", publishCmd.Use)
}

func TestPublishCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "publish")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestPublishCmd_HasFlags(t *testing.T) {
	for _, name := range []string{"backend", "dry-run", "message", "json"} {
		assert.NotNil(t, publishCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "m", publishCmd.Flags().Lookup("message").Shorthand)
}

func TestPublishCmd_NotConfigured(t *testing.T) {
	setupTestServices(t)
	SetServices(&Services{})

	_, err := execute(t, "", "publish", writeMarkdown(t, "## Block 1"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish service not configured")
}

func TestPublishCmd_PublishesToConfiguredStore(t *testing.T) {
	ts := setupTestServices(t)
	path := writeMarkdown(t, "## Block 1 — Pricing\nbody\n")

	out, err := execute(t, "", "publish", path, "-m", "Add pricing")

	require.NoError(t, err)
	require.Len(t, ts.requests, 1)
	assert.Equal(t, domain.StoreDir, ts.requests[0].Backend)
	assert.Equal(t, domain.DefaultBasePath, ts.publisher.ws.BasePath)
	assert.Nil(t, ts.publisher.ws.Source)
	assert.Equal(t, []string{"## Block 1 — Pricing\nbody\n"}, ts.publisher.inputs)
	assert.Equal(t, "Add pricing", ts.publisher.opts[0].Message)
	assert.False(t, ts.publisher.opts[0].DryRun)

	assert.Contains(t, out, "Published")
	assert.Contains(t, out, "Registry entries: 2")
	assert.Contains(t, out, "2 nodes, 1 edges (1 pending)")
	assert.Contains(t, out, "wrote data/registry.json")
	assert.Contains(t, out, "pending-ref")
	assert.Equal(t, 1, ts.closed)
}

func TestPublishCmd_DryRun(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "", "publish", writeMarkdown(t, "## Block 1"), "--dry-run")

	require.NoError(t, err)
	assert.True(t, ts.publisher.opts[0].DryRun)
	assert.Contains(t, out, "Dry run (nothing written)")
	assert.NotContains(t, out, "wrote")
}

func TestPublishCmd_JSON(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "publish", writeMarkdown(t, "## Block 1"), "--json")
	require.NoError(t, err)

	var summary publishSummaryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, []string{"data/registry.json", "data/search.json"}, summary.Written)
	assert.Empty(t, summary.Deleted)
	assert.Equal(t, 2, summary.Stats.SearchDocs)
	assert.Len(t, summary.Findings, 1)
}

func TestPublishCmd_InvalidBackend(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "publish", writeMarkdown(t, "## Block 1"), "--backend", "s3")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPublishCmd_GitHubTokenFromEnv(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.settings.GitHub.TokenEnv = "KB_TEST_TOKEN"
	t.Setenv("KB_TEST_TOKEN", "ghp_secret")

	_, err := execute(t, "", "publish", writeMarkdown(t, "## Block 1"), "--backend", "github")

	require.NoError(t, err)
	require.Len(t, ts.requests, 1)
	assert.Equal(t, domain.StoreGitHub, ts.requests[0].Backend)
	assert.Equal(t, "ghp_secret", ts.requests[0].Token)
}

func TestPublishCmd_GitHubTokenPrompt(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.settings.GitHub.TokenEnv = "KB_TEST_TOKEN"
	t.Setenv("KB_TEST_TOKEN", "")

	original := isTerminal
	isTerminal = func() bool { return true }
	defer func() { isTerminal = original }()

	out, err := execute(t, "ghp_typed\n", "publish", writeMarkdown(t, "## Block 1"), "--backend", "github")

	require.NoError(t, err)
	assert.Contains(t, out, "KB_TEST_TOKEN is not set")
	assert.Equal(t, "ghp_typed", ts.requests[0].Token)
}

func TestPublishCmd_NoTokenWithoutTerminal(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.settings.GitHub.TokenEnv = "KB_TEST_TOKEN"
	t.Setenv("KB_TEST_TOKEN", "")

	original := isTerminal
	isTerminal = func() bool { return false }
	defer func() { isTerminal = original }()

	_, err := execute(t, "", "publish", writeMarkdown(t, "## Block 1"), "--backend", "github")

	require.NoError(t, err)
	assert.Empty(t, ts.requests[0].Token)
}

func TestPublishCmd_MissingFile(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "publish", filepath.Join(t.TempDir(), "missing.md"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestPublishCmd_PublishError(t *testing.T) {
	ts := setupTestServices(t)
	ts.publisher.err = domain.ErrLosslessViolation

	_, err := execute(t, "", "publish", writeMarkdown(t, "## Block 1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLosslessViolation))
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short token", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long token", input: "ghp_1234567890abcdef", expected: "ghp_...cdef"},
		{name: "Empty token", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskToken(tt.input))
		})
	}
}
