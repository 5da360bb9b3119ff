package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

func TestLintCmd_Use(t *testing.T) {
	assert.Equal(t, "lint", lintCmd.Use)
}

func TestLintCmd_ConfiguredStore(t *testing.T) {
	ts := setupTestServices(t)
	ts.linter.findings = []domain.Finding{
		{Check: "orphan", Severity: domain.SeverityWarning, Subject: "block-2", Message: "no inbound links"},
		{Check: "schema", Severity: domain.SeverityError, Subject: "registry.json", Message: "missing id"},
	}

	out, err := execute(t, "", "lint")

	require.NoError(t, err)
	assert.Equal(t, domain.StoreDir, ts.requests[0].Backend)
	assert.Empty(t, ts.requests[0].Path)
	assert.Equal(t, domain.DefaultBasePath, ts.linter.base)
	assert.Contains(t, out, "Findings (2)")
	assert.Contains(t, out, "WARNING [orphan] block-2: no inbound links")
	assert.Contains(t, out, "ERROR [schema] registry.json: missing id")
}

func TestLintCmd_Dir(t *testing.T) {
	ts := setupTestServices(t)
	dir := t.TempDir()

	out, err := execute(t, "", "lint", "--dir", dir)

	require.NoError(t, err)
	assert.Equal(t, StoreRequest{Backend: domain.StoreDir, Path: dir}, ts.requests[0])
	assert.Empty(t, ts.linter.base)
	assert.Contains(t, out, "No findings.")
}

func TestLintCmd_JSON(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "lint", "--json")
	require.NoError(t, err)

	var findings []domain.Finding
	require.NoError(t, json.Unmarshal([]byte(out), &findings))
	assert.Empty(t, findings)
	assert.Contains(t, out, "[]")
}

func TestLintCmd_StoreUnavailable(t *testing.T) {
	ts := setupTestServices(t)
	ts.linter.err = domain.ErrStoreUnavailable

	_, err := execute(t, "", "lint")

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestLintCmd_RejectsArgs(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "lint", "extra")

	assert.Error(t, err)
}
