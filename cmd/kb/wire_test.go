package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udigitrentals/github-kb/internal/adapters/driving/cli"
	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	settings := domain.DefaultSettings()
	settings.DirPath = filepath.Join(t.TempDir(), "out")

	t.Run("dir from settings", func(t *testing.T) {
		store, err := openStore(ctx, &settings, cli.StoreRequest{Backend: domain.StoreDir})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(store.Name(), "dir:"))
		assert.DirExists(t, settings.DirPath)
	})

	t.Run("git needs a path", func(t *testing.T) {
		_, err := openStore(ctx, &settings, cli.StoreRequest{Backend: domain.StoreGit})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("git from request path", func(t *testing.T) {
		store, err := openStore(ctx, &settings, cli.StoreRequest{Backend: domain.StoreGit, Path: t.TempDir()})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(store.Name(), "git:"))
	})

	t.Run("github needs a repository", func(t *testing.T) {
		_, err := openStore(ctx, &settings, cli.StoreRequest{Backend: domain.StoreGitHub, Token: "t"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("github needs a token", func(t *testing.T) {
		s := settings
		s.GitHub.Owner, s.GitHub.Repo = "acme", "kb"
		_, err := openStore(ctx, &s, cli.StoreRequest{Backend: domain.StoreGitHub})
		assert.ErrorIs(t, err, domain.ErrAuthRequired)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := openStore(ctx, &settings, cli.StoreRequest{Backend: "s3"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestNewComposer_UnknownStrategy(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.LinkStrategy = "levenshtein"

	_, err := newComposer(&settings)

	assert.Error(t, err)
}

func TestBootstrap_ComposesIntoDirectory(t *testing.T) {
	configDir := t.TempDir()
	dataDir := t.TempDir()
	outDir := t.TempDir()
	config := "[stats]\ndb_dir = '" + filepath.ToSlash(dataDir) + "'\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(config), 0600))

	ctx := context.Background()
	svc, err := bootstrap(ctx, configDir)
	require.NoError(t, err)
	require.NotNil(t, svc.Close)
	defer svc.Close()

	store, err := svc.OpenStore(ctx, cli.StoreRequest{Backend: domain.StoreDir, Path: outDir})
	require.NoError(t, err)

	publisher := svc.NewPublisher(cli.Workspace{Target: store})
	report, err := publisher.Publish(ctx, "## Block 1 — Pricing\n**Tags:** pricing\nRates.\n", driving.PublishOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Result.Stats.RegistryItems)
	assert.FileExists(t, filepath.Join(outDir, "registry.json"))
	assert.FileExists(t, filepath.Join(outDir, "search.json"))
	assert.FileExists(t, filepath.Join(outDir, "cross_links.json"))
	assert.FileExists(t, filepath.Join(outDir, "stats.json"))

	history, err := svc.Stats.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	findings, err := svc.NewLinter(store, "").Lint(ctx)
	require.NoError(t, err)
	for _, f := range findings {
		assert.NotEqual(t, "schema", f.Check, f.Message)
	}
}
