package main

import (
	"context"
	"fmt"
	"os"

	"github.com/udigitrentals/github-kb/internal/adapters/driven/config/file"
	"github.com/udigitrentals/github-kb/internal/adapters/driven/schema"
	"github.com/udigitrentals/github-kb/internal/adapters/driven/storage/dir"
	"github.com/udigitrentals/github-kb/internal/adapters/driven/storage/github"
	"github.com/udigitrentals/github-kb/internal/adapters/driven/storage/gitrepo"
	"github.com/udigitrentals/github-kb/internal/adapters/driven/storage/sqlite"
	"github.com/udigitrentals/github-kb/internal/adapters/driving/cli"
	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
	"github.com/udigitrentals/github-kb/internal/core/services"
	"github.com/udigitrentals/github-kb/internal/crosslinks"
	"github.com/udigitrentals/github-kb/internal/logger"
	"github.com/udigitrentals/github-kb/internal/normalisers/markdown"
	"github.com/udigitrentals/github-kb/internal/postprocessors"
)

// bootstrap builds the services from the configuration in configDir.
func bootstrap(ctx context.Context, configDir string) (*cli.Services, error) {
	// 1. Configuration
	if configDir == "" {
		var err error
		if configDir, err = file.DefaultDir(); err != nil {
			return nil, err
		}
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	// 2. Compose pipeline
	composer, err := newComposer(settings)
	if err != nil {
		return nil, err
	}

	// 3. Schema validation is warn-only, so a broken validator only
	// disables it.
	var validator driven.SchemaValidator
	if v, err := schema.NewValidator(); err != nil {
		logger.Warn("schema validation disabled: %v", err)
	} else {
		validator = v
	}

	// 4. Stats history
	var (
		history driven.StatsHistoryStore
		closeDB func() error
	)
	db, err := sqlite.NewStore(settings.StatsDBDir)
	if err != nil {
		logger.Warn("stats history disabled: %v", err)
	} else {
		history = db.StatsHistory(settings.StatsRetention)
		closeDB = db.Close
		logger.Debug("stats history at %s", db.Path())
	}

	return &cli.Services{
		Settings: settingsService,
		Stats:    services.NewStatsService(history),
		OpenStore: func(ctx context.Context, req cli.StoreRequest) (driven.ContentStore, error) {
			return openStore(ctx, settings, req)
		},
		NewPublisher: func(ws cli.Workspace) driving.PublishService {
			opts := []services.PublishOption{
				services.WithBasePath(ws.BasePath),
				services.WithParallelism(settings.Parallelism),
				services.WithHistory(history),
			}
			if validator != nil {
				opts = append(opts, services.WithValidator(validator))
			}
			if ws.Source != nil {
				opts = append(opts, services.WithSource(ws.Source, ws.BasePath))
			}
			return services.NewPublishService(composer, ws.Target, opts...)
		},
		NewLinter: func(store driven.ContentStore, base string) driving.LintService {
			return services.NewLintService(store, base, validator, settings.LintMinLinks)
		},
		Close: closeDB,
	}, nil
}

// newComposer assembles the compose service for settings.
func newComposer(settings *domain.Settings) (*services.ComposeService, error) {
	matcher, err := crosslinks.NewMatcher(settings.LinkStrategy)
	if err != nil {
		return nil, err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(postprocessors.DefaultOrder, services.PipelineConfig(settings))
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	return services.NewComposeService(markdown.New(), matcher, pipeline), nil
}

// openStore opens the content store named by req.
func openStore(ctx context.Context, settings *domain.Settings, req cli.StoreRequest) (driven.ContentStore, error) {
	switch req.Backend {
	case domain.StoreDir:
		root := req.Path
		if root == "" {
			root = settings.DirPath
		}
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", root, err)
		}
		return dir.New(root), nil

	case domain.StoreGit:
		root := req.Path
		if root == "" {
			root = settings.GitPath
		}
		if root == "" {
			return nil, fmt.Errorf("%w: git.path is not set", domain.ErrInvalidInput)
		}
		store, err := gitrepo.Open(root, "")
		if err != nil {
			return nil, err
		}
		return store, nil

	case domain.StoreGitHub:
		gh := settings.GitHub
		if !gh.IsConfigured() {
			return nil, fmt.Errorf("%w: github.owner and github.repo are required", domain.ErrInvalidInput)
		}
		store, err := github.NewStore(ctx, req.Token, gh.Owner, gh.Repo, gh.Branch)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", domain.ErrInvalidInput, req.Backend)
	}
}
