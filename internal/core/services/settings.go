package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
	"github.com/udigitrentals/github-kb/internal/crosslinks"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyBackend        = "store.backend"
	KeyBasePath       = "store.base_path"
	KeyGitHubOwner    = "github.owner"
	KeyGitHubRepo     = "github.repo"
	KeyGitHubBranch   = "github.branch"
	KeyGitHubTokenEnv = "github.token_env"
	KeyGitPath        = "git.path"
	KeyDirPath        = "dir.path"
	KeyShardTarget    = "shard.target"
	KeyShardSoftCap   = "shard.soft_cap"
	KeyLinkStrategy   = "links.strategy"
	KeyStatsRetention = "stats.retention"
	KeyStatsDBDir     = "stats.db_dir"
	KeyLintMinLinks   = "lint.min_links"
	KeyParallelism    = "publish.parallelism"
)

// SettingsService maps configuration keys onto typed settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings. Unset or invalid values
// fall back to their defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	target, err := s.getSize(KeyShardTarget, defaults.Shard.Target)
	if err != nil {
		return nil, err
	}
	softCap, err := s.getSize(KeyShardSoftCap, defaults.Shard.SoftCap)
	if err != nil {
		return nil, err
	}

	settings := &domain.Settings{
		Backend:  s.getBackend(defaults.Backend),
		BasePath: s.getString(KeyBasePath, defaults.BasePath),
		GitHub: domain.GitHubSettings{
			Owner:    s.configStore.GetString(KeyGitHubOwner),
			Repo:     s.configStore.GetString(KeyGitHubRepo),
			Branch:   s.getString(KeyGitHubBranch, defaults.GitHub.Branch),
			TokenEnv: s.getString(KeyGitHubTokenEnv, defaults.GitHub.TokenEnv),
		},
		GitPath: s.configStore.GetString(KeyGitPath),
		DirPath: s.getString(KeyDirPath, defaults.DirPath),
		Shard: domain.ShardSettings{
			Target:  target,
			SoftCap: softCap,
		},
		LinkStrategy:   s.getString(KeyLinkStrategy, defaults.LinkStrategy),
		StatsRetention: s.getInt(KeyStatsRetention, defaults.StatsRetention),
		StatsDBDir:     s.configStore.GetString(KeyStatsDBDir),
		LintMinLinks:   s.getInt(KeyLintMinLinks, defaults.LintMinLinks),
		Parallelism:    s.getInt(KeyParallelism, defaults.Parallelism),
	}

	return settings, nil
}

// Set validates value for key and persists it.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	var stored any = value
	switch key {
	case KeyBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("%w: store backend %q", domain.ErrInvalidInput, value)
		}
	case KeyLinkStrategy:
		if _, err := crosslinks.NewMatcher(value); err != nil {
			return err
		}
	case KeyShardTarget, KeyShardSoftCap:
		if _, err := humanize.ParseBytes(value); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
	case KeyStatsRetention, KeyLintMinLinks, KeyParallelism:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case KeyBasePath, KeyGitHubOwner, KeyGitHubRepo, KeyGitHubBranch, KeyGitHubTokenEnv,
		KeyGitPath, KeyDirPath, KeyStatsDBDir:
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks that the configured backend has what it needs.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch settings.Backend {
	case domain.StoreGitHub:
		if !settings.GitHub.IsConfigured() {
			return fmt.Errorf("%w: github backend needs %s and %s", domain.ErrInvalidInput, KeyGitHubOwner, KeyGitHubRepo)
		}
	case domain.StoreGit:
		if settings.GitPath == "" {
			return fmt.Errorf("%w: git backend needs %s", domain.ErrInvalidInput, KeyGitPath)
		}
	case domain.StoreDir:
		if settings.DirPath == "" {
			return fmt.Errorf("%w: dir backend needs %s", domain.ErrInvalidInput, KeyDirPath)
		}
	}

	if _, err := crosslinks.NewMatcher(settings.LinkStrategy); err != nil {
		return err
	}
	if settings.Shard.Target > settings.Shard.SoftCap {
		return fmt.Errorf("%w: %s (%s) exceeds %s (%s)", domain.ErrInvalidInput,
			KeyShardTarget, humanize.IBytes(uint64(settings.Shard.Target)),
			KeyShardSoftCap, humanize.IBytes(uint64(settings.Shard.SoftCap)))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	backend := domain.StoreBackend(s.configStore.GetString(KeyBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// getSize reads a byte size stored either as a number or as a
// human-readable string such as "3MiB".
func (s *SettingsService) getSize(key string, defaultVal int) (int, error) {
	if str := s.configStore.GetString(key); str != "" {
		n, err := humanize.ParseBytes(str)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
		return int(n), nil
	}
	return s.getInt(key, defaultVal), nil
}

// PipelineConfig maps settings onto the per-processor configuration
// consumed by postprocessors.Registry.BuildPipeline.
func PipelineConfig(settings *domain.Settings) map[string]map[string]any {
	return map[string]map[string]any{
		"shard": {
			"target":   settings.Shard.Target,
			"soft_cap": settings.Shard.SoftCap,
		},
		"lint": {
			"min_links": settings.LintMinLinks,
		},
	}
}
