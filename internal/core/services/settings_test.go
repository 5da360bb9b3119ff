package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udigitrentals/github-kb/internal/adapters/driven/storage/memory"
	"github.com/udigitrentals/github-kb/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyBackend, "github")
	_ = store.Set(KeyGitHubOwner, "acme")
	_ = store.Set(KeyGitHubRepo, "kb")
	_ = store.Set(KeyShardTarget, "1MiB")
	_ = store.Set(KeyShardSoftCap, 2<<20)
	_ = store.Set(KeyLinkStrategy, "title")
	_ = store.Set(KeyParallelism, int64(2))

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.StoreGitHub, settings.Backend)
	assert.Equal(t, "acme", settings.GitHub.Owner)
	assert.Equal(t, "kb", settings.GitHub.Repo)
	assert.Equal(t, domain.DefaultBranch, settings.GitHub.Branch)
	assert.Equal(t, 1<<20, settings.Shard.Target)
	assert.Equal(t, 2<<20, settings.Shard.SoftCap)
	assert.Equal(t, "title", settings.LinkStrategy)
	assert.Equal(t, 2, settings.Parallelism)
}

func TestSettingsService_Get_InvalidBackendReturnsDefault(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyBackend, "s3")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.StoreDir, settings.Backend)
}

func TestSettingsService_Get_BadSize(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyShardTarget, "lots")

	_, err := NewSettingsService(store).Get()

	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
		want    any
	}{
		{name: "backend", key: KeyBackend, value: "git", want: "git"},
		{name: "unknown backend", key: KeyBackend, value: "ftp", wantErr: domain.ErrInvalidInput},
		{name: "strategy", key: KeyLinkStrategy, value: "substring", want: "substring"},
		{name: "unknown strategy", key: KeyLinkStrategy, value: "fuzzy", wantErr: domain.ErrUnsupportedType},
		{name: "size", key: KeyShardTarget, value: "2 MB", want: "2 MB"},
		{name: "bad size", key: KeyShardSoftCap, value: "big", wantErr: domain.ErrInvalidInput},
		{name: "int", key: KeyLintMinLinks, value: " 3 ", want: 3},
		{name: "negative int", key: KeyParallelism, value: "-1", wantErr: domain.ErrInvalidInput},
		{name: "string", key: KeyGitHubOwner, value: "acme", want: "acme"},
		{name: "unknown key", key: "search.mode", value: "hybrid", wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			err := NewSettingsService(store).Set(tt.key, tt.value)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				_, ok := store.Get(tt.key)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{name: "defaults", values: nil},
		{name: "github without repo", values: map[string]any{KeyBackend: "github", KeyGitHubOwner: "acme"}, wantErr: true},
		{name: "github configured", values: map[string]any{KeyBackend: "github", KeyGitHubOwner: "acme", KeyGitHubRepo: "kb"}},
		{name: "git without path", values: map[string]any{KeyBackend: "git"}, wantErr: true},
		{name: "git with path", values: map[string]any{KeyBackend: "git", KeyGitPath: "/srv/kb"}},
		{name: "unknown strategy", values: map[string]any{KeyLinkStrategy: "fuzzy"}, wantErr: true},
		{name: "target above soft cap", values: map[string]any{KeyShardTarget: "8MiB", KeyShardSoftCap: "4MiB"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range tt.values {
				_ = store.Set(k, v)
			}

			err := NewSettingsService(store).Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPipelineConfig(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.LintMinLinks = 2

	cfg := PipelineConfig(&settings)

	assert.Equal(t, settings.Shard.Target, cfg["shard"]["target"])
	assert.Equal(t, settings.Shard.SoftCap, cfg["shard"]["soft_cap"])
	assert.Equal(t, 2, cfg["lint"]["min_links"])
}
