package domain

const unknownDescription = "Unknown"

// StoreBackend identifies where composed artifacts are persisted.
type StoreBackend string

// Available store backends.
const (
	// StoreGitHub commits through the GitHub content API.
	StoreGitHub StoreBackend = "github"

	// StoreGit commits into a local git repository.
	StoreGit StoreBackend = "git"

	// StoreDir writes plain files into a directory.
	StoreDir StoreBackend = "dir"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreGitHub, StoreGit, StoreDir:
		return true
	default:
		return false
	}
}

// IsVersioned returns true if every write produces a commit.
func (b StoreBackend) IsVersioned() bool {
	return b == StoreGitHub || b == StoreGit
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreGitHub:
		return "GitHub repository (content API)"
	case StoreGit:
		return "Local git repository"
	case StoreDir:
		return "Local directory"
	default:
		return unknownDescription
	}
}

// Default settings values.
const (
	DefaultBasePath        = "data"
	DefaultBranch          = "main"
	DefaultTokenEnv        = "GITHUB_TOKEN"
	DefaultShardTarget     = 3 << 20
	DefaultShardSoftCap    = 5 << 20
	DefaultLinkStrategy    = "substring"
	DefaultStatsRetention  = 365
	DefaultPublishParallel = 4
)

// GitHubSettings configures the GitHub content-API backend.
type GitHubSettings struct {
	Owner    string
	Repo     string
	Branch   string
	TokenEnv string
}

// IsConfigured returns true if a repository is named.
func (g GitHubSettings) IsConfigured() bool {
	return g.Owner != "" && g.Repo != ""
}

// ShardSettings bounds the search corpus size, in serialised JSON bytes.
type ShardSettings struct {
	Target  int
	SoftCap int
}

// Settings is the typed application configuration.
type Settings struct {
	Backend  StoreBackend
	BasePath string
	GitHub   GitHubSettings

	// GitPath is the working tree of the local git backend.
	GitPath string

	// DirPath is the root of the directory backend.
	DirPath string

	Shard          ShardSettings
	LinkStrategy   string
	StatsRetention int
	StatsDBDir     string
	LintMinLinks   int
	Parallelism    int
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	return Settings{
		Backend:  StoreDir,
		BasePath: DefaultBasePath,
		GitHub: GitHubSettings{
			Branch:   DefaultBranch,
			TokenEnv: DefaultTokenEnv,
		},
		DirPath: ".",
		Shard: ShardSettings{
			Target:  DefaultShardTarget,
			SoftCap: DefaultShardSoftCap,
		},
		LinkStrategy:   DefaultLinkStrategy,
		StatsRetention: DefaultStatsRetention,
		Parallelism:    DefaultPublishParallel,
	}
}
