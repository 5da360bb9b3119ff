// Package cli implements the kb command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
	"github.com/udigitrentals/github-kb/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "kb",
	Short: "Compose and publish a Markdown knowledge base",
	Long: `kb turns Markdown knowledge blocks into a registry, a search corpus
and a cross-link graph, and publishes them to a directory, a local git
repository or a GitHub repository.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.kb)")
}

// StoreRequest selects the content store a command works against.
type StoreRequest struct {
	Backend domain.StoreBackend

	// Path overrides the configured location of a dir or git backend.
	Path string

	// Token authenticates the GitHub backend.
	Token string
}

// Workspace names the stores one publish run reads from and writes to.
type Workspace struct {
	Target driven.ContentStore

	// Source holds the prior artifacts. Nil means Target.
	Source driven.ContentStore

	// BasePath is the artifact directory inside both stores.
	BasePath string
}

// Services holds everything the commands call into.
type Services struct {
	Settings driving.SettingsService
	Stats    driving.StatsService

	OpenStore    func(ctx context.Context, req StoreRequest) (driven.ContentStore, error)
	NewPublisher func(ws Workspace) driving.PublishService
	NewLinter    func(store driven.ContentStore, basePath string) driving.LintService

	// Close releases resources held by the services. Optional.
	Close func() error
}

// Bootstrap builds the services once global flags are parsed.
type Bootstrap func(ctx context.Context, configDir string) (*Services, error)

var (
	settingsService driving.SettingsService
	statsService    driving.StatsService
	openStore       func(ctx context.Context, req StoreRequest) (driven.ContentStore, error)
	newPublisher    func(ws Workspace) driving.PublishService
	newLinter       func(store driven.ContentStore, basePath string) driving.LintService
	closeServices   func() error

	bootstrap Bootstrap
)

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	settingsService = s.Settings
	statsService = s.Stats
	openStore = s.OpenStore
	newPublisher = s.NewPublisher
	newLinter = s.NewLinter
	closeServices = s.Close
}

// Execute runs the root command. boot is called after flag parsing and
// before the selected command runs.
func Execute(ctx context.Context, boot Bootstrap) error {
	bootstrap = boot
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil {
		return nil
	}
	svc, err := bootstrap(cmd.Context(), configDir)
	if err != nil {
		return err
	}
	SetServices(svc)
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if closeServices == nil {
		return
	}
	if err := closeServices(); err != nil {
		logger.Warn("close services: %v", err)
	}
	closeServices = nil
}
