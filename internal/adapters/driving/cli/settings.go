package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage kb settings",
	Long: `View and change the store backend, sharding, link matching and other
options kept in ~/.kb/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one configuration key",
	Long: `Set one configuration key. Known keys:

  store.backend        github, git or dir
  store.base_path      artifact directory inside the store
  github.owner         repository owner
  github.repo          repository name
  github.branch        branch to commit to
  github.token_env     environment variable holding the token
  git.path             working tree of the git backend
  dir.path             root of the dir backend
  shard.target         target shard size, e.g. 3MiB
  shard.soft_cap       single-file limit before sharding, e.g. 5MiB
  links.strategy       substring or title
  stats.retention      snapshots kept in the stats history
  stats.db_dir         directory of the stats history database
  lint.min_links       minimum outgoing links per document (0 = off)
  publish.parallelism  concurrent writes for stores that allow them`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsBackendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Select the store backend",
	Long:  `Interactively select where publish writes the artifacts.`,
	RunE:  runSettingsBackend,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsBackendCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Store settings
	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Backend.Description())
	cmd.Printf("  Base path: %s\n", settings.BasePath)
	switch settings.Backend {
	case domain.StoreGitHub:
		cmd.Printf("  Repository: %s/%s\n", settings.GitHub.Owner, settings.GitHub.Repo)
		cmd.Printf("  Branch: %s\n", settings.GitHub.Branch)
		if token := os.Getenv(settings.GitHub.TokenEnv); token != "" {
			cmd.Printf("  Token: %s (from %s)\n", maskToken(token), settings.GitHub.TokenEnv)
		} else {
			cmd.Printf("  Token: (not set, %s is empty)\n", settings.GitHub.TokenEnv)
		}
	case domain.StoreGit:
		cmd.Printf("  Path: %s\n", settings.GitPath)
	case domain.StoreDir:
		cmd.Printf("  Path: %s\n", settings.DirPath)
	}
	cmd.Printf("  Parallel writes: %d\n", settings.Parallelism)
	cmd.Println()

	// Pipeline settings
	cmd.Println("[Pipeline]")
	cmd.Printf("  Shard target: %s\n", humanize.IBytes(uint64(settings.Shard.Target)))
	cmd.Printf("  Shard soft cap: %s\n", humanize.IBytes(uint64(settings.Shard.SoftCap)))
	cmd.Printf("  Link strategy: %s\n", settings.LinkStrategy)
	if settings.LintMinLinks > 0 {
		cmd.Printf("  Min links: %d\n", settings.LintMinLinks)
	} else {
		cmd.Printf("  Min links: off\n")
	}
	cmd.Println()

	// Stats settings
	cmd.Println("[Stats]")
	cmd.Printf("  Retention: %d snapshots\n", settings.StatsRetention)
	if settings.StatsDBDir != "" {
		cmd.Printf("  Database dir: %s\n", settings.StatsDBDir)
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'kb settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runSettingsBackend(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Store Backend")
	cmd.Println("--------------------")
	backends := []domain.StoreBackend{domain.StoreDir, domain.StoreGit, domain.StoreGitHub}
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice: ")
	idx := parseChoice(readLine(reader), len(backends), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}
	selected := backends[idx-1]

	if err := settingsService.Set("store.backend", selected.String()); err != nil {
		return fmt.Errorf("failed to set backend: %w", err)
	}
	cmd.Printf("Store backend set to: %s\n", selected.Description())

	// Check if additional configuration is needed
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("\nNote: %v\n", err)
		cmd.Println("Run 'kb settings set --help' to see the keys to configure.")
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
