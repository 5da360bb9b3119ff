package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

var (
	lintDir     string
	lintBackend string
	lintJSON    bool
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check stored knowledge-base artifacts",
	Long: `Loads the stored artifacts and reports schema violations, pending
(broken) references, orphan documents, duplicate slugs, registry entries
without a search document and documents below lint.min_links.

Findings are warnings; lint never fails because of them.`,
	Args: cobra.NoArgs,
	RunE: runLint,
}

func init() {
	lintCmd.Flags().StringVar(&lintDir, "dir", "", "lint the artifacts in this directory instead of the configured store")
	lintCmd.Flags().StringVar(&lintBackend, "backend", "", "store backend: github, git or dir (default from config)")
	lintCmd.Flags().BoolVar(&lintJSON, "json", false, "output findings as JSON")
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || openStore == nil || newLinter == nil {
		return errors.New("lint service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	base := settings.BasePath
	req := StoreRequest{Backend: domain.StoreDir, Path: lintDir}
	if lintDir != "" {
		base = ""
	} else if req, err = storeRequest(cmd, settings, lintBackend); err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", req.Backend, err)
	}

	findings, err := newLinter(store, base).Lint(ctx)
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	if lintJSON {
		if findings == nil {
			findings = []domain.Finding{}
		}
		return outputJSON(cmd, findings)
	}
	printFindings(cmd, findings)
	return nil
}
