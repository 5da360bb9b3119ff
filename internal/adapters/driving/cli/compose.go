package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
	"github.com/udigitrentals/github-kb/internal/logger"
)

var (
	composeExisting string
	composeOut      string
	composeWatch    bool
	composeDryRun   bool
)

var composeCmd = &cobra.Command{
	Use:   "compose <file.md>",
	Short: "Compose a Markdown file into local JSON artifacts",
	Long: `Composes the knowledge blocks in a Markdown file against the JSON
artifacts in --existing (default: --out) and writes registry.json,
search.json or search/, cross_links.json and stats.json to --out.

With --watch the file is recomposed every time it is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVar(&composeExisting, "existing", "", "directory holding the current artifacts (default --out)")
	composeCmd.Flags().StringVarP(&composeOut, "out", "o", ".", "directory to write artifacts to")
	composeCmd.Flags().BoolVarP(&composeWatch, "watch", "w", false, "recompose whenever the file changes")
	composeCmd.Flags().BoolVar(&composeDryRun, "dry-run", false, "compose and validate without writing")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	if openStore == nil || newPublisher == nil {
		return errors.New("compose service not configured")
	}

	ctx := cmd.Context()
	target, err := openStore(ctx, StoreRequest{Backend: domain.StoreDir, Path: composeOut})
	if err != nil {
		return fmt.Errorf("failed to open output directory: %w", err)
	}
	ws := Workspace{Target: target}
	if composeExisting != "" && composeExisting != composeOut {
		ws.Source, err = openStore(ctx, StoreRequest{Backend: domain.StoreDir, Path: composeExisting})
		if err != nil {
			return fmt.Errorf("failed to open existing directory: %w", err)
		}
	}
	publisher := newPublisher(ws)

	if err := composeFile(cmd, publisher, args[0]); err != nil {
		if !composeWatch {
			return err
		}
		logger.Error("%v", err)
	}
	if !composeWatch {
		return nil
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return watchFile(ctx, args[0], watchDebounce, func() {
		if err := composeFile(cmd, publisher, args[0]); err != nil {
			logger.Error("%v", err)
		}
	})
}

func composeFile(cmd *cobra.Command, publisher driving.PublishService, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	report, err := publisher.Publish(cmd.Context(), string(raw), driving.PublishOptions{DryRun: composeDryRun})
	if err != nil {
		return fmt.Errorf("compose failed: %w", err)
	}
	printReport(cmd, report)
	return nil
}
