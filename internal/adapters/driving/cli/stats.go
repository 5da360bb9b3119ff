package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

var (
	statsLimit int
	statsJSON  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Inspect knowledge-base statistics",
}

var statsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded stats snapshots",
	Long:  `Lists the stats snapshots recorded by publish runs, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runStatsHistory,
}

func init() {
	statsHistoryCmd.Flags().IntVarP(&statsLimit, "limit", "n", 10, "maximum number of snapshots (0 for all)")
	statsHistoryCmd.Flags().BoolVar(&statsJSON, "json", false, "output snapshots as JSON")
	statsCmd.AddCommand(statsHistoryCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStatsHistory(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	snapshots, err := statsService.History(cmd.Context(), statsLimit)
	if err != nil {
		return fmt.Errorf("failed to read stats history: %w", err)
	}

	if statsJSON {
		if snapshots == nil {
			snapshots = []domain.Stats{}
		}
		return outputJSON(cmd, snapshots)
	}

	p := newPalette(cmd.OutOrStderr())
	if len(snapshots) == 0 {
		cmd.Println(p.Muted.Render("No stats recorded yet."))
		return nil
	}

	cmd.Println(p.Title.Render(fmt.Sprintf("Stats history (%d)", len(snapshots))))
	for i, s := range snapshots {
		if i > 0 {
			cmd.Println()
		}
		cmd.Println(p.Label.Render(s.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")))
		printStats(cmd, p, s)
	}
	return nil
}
