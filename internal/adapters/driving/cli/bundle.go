package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/udigitrentals/github-kb/internal/bundle"
)

var bundleOut string

// now is the clock used for bundle names and manifests.
var now = time.Now

var bundleCmd = &cobra.Command{
	Use:   "bundle <dir>",
	Short: "Pack an artifact directory into a zip archive",
	Long: `Writes every file under <dir> into a zip archive together with a
bundle.json manifest listing each file and its SHA-256.`,
	Args: cobra.ExactArgs(1),
	RunE: runBundle,
}

func init() {
	bundleCmd.Flags().StringVarP(&bundleOut, "out", "o", "", "archive path (default kb_bundle_<timestamp>.zip)")
	rootCmd.AddCommand(bundleCmd)
}

func runBundle(cmd *cobra.Command, args []string) error {
	t := now()
	dst := bundleOut
	if dst == "" {
		dst = bundle.DefaultName(t)
	}

	manifest, err := bundle.WriteFile(cmd.Context(), dst, args[0], t)
	if err != nil {
		return fmt.Errorf("bundle failed: %w", err)
	}

	var total int64
	for _, f := range manifest.Files {
		total += f.Size
	}
	p := newPalette(cmd.OutOrStderr())
	cmd.Printf("%s %s (%d files, %s)\n",
		p.Success.Render("Wrote"), filepath.Clean(dst), len(manifest.Files), humanize.Bytes(uint64(total)))
	return nil
}
