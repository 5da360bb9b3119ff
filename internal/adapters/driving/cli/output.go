package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
)

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func printFindings(cmd *cobra.Command, findings []domain.Finding) {
	p := newPalette(cmd.OutOrStderr())
	if len(findings) == 0 {
		cmd.Println(p.Success.Render("No findings."))
		return
	}

	cmd.Println(p.Title.Render(fmt.Sprintf("Findings (%d)", len(findings))))
	for _, f := range findings {
		severity := p.severity(f.Severity).Render(strings.ToUpper(string(f.Severity)))
		cmd.Printf("  %s %s %s: %s\n", severity, p.Label.Render("["+f.Check+"]"), f.Subject, f.Message)
	}
}

func printReport(cmd *cobra.Command, report *driving.PublishReport) {
	p := newPalette(cmd.OutOrStderr())
	result := report.Result

	title := "Published"
	if report.DryRun {
		title = "Dry run (nothing written)"
	}
	cmd.Println(p.Title.Render(title))

	printStats(cmd, p, result.Stats)
	if result.Sharded() {
		cmd.Printf("  %s %d shards\n", p.Label.Render("Search layout:"), len(result.SearchShards))
		for _, s := range result.SearchShards {
			cmd.Printf("    %s  %d docs  %s\n", s.File, len(s.Items), humanize.IBytes(uint64(s.Size)))
		}
	} else {
		cmd.Printf("  %s single file\n", p.Label.Render("Search layout:"))
	}

	if !report.DryRun {
		cmd.Println()
		if len(report.Written) == 0 && len(report.Deleted) == 0 {
			cmd.Println(p.Muted.Render("Everything up to date."))
		}
		for _, path := range report.Written {
			cmd.Printf("  %s %s\n", p.Success.Render("wrote"), path)
		}
		for _, path := range report.Deleted {
			cmd.Printf("  %s %s\n", p.Warning.Render("deleted"), path)
		}
	}

	cmd.Println()
	printFindings(cmd, result.Findings)
}

func printStats(cmd *cobra.Command, p palette, s domain.Stats) {
	cmd.Printf("  %s %d\n", p.Label.Render("Registry entries:"), s.RegistryItems)
	cmd.Printf("  %s %d\n", p.Label.Render("Search documents:"), s.SearchDocs)
	cmd.Printf("  %s %d nodes, %d edges (%d pending)\n",
		p.Label.Render("Graph:"), s.GraphNodes, s.GraphEdges, s.PendingEdges)
	cmd.Printf("  %s %d\n", p.Label.Render("Unique tags:"), s.UniqueTags)
	cmd.Printf("  %s %d\n", p.Label.Render("Orphans:"), s.Orphans)
	cmd.Printf("  %s %d blocks, %d min saved, $%.2f\n",
		p.Label.Render("ROI:"), s.ROI.BlocksAdded, s.ROI.SavedMinutes, s.ROI.ValueUSD)
}
