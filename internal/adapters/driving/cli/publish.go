package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
)

var (
	publishBackend string
	publishDryRun  bool
	publishMessage string
	publishJSON    bool
)

var publishCmd = &cobra.Command{
	Use:   "publish <file.md>",
	Short: "Compose a Markdown file and publish the artifacts",
	Long: `Composes the knowledge blocks in a Markdown file against the artifacts
already stored in the configured backend and writes the result back.

Backends:
  dir    - plain files in a local directory
  git    - commits into a local git repository
  github - commits through the GitHub content API

Schema and lint findings are reported but never block the write.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishBackend, "backend", "", "store backend: github, git or dir (default from config)")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "compose and validate without writing")
	publishCmd.Flags().StringVarP(&publishMessage, "message", "m", "", "commit message for versioned backends")
	publishCmd.Flags().BoolVar(&publishJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	if settingsService == nil || openStore == nil || newPublisher == nil {
		return errors.New("publish service not configured")
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	req, err := storeRequest(cmd, settings, publishBackend)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", req.Backend, err)
	}

	publisher := newPublisher(Workspace{Target: store, BasePath: settings.BasePath})
	report, err := publisher.Publish(ctx, string(raw), driving.PublishOptions{
		DryRun:  publishDryRun,
		Message: publishMessage,
	})
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	if publishJSON {
		return outputJSON(cmd, publishSummary(report))
	}
	printReport(cmd, report)
	return nil
}

// publishSummaryJSON is the JSON form of a publish report.
type publishSummaryJSON struct {
	DryRun   bool             `json:"dry_run"`
	Sharded  bool             `json:"sharded"`
	Written  []string         `json:"written"`
	Deleted  []string         `json:"deleted"`
	Stats    domain.Stats     `json:"stats"`
	Findings []domain.Finding `json:"findings"`
}

func publishSummary(report *driving.PublishReport) publishSummaryJSON {
	out := publishSummaryJSON{
		DryRun:   report.DryRun,
		Sharded:  report.Result.Sharded(),
		Written:  report.Written,
		Deleted:  report.Deleted,
		Stats:    report.Result.Stats,
		Findings: report.Result.Findings,
	}
	if out.Written == nil {
		out.Written = []string{}
	}
	if out.Deleted == nil {
		out.Deleted = []string{}
	}
	if out.Findings == nil {
		out.Findings = []domain.Finding{}
	}
	return out
}

// storeRequest resolves the backend to open, applying a flag override
// and reading the GitHub token when needed.
func storeRequest(cmd *cobra.Command, settings *domain.Settings, override string) (StoreRequest, error) {
	backend := settings.Backend
	if override != "" {
		backend = domain.StoreBackend(override)
		if !backend.IsValid() {
			return StoreRequest{}, fmt.Errorf("%w: unknown backend %q", domain.ErrInvalidInput, override)
		}
	}

	req := StoreRequest{Backend: backend}
	if backend == domain.StoreGitHub {
		req.Token = resolveToken(cmd, settings.GitHub.TokenEnv)
	}
	return req, nil
}

// isTerminal reports whether stdin is interactive.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// resolveToken reads the token from the named environment variable and
// falls back to a prompt when stdin is a terminal.
func resolveToken(cmd *cobra.Command, envVar string) string {
	if envVar == "" {
		envVar = domain.DefaultTokenEnv
	}
	if token := strings.TrimSpace(os.Getenv(envVar)); token != "" {
		return token
	}
	if !isTerminal() {
		return ""
	}

	cmd.Printf("%s is not set. Enter a GitHub token: ", envVar)
	token := readPassword(cmd.InOrStdin())
	cmd.Println()
	return token
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	// Try to read without echo
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
