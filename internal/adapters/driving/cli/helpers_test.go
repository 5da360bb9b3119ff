package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/udigitrentals/github-kb/internal/adapters/driven/storage/memory"
	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
)

type fakeSettings struct {
	settings    domain.Settings
	set         map[string]string
	setErr      error
	validateErr error
}

func (f *fakeSettings) Get() (*domain.Settings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Set(key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.set[key] = value
	if key == "store.backend" {
		f.settings.Backend = domain.StoreBackend(value)
	}
	return nil
}

func (f *fakeSettings) Validate() error { return f.validateErr }

func (f *fakeSettings) GetDefaults() domain.Settings { return domain.DefaultSettings() }

type fakePublisher struct {
	ws     Workspace
	inputs []string
	opts   []driving.PublishOptions
	report *driving.PublishReport
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, raw string, opts driving.PublishOptions) (*driving.PublishReport, error) {
	f.inputs = append(f.inputs, raw)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	report := *f.report
	report.DryRun = opts.DryRun
	return &report, nil
}

func (f *fakePublisher) Load(context.Context) (*domain.ExistingState, error) {
	return &domain.ExistingState{}, nil
}

type fakeLinter struct {
	base     string
	findings []domain.Finding
	err      error
}

func (f *fakeLinter) Lint(context.Context) ([]domain.Finding, error) {
	return f.findings, f.err
}

type fakeStats struct {
	limit     int
	snapshots []domain.Stats
}

func (f *fakeStats) History(_ context.Context, limit int) ([]domain.Stats, error) {
	f.limit = limit
	return f.snapshots, nil
}

// testServices records what the commands asked for.
type testServices struct {
	settings  *fakeSettings
	publisher *fakePublisher
	linter    *fakeLinter
	stats     *fakeStats
	requests  []StoreRequest
	stores    map[string]*memory.ContentStore
	closed    int
}

func sampleReport() *driving.PublishReport {
	return &driving.PublishReport{
		Result: &domain.ComposeResult{
			Stats: domain.Stats{
				RegistryItems: 2,
				SearchDocs:    2,
				GraphNodes:    2,
				GraphEdges:    1,
				PendingEdges:  1,
				ROI:           domain.ROIAggregate{BlocksAdded: 2, SavedMinutes: 30, ValueUSD: 60},
			},
			Findings: []domain.Finding{{
				Check:    "pending-ref",
				Severity: domain.SeverityWarning,
				Subject:  "block-1",
				Message:  "unresolved link to \"Missing\"",
			}},
		},
		Written: []string{"data/registry.json", "data/search.json"},
	}
}

func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	resetFlags()

	ts := &testServices{
		settings: &fakeSettings{
			settings: domain.DefaultSettings(),
			set:      map[string]string{},
		},
		publisher: &fakePublisher{report: sampleReport()},
		linter:    &fakeLinter{},
		stats:     &fakeStats{},
		stores:    map[string]*memory.ContentStore{},
	}

	SetServices(&Services{
		Settings: ts.settings,
		Stats:    ts.stats,
		OpenStore: func(_ context.Context, req StoreRequest) (driven.ContentStore, error) {
			ts.requests = append(ts.requests, req)
			store := memory.NewContentStore()
			ts.stores[req.Path] = store
			return store, nil
		},
		NewPublisher: func(ws Workspace) driving.PublishService {
			ts.publisher.ws = ws
			return ts.publisher
		},
		NewLinter: func(_ driven.ContentStore, base string) driving.LintService {
			ts.linter.base = base
			return ts.linter
		},
		Close: func() error {
			ts.closed++
			return nil
		},
	})

	t.Cleanup(func() {
		SetServices(&Services{})
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return ts
}

func resetFlags() {
	verbose = false
	configDir = ""
	publishBackend, publishDryRun, publishMessage, publishJSON = "", false, "", false
	composeExisting, composeOut, composeWatch, composeDryRun = "", ".", false, false
	lintDir, lintBackend, lintJSON = "", "", false
	statsLimit, statsJSON = 10, false
	bundleOut = ""
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
