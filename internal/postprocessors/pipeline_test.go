package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// mockProcessor is a test processor that records its call and appends a finding.
type mockProcessor struct {
	name string
	err  error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, result *domain.ComposeResult) error {
	if m.err != nil {
		return m.err
	}
	result.Findings = append(result.Findings, domain.Finding{Check: m.name})
	return nil
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", p.Len())
	}
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(&mockProcessor{name: "test"})

	if p.Len() != 1 {
		t.Errorf("expected 1 processor, got %d", p.Len())
	}
	if names := p.Names(); len(names) != 1 || names[0] != "test" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestPipeline_Process_NilResult(t *testing.T) {
	p := NewPipeline()

	if err := p.Process(context.Background(), nil); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	p := NewPipeline()
	result := &domain.ComposeResult{}

	if err := p.Process(context.Background(), result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Findings) != 0 {
		t.Errorf("expected no findings, got %v", result.Findings)
	}
}

func TestPipeline_Process_RunsInOrder(t *testing.T) {
	p := NewPipeline(
		&mockProcessor{name: "first"},
		&mockProcessor{name: "second"},
	)
	result := &domain.ComposeResult{}

	if err := p.Process(context.Background(), result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(result.Findings))
	}
	if result.Findings[0].Check != "first" || result.Findings[1].Check != "second" {
		t.Errorf("processors ran out of order: %v", result.Findings)
	}
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	expectedErr := errors.New("processor failed")

	p := NewPipeline(
		&mockProcessor{name: "failing", err: expectedErr},
		&mockProcessor{name: "never"},
	)
	result := &domain.ComposeResult{}

	err := p.Process(context.Background(), result)
	if err == nil {
		t.Fatal("expected error from failing processor")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected wrapped error, got: %v", err)
	}
	if len(result.Findings) != 0 {
		t.Error("expected pipeline to stop at the failing processor")
	}
}

func TestPipeline_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(&mockProcessor{name: "first"})
	if err := p.Process(ctx, &domain.ComposeResult{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
