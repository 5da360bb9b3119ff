package postprocessors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/postprocessors/shard"
)

// registryMockProcessor is a simple mock for testing registry functionality.
type registryMockProcessor struct {
	name string
}

func (m *registryMockProcessor) Name() string { return m.name }
func (m *registryMockProcessor) Process(_ context.Context, _ *domain.ComposeResult) error {
	return nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_Build_Success(t *testing.T) {
	r := NewRegistry()

	r.Register("test", func(cfg map[string]any) (driven.PostProcessor, error) {
		name := "default"
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return &registryMockProcessor{name: name}, nil
	})

	proc, err := r.Build("test", map[string]any{"name": "custom"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "custom" {
		t.Errorf("expected name 'custom', got %q", proc.Name())
	}
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("unknown", nil)
	if !errors.Is(err, domain.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()

	if names := r.Names(); len(names) != 0 {
		t.Errorf("expected 0 names, got %d", len(names))
	}

	r.Register("beta", func(_ map[string]any) (driven.PostProcessor, error) {
		return &registryMockProcessor{name: "beta"}, nil
	})
	r.Register("alpha", func(_ map[string]any) (driven.PostProcessor, error) {
		return &registryMockProcessor{name: "alpha"}, nil
	})

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("expected [alpha beta], got %v", names)
	}
	if !r.Has("alpha") || r.Has("gamma") {
		t.Error("Has disagrees with registered names")
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	for _, name := range DefaultOrder {
		if !r.Has(name) {
			t.Errorf("expected %q to be registered after RegisterDefaults", name)
		}
	}
}

func TestBuildPipeline(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	p, err := r.BuildPipeline(DefaultOrder, map[string]map[string]any{
		"shard": {"target": "1KiB", "soft_cap": 4096},
		"stats": {"now": func() time.Time { return time.Unix(0, 0) }},
		"lint":  {"min_links": int64(2)},
	})
	if err != nil {
		t.Fatalf("BuildPipeline failed: %v", err)
	}
	if got := p.Names(); len(got) != 3 || got[0] != "stats" || got[2] != "shard" {
		t.Errorf("unexpected pipeline order %v", got)
	}

	if _, err := r.BuildPipeline([]string{"stats", "nope"}, nil); err == nil {
		t.Error("expected error for unknown processor")
	}
}

func TestBuildShard(t *testing.T) {
	proc, err := buildShard(map[string]any{"target": "1KiB", "soft_cap": float64(4096)})
	if err != nil {
		t.Fatalf("buildShard failed: %v", err)
	}
	planner := proc.(*shard.Planner)
	if planner.Target() != 1024 || planner.SoftCap() != 4096 {
		t.Errorf("unexpected sizes %d / %d", planner.Target(), planner.SoftCap())
	}

	proc, err = buildShard(nil)
	if err != nil {
		t.Fatalf("buildShard with nil config failed: %v", err)
	}
	if proc.(*shard.Planner).Target() != shard.DefaultTargetSize {
		t.Error("expected default target size")
	}

	if _, err := buildShard(map[string]any{"target": "lots"}); err == nil {
		t.Error("expected error for unparseable size")
	}
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      map[string]any
		key      string
		expected int
	}{
		{"int value", map[string]any{"size": 100}, "size", 100},
		{"int64 value", map[string]any{"size": int64(200)}, "size", 200},
		{"float64 value", map[string]any{"size": float64(300)}, "size", 300},
		{"string value", map[string]any{"size": "400"}, "size", 0},
		{"missing key", map[string]any{"other": 100}, "size", 0},
		{"nil config", nil, "size", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getIntFromConfig(tt.cfg, tt.key)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}
