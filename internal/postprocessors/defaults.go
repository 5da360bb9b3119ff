package postprocessors

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/postprocessors/lint"
	"github.com/udigitrentals/github-kb/internal/postprocessors/shard"
	"github.com/udigitrentals/github-kb/internal/postprocessors/stats"
)

// DefaultOrder is the processor order of a compose run. Stats and lint
// read the unsharded search corpus, so sharding runs last.
var DefaultOrder = []string{"stats", "lint", "shard"}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("stats", buildStats)
	r.Register("lint", buildLint)
	r.Register("shard", buildShard)
}

// buildShard creates a shard planner from generic config.
// Supported config keys:
//   - target (int or size string such as "3MiB"): target shard size (default: 3MiB)
//   - soft_cap (int or size string): single-payload limit (default: 5MiB)
func buildShard(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []shard.Option

	if cfg != nil {
		target, err := getSizeFromConfig(cfg, "target")
		if err != nil {
			return nil, err
		}
		softCap, err := getSizeFromConfig(cfg, "soft_cap")
		if err != nil {
			return nil, err
		}
		opts = append(opts, shard.WithTargetSize(target), shard.WithSoftCap(softCap))
	}

	return shard.New(opts...), nil
}

// buildStats creates the stats processor.
// Supported config keys:
//   - now (func() time.Time): clock for generated_at
func buildStats(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []stats.Option
	if now, ok := cfg["now"].(func() time.Time); ok {
		opts = append(opts, stats.WithClock(now))
	}
	return stats.New(opts...), nil
}

// buildLint creates the lint processor.
// Supported config keys:
//   - min_links (int): minimum outgoing links per document (default: 0, off)
func buildLint(cfg map[string]any) (driven.PostProcessor, error) {
	return lint.New(lint.WithMinLinks(getIntFromConfig(cfg, "min_links"))), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getSizeFromConfig extracts a byte size given either as a number or as a
// human-readable string. Missing keys yield 0.
func getSizeFromConfig(cfg map[string]any, key string) (int, error) {
	if s, ok := cfg[key].(string); ok {
		n, err := humanize.ParseBytes(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return int(n), nil
	}
	return getIntFromConfig(cfg, key), nil
}
