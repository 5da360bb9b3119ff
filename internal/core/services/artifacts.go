package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/postprocessors/shard"
)

// Artifact file names, relative to the store's base path.
const (
	RegistryFile = "registry.json"
	SearchFile   = "search.json"
	SearchDir    = "search"
	CrossFile    = "cross_links.json"
	StatsFile    = "stats.json"
)

// kindManifest marks the shard manifest, which has no schema.
const kindManifest = "manifest"

// shardFilePattern matches files the shard layout owns inside SearchDir.
var shardFilePattern = regexp.MustCompile(`^(search-\d+|manifest)\.json$`)

// Artifact is one serialised output file.
type Artifact struct {
	// Path is relative to the base path.
	Path string
	Kind string
	Data []byte
}

// storedFile is an artifact as read back from a store.
type storedFile struct {
	Path string
	Kind string
	Data []byte
}

// snapshot is the decoded content of the stored artifacts.
type snapshot struct {
	Existing domain.ExistingState
	Manifest *domain.ShardManifest
	Files    []storedFile
}

// artifactStore reads and lays out artifacts under a base path.
type artifactStore struct {
	store driven.ContentStore
	base  string
}

func (a artifactStore) path(name string) string {
	if a.base == "" {
		return name
	}
	return path.Join(a.base, name)
}

// read returns a file, or nil data and no error when it does not exist.
func (a artifactStore) read(ctx context.Context, name string) ([]byte, string, error) {
	data, sha, err := a.store.Read(ctx, a.path(name))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", name, err)
	}
	return data, sha, nil
}

// load reads every artifact. Missing files decode as empty collections;
// a sharded corpus is reassembled in manifest order.
func (a artifactStore) load(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{}

	data, _, err := a.read(ctx, RegistryFile)
	if err != nil {
		return nil, err
	}
	if snap.Existing.Registry, err = domain.DecodeCollection(data); err != nil {
		return nil, fmt.Errorf("%s: %w", RegistryFile, err)
	}
	snap.add(RegistryFile, driven.KindRegistry, data)

	if err := a.loadSearch(ctx, snap); err != nil {
		return nil, err
	}

	data, _, err = a.read(ctx, CrossFile)
	if err != nil {
		return nil, err
	}
	if snap.Existing.Cross, err = decodeGraph(data); err != nil {
		return nil, fmt.Errorf("%s: %w", CrossFile, err)
	}
	snap.add(CrossFile, driven.KindCross, data)

	data, _, err = a.read(ctx, StatsFile)
	if err != nil {
		return nil, err
	}
	snap.add(StatsFile, driven.KindStats, data)

	return snap, nil
}

func (a artifactStore) loadSearch(ctx context.Context, snap *snapshot) error {
	manifestName := path.Join(SearchDir, shard.ManifestFile)
	data, _, err := a.read(ctx, manifestName)
	if err != nil {
		return err
	}
	if data == nil {
		data, _, err = a.read(ctx, SearchFile)
		if err != nil {
			return err
		}
		if snap.Existing.Search, err = domain.DecodeCollection(data); err != nil {
			return fmt.Errorf("%s: %w", SearchFile, err)
		}
		snap.add(SearchFile, driven.KindSearch, data)
		return nil
	}

	var manifest domain.ShardManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("%s: %w: %v", manifestName, domain.ErrInvalidInput, err)
	}
	snap.Manifest = &manifest

	search := domain.NewCollection(domain.Bare())
	for _, ref := range manifest.Shards {
		name := path.Join(SearchDir, ref.File)
		data, _, err := a.read(ctx, name)
		if err != nil {
			return err
		}
		if data == nil {
			return fmt.Errorf("%s: %w: listed in manifest", name, domain.ErrNotFound)
		}
		part, err := domain.DecodeCollection(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		search.Items = append(search.Items, part.Items...)
		snap.add(name, driven.KindSearch, data)
	}
	snap.Existing.Search = search
	return nil
}

func (s *snapshot) add(name, kind string, data []byte) {
	if data != nil {
		s.Files = append(s.Files, storedFile{Path: name, Kind: kind, Data: data})
	}
}

// decodeGraph accepts empty input or null as an empty graph.
func decodeGraph(data []byte) (*domain.Graph, error) {
	trimmed := bytes.TrimSpace(data)
	g := domain.NewGraph()
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return g, nil
	}
	if err := json.Unmarshal(trimmed, g); err != nil {
		return nil, fmt.Errorf("%w: decode graph: %v", domain.ErrInvalidInput, err)
	}
	if g.Nodes == nil {
		g.Nodes = []domain.Node{}
	}
	if g.Edges == nil {
		g.Edges = []domain.Edge{}
	}
	return g, nil
}

// EncodeArtifacts serialises a compose result into its output files.
// Search payloads are compact so their size matches the shard plan; the
// others are indented. Shards come before the manifest so a reader that
// follows the manifest never sees a missing shard.
func EncodeArtifacts(result *domain.ComposeResult) ([]Artifact, error) {
	var out []Artifact

	add := func(name, kind string, v any, indent bool) error {
		data, err := encodeJSON(v, indent)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		out = append(out, Artifact{Path: name, Kind: kind, Data: data})
		return nil
	}

	if err := add(RegistryFile, driven.KindRegistry, result.Registry, true); err != nil {
		return nil, err
	}
	if result.Sharded() {
		for _, s := range result.SearchShards {
			items := s.Items
			if items == nil {
				items = []domain.Record{}
			}
			if err := add(path.Join(SearchDir, s.File), driven.KindSearch, items, false); err != nil {
				return nil, err
			}
		}
		if err := add(path.Join(SearchDir, shard.ManifestFile), kindManifest, result.SearchManifest, true); err != nil {
			return nil, err
		}
	} else {
		search := result.Search
		if search == nil {
			search = domain.NewCollection(domain.Bare())
		}
		if err := add(SearchFile, driven.KindSearch, search, false); err != nil {
			return nil, err
		}
	}
	if err := add(CrossFile, driven.KindCross, result.Cross, true); err != nil {
		return nil, err
	}
	if err := add(StatsFile, driven.KindStats, result.Stats, true); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeJSON(v any, indent bool) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return nil, err
		}
		data = buf.Bytes()
	}
	return append(data, '\n'), nil
}

// ownedBySearchLayout reports whether name, relative to the base path,
// is a file the search layouts write.
func ownedBySearchLayout(name string) bool {
	if name == SearchFile {
		return true
	}
	return path.Dir(name) == SearchDir && shardFilePattern.MatchString(path.Base(name))
}
