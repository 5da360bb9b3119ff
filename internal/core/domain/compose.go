package domain

// ExistingState is the prior content of the three artifacts.
// Nil fields are treated as empty.
type ExistingState struct {
	Registry *Collection
	Search   *Collection
	Cross    *Graph
}

// ComposeInput is everything one compose run needs.
type ComposeInput struct {
	RawMarkdown string
	Existing    ExistingState
}

// ShardRef names one shard file in the manifest.
type ShardRef struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

// ShardManifest lists the shard files of a sharded search corpus.
type ShardManifest struct {
	Total  int        `json:"total"`
	Shards []ShardRef `json:"shards"`
}

// Shard is one bounded-size partition of the search corpus.
type Shard struct {
	File  string
	Items []Record

	// Size is the serialised JSON byte length of Items.
	Size int
}

// ComposeResult is the output of one compose run.
// Exactly one of Search or (SearchManifest, SearchShards) is set.
type ComposeResult struct {
	Registry       *Collection
	Search         *Collection
	SearchManifest *ShardManifest
	SearchShards   []Shard
	Cross          *Graph
	Stats          Stats
	ROI            []ROIEstimate
	Findings       []Finding
}

// Sharded reports whether the search corpus was split into shards.
func (r *ComposeResult) Sharded() bool {
	return r.SearchManifest != nil
}
