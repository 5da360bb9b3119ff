package domain

// EdgeStatus reports whether a cross-link target resolved to a known node.
type EdgeStatus string

const (
	// EdgeOK means the target is the canonical path of a known document.
	EdgeOK EdgeStatus = "ok"

	// EdgePending means the target is raw text awaiting a future match.
	EdgePending EdgeStatus = "pending"
)

// EdgeTypeRef is the only edge type produced by the resolver.
const EdgeTypeRef = "ref"

// Node is a document in the cross-link graph, keyed by Path.
type Node struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Edge is a directed reference between documents.
type Edge struct {
	Source string     `json:"source"`
	Target string     `json:"target"`
	Type   string     `json:"type"`
	Status EdgeStatus `json:"status"`
}

// Key identifies an edge independent of its status.
func (e Edge) Key() string {
	return e.Source + "\x00" + e.Target + "\x00" + e.Type
}

// Graph is the cross-link graph artifact.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewGraph returns an empty graph whose slices marshal as [] rather than null.
func NewGraph() *Graph {
	return &Graph{Nodes: []Node{}, Edges: []Edge{}}
}
