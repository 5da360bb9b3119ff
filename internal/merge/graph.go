package merge

import (
	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// Graph accumulates nodes and edges on top of an existing graph.
// Nodes are unique by path and edges by (source, target, type).
type Graph struct {
	nodes   []domain.Node
	edges   []domain.Edge
	nodePos map[string]int
	edgePos map[string]int
}

// NewGraph copies existing into a mergeable graph. Duplicates already
// present in existing collapse onto their first occurrence.
func NewGraph(existing *domain.Graph) *Graph {
	g := &Graph{
		nodes:   []domain.Node{},
		edges:   []domain.Edge{},
		nodePos: make(map[string]int),
		edgePos: make(map[string]int),
	}
	if existing != nil {
		g.AddNodes(existing.Nodes...)
		g.AddEdges(existing.Edges...)
	}
	return g
}

// AddNodes inserts nodes, replacing the fields of a node with the same path.
func (g *Graph) AddNodes(nodes ...domain.Node) {
	for _, n := range nodes {
		if n.Path == "" {
			continue
		}
		if i, ok := g.nodePos[n.Path]; ok {
			g.nodes[i] = n
			continue
		}
		g.nodePos[n.Path] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
}

// AddEdges appends edges. A repeated edge keeps its position and takes the
// newer status.
func (g *Graph) AddEdges(edges ...domain.Edge) {
	for _, e := range edges {
		key := e.Key()
		if i, ok := g.edgePos[key]; ok {
			g.edges[i].Status = e.Status
			continue
		}
		g.edgePos[key] = len(g.edges)
		g.edges = append(g.edges, e)
	}
}

// HasNode reports whether a node with path exists.
func (g *Graph) HasNode(path string) bool {
	_, ok := g.nodePos[path]
	return ok
}

// Graph returns the merged graph.
func (g *Graph) Graph() *domain.Graph {
	return &domain.Graph{Nodes: g.nodes, Edges: g.edges}
}

// MergeGraph merges nodes and edges into existing and returns a new graph.
func MergeGraph(existing *domain.Graph, nodes []domain.Node, edges []domain.Edge) *domain.Graph {
	g := NewGraph(existing)
	g.AddNodes(nodes...)
	g.AddEdges(edges...)
	return g.Graph()
}
