package domain

import "time"

// Stats is a derived snapshot of the merged collections.
// It is recomputed on every run and never mutated in place.
type Stats struct {
	GeneratedAt   time.Time    `json:"generated_at"`
	RegistryItems int          `json:"registry_items"`
	SearchDocs    int          `json:"search_docs"`
	GraphNodes    int          `json:"graph_nodes"`
	GraphEdges    int          `json:"graph_edges"`
	UniqueTags    int          `json:"unique_tags"`
	PendingEdges  int          `json:"pending_edges"`
	Orphans       int          `json:"orphans"`
	Degrees       map[int]int  `json:"degree_distribution"`
	ROI           ROIAggregate `json:"roi"`
}
