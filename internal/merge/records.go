package merge

import (
	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// Fields the merge treats specially.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
)

// Records is an ordered record sequence indexed by identifier.
type Records struct {
	items []domain.Record
	pos   map[string]int
}

// NewRecords copies the items of c into an upsertable sequence.
// Records without an identifier are kept but can never be matched.
// When identifiers repeat, the first occurrence is the one updated.
func NewRecords(c *domain.Collection) *Records {
	r := &Records{pos: make(map[string]int)}
	if c == nil {
		return r
	}
	r.items = make([]domain.Record, 0, len(c.Items))
	for _, rec := range c.Items {
		if id := rec.ID(); id != "" {
			if _, ok := r.pos[id]; !ok {
				r.pos[id] = len(r.items)
			}
		}
		r.items = append(r.items, rec)
	}
	return r
}

// Upsert merges rec into the sequence. An existing record with the same
// identifier is shallow-merged in place with rec's fields winning, except
// that an existing created_at is kept. Otherwise rec is appended.
// It reports whether rec was appended.
func (r *Records) Upsert(rec domain.Record) bool {
	id := rec.ID()
	i, ok := r.pos[id]
	if id == "" || !ok {
		if id != "" {
			r.pos[id] = len(r.items)
		}
		r.items = append(r.items, rec.Clone())
		return true
	}

	existing := r.items[i]
	merged := existing.Clone()
	for k, v := range rec {
		merged[k] = v
	}
	if created, ok := existing[FieldCreatedAt]; ok && created != nil && created != "" {
		merged[FieldCreatedAt] = created
	}
	r.items[i] = merged
	return false
}

// Get returns the record with identifier id.
func (r *Records) Get(id string) (domain.Record, bool) {
	i, ok := r.pos[id]
	if !ok {
		return nil, false
	}
	return r.items[i], true
}

// Items returns the merged sequence.
func (r *Records) Items() []domain.Record {
	if r.items == nil {
		return []domain.Record{}
	}
	return r.items
}

// Len returns the number of records.
func (r *Records) Len() int {
	return len(r.items)
}

// UpsertRecords merges incoming into existing and returns a new collection
// in existing's shape. existing is not modified; a nil existing is bare.
func UpsertRecords(existing *domain.Collection, incoming ...domain.Record) *domain.Collection {
	records := NewRecords(existing)
	for _, rec := range incoming {
		records.Upsert(rec)
	}
	if existing == nil {
		existing = domain.NewCollection(domain.Bare())
	}
	return existing.WithItems(records.Items())
}
