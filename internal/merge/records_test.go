package merge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

func TestUpsertRecords_AppendsNew(t *testing.T) {
	existing := domain.NewCollection(domain.Bare())
	existing.Items = append(existing.Items, domain.Record{"id": "a", "title": "A"})

	out := UpsertRecords(existing, domain.Record{"id": "b", "title": "B"})

	require.Equal(t, 2, out.Len())
	assert.Equal(t, "a", out.Items[0].ID())
	assert.Equal(t, "b", out.Items[1].ID())
	assert.Equal(t, 1, existing.Len())
}

func TestUpsertRecords_ShallowMergePreservesCreatedAt(t *testing.T) {
	existing := domain.NewCollection(domain.Bare())
	existing.Items = append(existing.Items,
		domain.Record{"id": "x", "note": "kept"},
		domain.Record{
			"id":         "a",
			"title":      "Old",
			"custom":     "from another tool",
			"created_at": "2025-01-01T00:00:00Z",
			"updated_at": "2025-01-01T00:00:00Z",
		},
	)

	out := UpsertRecords(existing, domain.Record{
		"id":         "a",
		"title":      "New",
		"created_at": "2026-03-01T12:00:00Z",
		"updated_at": "2026-03-01T12:00:00Z",
	})

	require.Equal(t, 2, out.Len())
	assert.Equal(t, domain.Record{"id": "x", "note": "kept"}, out.Items[0])
	assert.Equal(t, domain.Record{
		"id":         "a",
		"title":      "New",
		"custom":     "from another tool",
		"created_at": "2025-01-01T00:00:00Z",
		"updated_at": "2026-03-01T12:00:00Z",
	}, out.Items[1])

	// existing is untouched
	assert.Equal(t, "Old", existing.Items[1]["title"])
}

func TestUpsertRecords_Idempotent(t *testing.T) {
	rec := domain.Record{"id": "a", "title": "A", "updated_at": "t1"}

	once := UpsertRecords(nil, rec)
	twice := UpsertRecords(once, domain.Record{"id": "a", "title": "A2", "updated_at": "t2"})

	require.Equal(t, 1, twice.Len())
	assert.Equal(t, "A2", twice.Items[0]["title"])
	assert.Equal(t, "t2", twice.Items[0]["updated_at"])
}

func TestUpsertRecords_PreservesEnvelope(t *testing.T) {
	existing, err := domain.DecodeCollection([]byte(`{"version":2,"entries":[{"id":"a"}]}`))
	require.NoError(t, err)

	out := UpsertRecords(existing, domain.Record{"id": "b"})

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2,"entries":[{"id":"a"},{"id":"b"}]}`, string(data))
}

func TestRecords_WithoutID(t *testing.T) {
	existing := domain.NewCollection(domain.Bare())
	existing.Items = append(existing.Items, domain.Record{"title": "anonymous"})

	records := NewRecords(existing)
	assert.True(t, records.Upsert(domain.Record{"title": "also anonymous"}))
	assert.Equal(t, 2, records.Len())

	_, ok := records.Get("")
	assert.False(t, ok)
}

func TestRecords_DuplicateExistingIDs(t *testing.T) {
	existing := domain.NewCollection(domain.Bare())
	existing.Items = append(existing.Items,
		domain.Record{"id": "a", "n": 1.0},
		domain.Record{"id": "a", "n": 2.0},
	)

	records := NewRecords(existing)
	assert.False(t, records.Upsert(domain.Record{"id": "a", "n": 3.0}))

	items := records.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 3.0, items[0]["n"])
	assert.Equal(t, 2.0, items[1]["n"])
}
