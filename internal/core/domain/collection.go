package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is a generic JSON object. Collections are merged as records so
// fields written by other tools survive a round trip.
type Record map[string]any

// ID returns the record's "id" field, or "" when absent.
func (r Record) ID() string {
	return r.String("id")
}

// String returns a string field, or "" when absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Strings returns a string-slice field, skipping non-string elements.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ToRecord converts a typed value into a Record through its JSON form.
func ToRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}

// FromRecord decodes a Record into a typed value.
func FromRecord(rec Record, v any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ShapeKind distinguishes the tolerated on-disk layouts of a collection.
type ShapeKind int

const (
	// ShapeBare is a top-level JSON array.
	ShapeBare ShapeKind = iota

	// ShapeEnveloped is an object exposing the array under Shape.Key.
	ShapeEnveloped
)

// Shape records how a collection arrived so it can be written back the same way.
type Shape struct {
	Kind ShapeKind
	Key  string
}

// Bare returns the bare-array shape.
func Bare() Shape {
	return Shape{Kind: ShapeBare}
}

// Enveloped returns the envelope shape with the sequence under key.
func Enveloped(key string) Shape {
	return Shape{Kind: ShapeEnveloped, Key: key}
}

// String returns a short description for logs.
func (s Shape) String() string {
	if s.Kind == ShapeEnveloped {
		return "enveloped(" + s.Key + ")"
	}
	return "bare"
}

// EnvelopeKeys are the conventional keys probed, in order, when a
// collection arrives as an object.
var EnvelopeKeys = []string{"items", "entries", "docs", "documents", "registry", "search", "data"}

// Collection is a registry or search collection normalised to a sequence.
type Collection struct {
	Shape Shape
	Items []Record

	// Extra holds the other top-level fields of an envelope.
	Extra map[string]json.RawMessage
}

// NewCollection returns an empty collection of the given shape.
func NewCollection(shape Shape) *Collection {
	return &Collection{Shape: shape, Items: []Record{}}
}

// DecodeCollection accepts empty input, null, a JSON array or an envelope
// object and normalises it to a Collection.
func DecodeCollection(data []byte) (*Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return NewCollection(Bare()), nil
	}

	switch trimmed[0] {
	case '[':
		var items []Record
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: decode array: %v", ErrInvalidInput, err)
		}
		return &Collection{Shape: Bare(), Items: nonNil(items)}, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("%w: decode object: %v", ErrInvalidInput, err)
		}
		for _, key := range EnvelopeKeys {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			var items []Record
			if err := json.Unmarshal(raw, &items); err != nil {
				continue
			}
			delete(obj, key)
			return &Collection{Shape: Enveloped(key), Items: nonNil(items), Extra: obj}, nil
		}
		return nil, fmt.Errorf("%w: object has none of the keys %v", ErrInvalidInput, EnvelopeKeys)
	default:
		return nil, fmt.Errorf("%w: collection must be an array or object", ErrInvalidInput)
	}
}

// MarshalJSON writes the collection back in its original shape.
func (c *Collection) MarshalJSON() ([]byte, error) {
	items := nonNil(c.Items)
	if c.Shape.Kind != ShapeEnveloped {
		return json.Marshal(items)
	}

	out := make(map[string]any, len(c.Extra)+1)
	for k, v := range c.Extra {
		out[k] = v
	}
	out[c.Shape.Key] = items
	return json.Marshal(out)
}

// WithItems returns a collection of the same shape and envelope fields
// holding items.
func (c *Collection) WithItems(items []Record) *Collection {
	return &Collection{Shape: c.Shape, Items: nonNil(items), Extra: c.Extra}
}

// Len returns the number of items.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

func nonNil(items []Record) []Record {
	if items == nil {
		return []Record{}
	}
	return items
}
