// Package kv holds the flat dot-notation value map shared by the config
// store adapters, with the loose type conversions TOML and JSON need.
package kv

import (
	"math"
	"sort"
	"strings"
)

// Values maps dot-notation keys ("shard.target") to decoded values.
type Values map[string]any

// String returns the value as a string, or "" when absent or not a string.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns the value as an int. TOML integers decode as int64 and JSON
// numbers as float64; fractional floats are rejected.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		if n > math.MaxInt {
			return 0
		}
		return int(n)
	case float64:
		if n != math.Trunc(n) {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

// Bool returns the value as a bool, or false when absent.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// StringSlice returns the value as a string slice, skipping non-string
// elements of a decoded array.
func (v Values) StringSlice(key string) []string {
	switch s := v[key].(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Flatten converts nested tables into dot-notation keys:
// {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(m map[string]any) Values {
	out := make(Values, len(m))
	flatten(out, m, "")
	return out
}

func flatten(out Values, m map[string]any, prefix string) {
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(out, nested, full)
			continue
		}
		out[full] = value
	}
}

// Nest is the inverse of Flatten. A key that is both a value and a
// table prefix keeps its value under the dotted name.
func (v Values) Nest() map[string]any {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	// A key sorts before every key it prefixes.
	sort.Strings(keys)

	out := make(map[string]any)
	for _, key := range keys {
		value := v[key]
		parts := strings.Split(key, ".")
		table := out
		ok := true
		for _, part := range parts[:len(parts)-1] {
			next, exists := table[part]
			if !exists {
				sub := make(map[string]any)
				table[part] = sub
				table = sub
				continue
			}
			sub, isTable := next.(map[string]any)
			if !isTable {
				ok = false
				break
			}
			table = sub
		}
		if !ok {
			out[key] = value
			continue
		}
		table[parts[len(parts)-1]] = value
	}
	return out
}
