// Package schema validates serialised artifacts against embedded JSON
// schemas. Violations become warning findings; nothing here blocks a write.
package schema

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
)

// CheckSchema is the Check of every finding this package reports.
const CheckSchema = "schema"

//go:embed schemas/*.json
var schemaFS embed.FS

// Ensure Validator implements the interface.
var _ driven.SchemaValidator = (*Validator)(nil)

var kindFiles = map[string]string{
	driven.KindRegistry: "registry.json",
	driven.KindSearch:   "search.json",
	driven.KindCross:    "cross.json",
	driven.KindStats:    "stats.json",
}

// Validator holds the compiled artifact schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles the embedded schemas.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	for _, name := range kindFiles {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(kindFiles))}
	for kind, name := range kindFiles {
		compiled, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[kind] = compiled
	}
	return v, nil
}

// Kinds returns the artifact kinds with a schema, sorted.
func (v *Validator) Kinds() []string {
	kinds := make([]string, 0, len(v.schemas))
	for kind := range v.schemas {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Validate checks payload against the schema for kind. Registry and
// search collections may arrive enveloped; the item array is validated
// in place.
func (v *Validator) Validate(kind string, payload []byte) []domain.Finding {
	compiled, ok := v.schemas[kind]
	if !ok {
		return []domain.Finding{finding("#", fmt.Sprintf("no schema for artifact kind %q", kind))}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return []domain.Finding{finding("#", "invalid JSON: "+err.Error())}
	}

	prefix := ""
	if kind == driven.KindRegistry || kind == driven.KindSearch {
		doc, prefix = unwrapEnvelope(doc)
	}

	err = compiled.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []domain.Finding{finding("#", err.Error())}
	}

	var findings []domain.Finding
	for _, leaf := range leaves(verr) {
		findings = append(findings, finding(prefix+leaf.InstanceLocation, strings.TrimSpace(leaf.Message)))
	}
	return findings
}

// unwrapEnvelope returns the item array of an enveloped collection and
// its location, or doc unchanged.
func unwrapEnvelope(doc any) (any, string) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return doc, ""
	}
	for _, key := range domain.EnvelopeKeys {
		if items, ok := obj[key].([]any); ok {
			return items, "/" + key
		}
	}
	return doc, ""
}

func leaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}

func finding(location, message string) domain.Finding {
	if location == "" {
		location = "#"
	}
	return domain.Finding{
		Check:    CheckSchema,
		Severity: domain.SeverityWarning,
		Subject:  location,
		Message:  message,
	}
}
