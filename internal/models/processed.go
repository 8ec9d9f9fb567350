package models

import (
	"sort"
	"strings"
)

// ProcessedAsset is the display projection of a fetched record. Assets
// arrive from merged sources and may carry legacy field names
// (plant_type/source for type, site/poletical for address) or fields
// the schema does not know about, such as elevation. Everything the
// record carried is preserved in Fields; the struct fields are
// convenience copies of the identity and lifecycle values.
type ProcessedAsset struct {
	ID      string
	Name    string
	Status  string
	Deleted bool

	// Fields holds every field of the original record, unmodified,
	// including alternate-name and unknown fields.
	Fields map[string]any
}

// NormalizeAsset reconciles a raw record into a ProcessedAsset. It is
// pure: the input map is copied, never mutated, and no field is
// dropped.
func NormalizeAsset(raw map[string]any) ProcessedAsset {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[k] = v
	}

	p := ProcessedAsset{Fields: fields}
	if s, ok := raw["id"].(string); ok {
		p.ID = s
	}
	if s, ok := raw["name"].(string); ok {
		p.Name = s
	}
	if s, ok := raw["status"].(string); ok {
		p.Status = s
	}
	if b, ok := raw["deleted"].(bool); ok {
		p.Deleted = b
	}
	return p
}

// Display resolves a field for rendering: the canonical value if
// present and non-empty, otherwise each schema alternate in precedence
// order, otherwise "-".
func (p ProcessedAsset) Display(field string) string {
	names := []string{field}
	if fd, ok := SchemaField(field); ok {
		names = append(names, fd.Alternates...)
	}
	for _, name := range names {
		if v, ok := p.Fields[name]; ok && v != nil {
			if s := valueString(v); s != "" {
				return s
			}
		}
	}
	return "-"
}

// DedupKey is the composite identity used by the reconciliation
// pipeline: two records sharing an id but differing in name are kept
// distinct.
func (p ProcessedAsset) DedupKey() string {
	return p.ID + "-" + p.Name
}

// SearchValues enumerates the string form of every field value, schema
// fields first in schema order, then the remaining fields in sorted
// key order so repeated runs see an identical sequence.
func (p ProcessedAsset) SearchValues() []string {
	seen := make(map[string]bool, len(p.Fields))
	values := make([]string, 0, len(p.Fields))
	appendField := func(name string) {
		if seen[name] {
			return
		}
		if v, ok := p.Fields[name]; ok {
			seen[name] = true
			values = append(values, valueString(v))
		}
	}

	for _, fd := range AssetSchema {
		appendField(fd.Name)
		for _, alt := range fd.Alternates {
			appendField(alt)
		}
	}

	rest := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		appendField(name)
	}
	return values
}

// Matches reports whether the query, lowercased, is a substring of any
// field value. An empty query matches every record.
func (p ProcessedAsset) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, v := range p.SearchValues() {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}
