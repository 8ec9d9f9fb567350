package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldKind classifies a schema field for validation purposes.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindBool
	KindTime
)

// FieldDescriptor describes one grid-asset field: its canonical name,
// kind, whether it must be present when a record commits, and the
// alternate (legacy) names that may carry its value in older records,
// in precedence order.
type FieldDescriptor struct {
	Name       string
	Kind       FieldKind
	Required   bool
	Alternates []string
}

// AssetSchema is the single ordered field list consumed by the
// validation layer, the record normalizer and search-value
// enumeration. Order matches the console form layout.
var AssetSchema = []FieldDescriptor{
	{Name: "id", Kind: KindText},
	{Name: "name", Kind: KindText},
	{Name: "type", Kind: KindText, Required: true, Alternates: []string{"plant_type", "source"}},
	{Name: "status", Kind: KindText},
	{Name: "latitude", Kind: KindNumber},
	{Name: "longitude", Kind: KindNumber},
	{Name: "address", Kind: KindText, Required: true, Alternates: []string{"site", "poletical"}},
	{Name: "voltage", Kind: KindNumber, Required: true},
	{Name: "load", Kind: KindNumber},
	{Name: "capacity", Kind: KindNumber},
	{Name: "lastUpdate", Kind: KindTime},
	{Name: "site", Kind: KindText},
	{Name: "zone", Kind: KindText},
	{Name: "woreda", Kind: KindText},
	{Name: "category", Kind: KindText},
	{Name: "nameLink", Kind: KindText},
	{Name: "deleted", Kind: KindBool},
}

// SchemaField returns the descriptor for a canonical field name.
func SchemaField(name string) (FieldDescriptor, bool) {
	for _, fd := range AssetSchema {
		if fd.Name == name {
			return fd, true
		}
	}
	return FieldDescriptor{}, false
}

// ValidateFields checks the schema's required fields against a field
// map and returns per-field messages, empty when the record may
// commit. Required text must be non-blank; required numbers non-zero.
func ValidateFields(fields map[string]any) map[string]string {
	errs := make(map[string]string)
	for _, fd := range AssetSchema {
		if !fd.Required {
			continue
		}
		v := fields[fd.Name]
		switch fd.Kind {
		case KindNumber:
			if n, ok := toFloat(v); !ok || n == 0 {
				errs[fd.Name] = fmt.Sprintf("%s is required.", title(fd.Name))
			}
		default:
			s, _ := v.(string)
			if strings.TrimSpace(s) == "" {
				errs[fd.Name] = fmt.Sprintf("%s is required.", title(fd.Name))
			}
		}
	}
	return errs
}

// Fields flattens a persisted asset into the schema's field map.
func (a *GridAsset) Fields() map[string]any {
	return map[string]any{
		"id":         a.ID.String(),
		"name":       a.Name,
		"type":       a.Type,
		"status":     a.Status,
		"latitude":   a.Latitude,
		"longitude":  a.Longitude,
		"address":    a.Address,
		"voltage":    a.Voltage,
		"load":       a.Load,
		"capacity":   a.Capacity,
		"lastUpdate": a.LastUpdate,
		"site":       derefString(a.Site),
		"zone":       derefString(a.Zone),
		"woreda":     derefString(a.Woreda),
		"category":   derefString(a.Category),
		"nameLink":   derefString(a.NameLink),
		"deleted":    a.Deleted,
	}
}

// Fields flattens a create submission the same way, so the console
// edge and the server run the identical validation pass.
func (in AssetInput) Fields() map[string]any {
	return map[string]any{
		"name":       in.Name,
		"type":       in.Type,
		"status":     in.Status,
		"latitude":   in.Latitude,
		"longitude":  in.Longitude,
		"address":    in.Address,
		"voltage":    in.Voltage,
		"load":       in.Load,
		"capacity":   in.Capacity,
		"lastUpdate": in.LastUpdate,
		"site":       derefString(in.Site),
		"zone":       derefString(in.Zone),
		"woreda":     derefString(in.Woreda),
		"category":   derefString(in.Category),
		"nameLink":   derefString(in.NameLink),
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// toFloat accepts JSON numbers and the numeric strings the console
// form submits.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// valueString renders a field value the way the console's search
// matches it: JSON-ish, with times in RFC 3339.
func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", v)
	}
}
