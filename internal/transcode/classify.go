package transcode

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/invopop/jsonschema"

	"github.com/conduit-lang/docschema/internal/model"
)

// jsonTypes maps each kind to its JSON type. Kinds absent from the table
// (dynamic, containers, embedded and geometry shapes) get their type elsewhere
// or not at all.
var jsonTypes = map[model.Kind]string{
	model.KindBinary:               "string",
	model.KindBoolean:              "boolean",
	model.KindCachedReference:      "string",
	model.KindComplexDateTime:      "string",
	model.KindDate:                 "string",
	model.KindDateTime:             "string",
	model.KindDecimal128:           "number",
	model.KindDecimal:              "number",
	model.KindDict:                 "object",
	model.KindEmail:                "string",
	model.KindEnum:                 "string",
	model.KindFloat:                "number",
	model.KindGenericReference:     "string",
	model.KindGenericLazyReference: "string",
	model.KindGeoPoint:             "array",
	model.KindInt:                  "integer",
	model.KindLong:                 "integer",
	model.KindMap:                  "object",
	model.KindObjectID:             "string",
	model.KindReference:            "string",
	model.KindLazyReference:        "string",
	model.KindSequence:             "integer",
	model.KindString:               "string",
	model.KindURL:                  "string",
	model.KindUUID:                 "string",
}

// formats holds the string formats with a canonical representation
var formats = map[model.Kind]string{
	model.KindUUID:            "uuid",
	model.KindEmail:           "email",
	model.KindDate:            "date",
	model.KindDateTime:        "date-time",
	model.KindComplexDateTime: "date-time",
	model.KindURL:             "uri",
}

// classify builds the subtree of a scalar, reference, map or geo_point field
// and projects its constraints onto it
func classify(d *model.FieldDescriptor) *jsonschema.Schema {
	var s *jsonschema.Schema
	switch d.Kind {
	case model.KindGeoPoint:
		s = coordinatePair()
	case model.KindMap:
		s = mapSchema(d)
	default:
		s = &jsonschema.Schema{}
		if t, ok := jsonTypes[d.Kind]; ok {
			s.Type = t
		}
	}

	if f, ok := formats[d.Kind]; ok {
		s.Format = f
	}
	if d.Kind == model.KindEnum {
		s.Enum = symbolValues(d.Symbols)
	}

	project(s, d)
	return s
}

// project copies the descriptor constraints onto s under their schema names
func project(s *jsonschema.Schema, d *model.FieldDescriptor) {
	if d.Default != nil {
		s.Default = defaultValue(d)
	}

	if d.MinValue != nil {
		s.Minimum = number(*d.MinValue)
	}
	if d.MaxValue != nil {
		s.Maximum = number(*d.MaxValue)
	}
	if d.MinLength != nil && *d.MinLength >= 0 {
		v := uint64(*d.MinLength)
		s.MinLength = &v
	}
	if d.MaxLength != nil && *d.MaxLength >= 0 {
		v := uint64(*d.MaxLength)
		s.MaxLength = &v
	}

	// Symbolic enumerations already carry their values
	if d.Kind != model.KindEnum && len(d.Choices) > 0 {
		s.Enum = append([]any(nil), d.Choices...)
	}

	// url_regex is applied last and wins when both are set
	if p, ok := patternSource(d.Regex); ok {
		s.Pattern = p
	}
	if p, ok := patternSource(d.URLRegex); ok {
		s.Pattern = p
	}
}

func symbolValues(symbols []model.Symbol) []any {
	values := make([]any, 0, len(symbols))
	for _, sym := range symbols {
		values = append(values, sym.Value)
	}
	return values
}

// defaultValue returns the default to publish. A factory default is replaced
// by an empty array for list-like kinds and an empty object otherwise.
func defaultValue(d *model.FieldDescriptor) any {
	if !d.HasCallableDefault() {
		return d.Default
	}
	if d.Kind.IsListLike() {
		return []any{}
	}
	return map[string]any{}
}

func number(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
}

// patternSource returns the source text of a string or compiled regex
func patternSource(v any) (string, bool) {
	switch p := v.(type) {
	case nil:
		return "", false
	case string:
		return p, p != ""
	case *regexp.Regexp:
		if p == nil {
			return "", false
		}
		return p.String(), true
	case fmt.Stringer:
		return p.String(), true
	}
	return "", false
}
