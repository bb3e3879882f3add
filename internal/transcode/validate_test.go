package transcode

import (
	"bytes"
	"context"
	"strings"
	"testing"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/docschema/internal/model"
)

const examplePayload = `{
	"boolean_field": true,
	"datetime_field": "2018-11-13 20:20:39",
	"date_field": "2018-11-13",
	"decimal_field": 1.1,
	"dict_field": {"A": 1},
	"dynamic_field": "example",
	"email_field": "example@example.com",
	"embedded_document_field": {"embedded_field": "A"},
	"enum_field": "1",
	"float_field": 1.1,
	"generic_embedded_document_field": {"embedded_field": "A", "_cls": "ExampleEmbeddedDocument"},
	"geo_point_field": [1, 2],
	"int_field": 1,
	"line_string_field": {"type": "LineString", "coordinates": [[1, 2], [3, 4], [5, 6], [1, 2]]},
	"list_field": ["1", "2"],
	"long_field": 1,
	"map_field": {"A": 1},
	"multi_line_string_field": {"type": "MultiLineString", "coordinates": [[[1, 2], [3, 4]], [[7, 8], [9, 10]]]},
	"multi_point_field": [[1, 2], [3, 4]],
	"multi_polygon_field": [[[[1, 2], [3, 4], [5, 6], [1, 2]]], [[[7, 8], [9, 10], [11, 12], [7, 8]]]],
	"object_ID_field": "507f191e810c19729de860ea",
	"point_field": {"type": "Point", "coordinates": [1, 2]},
	"polygon_field": {"type": "Polygon", "coordinates": [[[1, 2], [3, 4], [5, 6], [1, 2]]]},
	"sequence_field": 1,
	"sorted_list_field": [1, 2, 3],
	"string_field": "1",
	"URL_field": "https://localhost:5000/api/",
	"UUID_field": "3e4666bf-d5e5-4aa7-b8ce-cefe41c7568a"
}`

// compileExample compiles the ExampleDocument schema with the embedded
// document list left out, since a resource may declare each $id only once
func compileExample(t *testing.T, strict bool) *sjsonschema.Schema {
	t.Helper()

	registry := newExampleRegistry(t)
	m, ok := registry.Get("ExampleDocument")
	require.True(t, ok)

	payloadModel := model.NewDocumentModel(m.Name)
	for _, f := range m.Fields {
		if f.Name == "embedded_document_list_field" {
			continue
		}
		payloadModel.AddField(f.Name, f.Descriptor)
	}

	s, err := New(registry).Transcode(context.Background(), payloadModel, strict)
	require.NoError(t, err)

	doc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(mustMarshal(t, s)))
	require.NoError(t, err)

	const url = "https://docschema.local/schemas/ExampleDocument.json"
	c := sjsonschema.NewCompiler()
	c.DefaultDraft(sjsonschema.Draft2020)
	require.NoError(t, c.AddResource(url, doc))

	compiled, err := c.Compile(url)
	require.NoError(t, err)
	return compiled
}

func instance(t *testing.T, payload string) any {
	t.Helper()

	v, err := sjsonschema.UnmarshalJSON(strings.NewReader(payload))
	require.NoError(t, err)
	return v
}

func TestGeneratedSchemaValidatesPayload(t *testing.T) {
	sch := compileExample(t, true)
	assert.NoError(t, sch.Validate(instance(t, examplePayload)))
}

func TestGeneratedSchemaRejectsInvalidPayloads(t *testing.T) {
	sch := compileExample(t, true)

	tests := []struct {
		name    string
		payload string
	}{
		{"missing required field", `{"list_field": ["1"]}`},
		{"empty required list", `{"boolean_field": true, "list_field": []}`},
		{"unknown property", `{"boolean_field": true, "list_field": ["1"], "nope": 1}`},
		{"int above maximum", `{"boolean_field": true, "list_field": ["1"], "int_field": 6}`},
		{"string not in choices", `{"boolean_field": true, "list_field": ["1"], "string_field": "9"}`},
		{"three coordinates", `{"boolean_field": true, "list_field": ["1"], "point_field": [1, 2, 3]}`},
		{"wrong geometry name", `{"boolean_field": true, "list_field": ["1"], "point_field": {"type": "Polygon", "coordinates": [1, 2]}}`},
		{"map value type", `{"boolean_field": true, "list_field": ["1"], "map_field": {"A": "x"}}`},
		{"enum value", `{"boolean_field": true, "list_field": ["1"], "enum_field": "4"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, sch.Validate(instance(t, tt.payload)))
		})
	}
}

func TestLaxSchemaAcceptsPartialPayload(t *testing.T) {
	sch := compileExample(t, false)
	assert.NoError(t, sch.Validate(instance(t, `{"int_field": 3}`)))
}
