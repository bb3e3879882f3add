package transcode

import (
	"regexp"
	"testing"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/docschema/internal/model"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func desc(kind model.Kind) *model.FieldDescriptor {
	return &model.FieldDescriptor{Kind: kind}
}

// exampleModels is a model set that covers every kind of the taxonomy
func exampleModels() []*model.DocumentModel {
	base := model.NewDocumentModel("ExampleBaseDocument").
		AddField("base_field", desc(model.KindString))

	embedded := model.NewDocumentModel("ExampleEmbeddedDocument").
		AddField("embedded_field", desc(model.KindString))

	dynamicEmbedded := model.NewDocumentModel("ExampleDynamicEmbeddedDocument").
		AddField("embedded_field", desc(model.KindString)).
		AddField("multi_embedded_field", &model.FieldDescriptor{Kind: model.KindEmbeddedDocument, Target: "ExampleEmbeddedDocument"})
	dynamicEmbedded.Dynamic = true

	dynamic := model.NewDocumentModel("ExampleDynamicDocument").
		AddField("field", desc(model.KindString))
	dynamic.Dynamic = true

	referenced := model.NewDocumentModel("ExampleReferencedDocument")

	inherited := model.NewDocumentModel("ExampleDocumentInherited").
		AddField("field", desc(model.KindString))
	inherited.Base = "ExampleBaseDocument"

	custom := model.NewDocumentModel("ExampleDocumentWithCustomSchema")
	custom.Override = &jsonschema.Schema{
		ID:                   "/schemas/ExampleDocumentWithCustomSchema",
		Type:                 "object",
		Title:                "Example Document With Custom Schema",
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}

	doc := model.NewDocumentModel("ExampleDocument").
		AddField("binary_field", desc(model.KindBinary)).
		AddField("boolean_field", &model.FieldDescriptor{Kind: model.KindBoolean, Required: true}).
		AddField("cached_reference_field", &model.FieldDescriptor{Kind: model.KindCachedReference, Target: "ExampleReferencedDocument"}).
		AddField("complex_datetime_field", desc(model.KindComplexDateTime)).
		AddField("datetime_field", desc(model.KindDateTime)).
		AddField("date_field", desc(model.KindDate)).
		AddField("decimal_field", desc(model.KindDecimal)).
		AddField("dict_field", desc(model.KindDict)).
		AddField("dynamic_field", &model.FieldDescriptor{Kind: model.KindDynamic, Default: 1}).
		AddField("email_field", desc(model.KindEmail)).
		AddField("embedded_document_field", &model.FieldDescriptor{Kind: model.KindEmbeddedDocument, Target: "ExampleEmbeddedDocument"}).
		AddField("embedded_document_list_field", &model.FieldDescriptor{Kind: model.KindEmbeddedDocumentList, Target: "ExampleEmbeddedDocument"}).
		AddField("enum_field", &model.FieldDescriptor{Kind: model.KindEnum, Symbols: []model.Symbol{
			{Name: "A", Value: "1"}, {Name: "B", Value: "2"}, {Name: "C", Value: "3"},
		}}).
		AddField("float_field", desc(model.KindFloat)).
		AddField("generic_embedded_document_field", desc(model.KindGenericEmbeddedDocument)).
		AddField("generic_lazy_reference_field", desc(model.KindGenericLazyReference)).
		AddField("generic_reference_field", desc(model.KindGenericReference)).
		AddField("geo_point_field", desc(model.KindGeoPoint)).
		AddField("int_field", &model.FieldDescriptor{Kind: model.KindInt, MinValue: floatPtr(0), MaxValue: floatPtr(5)}).
		AddField("lazy_reference_field", &model.FieldDescriptor{Kind: model.KindLazyReference, Target: "ExampleReferencedDocument"}).
		AddField("line_string_field", desc(model.KindLineString)).
		AddField("list_field", &model.FieldDescriptor{Kind: model.KindList, Required: true, Default: []any{"1"}, Field: desc(model.KindString)}).
		AddField("long_field", desc(model.KindLong)).
		AddField("map_field", &model.FieldDescriptor{Kind: model.KindMap, Field: desc(model.KindInt)}).
		AddField("multi_line_string_field", desc(model.KindMultiLineString)).
		AddField("multi_point_field", desc(model.KindMultiPoint)).
		AddField("multi_polygon_field", desc(model.KindMultiPolygon)).
		AddField("object_ID_field", desc(model.KindObjectID)).
		AddField("point_field", &model.FieldDescriptor{Kind: model.KindPoint, Default: []any{0, 0}}).
		AddField("polygon_field", desc(model.KindPolygon)).
		AddField("reference_field", &model.FieldDescriptor{Kind: model.KindReference, Target: "ExampleReferencedDocument"}).
		AddField("sequence_field", desc(model.KindSequence)).
		AddField("sorted_list_field", &model.FieldDescriptor{Kind: model.KindSortedList, Field: desc(model.KindInt)}).
		AddField("string_field", &model.FieldDescriptor{
			Kind:      model.KindString,
			Default:   "1",
			MinLength: intPtr(1),
			MaxLength: intPtr(2),
			Choices:   []any{"1", "2", "3"},
			Regex:     regexp.MustCompile(`.*`),
			Unique:    true,
		}).
		AddField("string_field_excluded", &model.FieldDescriptor{Kind: model.KindString, Excluded: true}).
		AddField("URL_field", desc(model.KindURL)).
		AddField("UUID_field", desc(model.KindUUID))

	return []*model.DocumentModel{base, embedded, dynamicEmbedded, dynamic, referenced, inherited, custom, doc}
}

func newExampleRegistry(t *testing.T) *model.Registry {
	t.Helper()

	registry := model.NewRegistry()
	require.NoError(t, registry.RegisterAll(exampleModels()...))
	require.NoError(t, registry.ValidateAll())
	return registry
}

func newExampleTranscoder(t *testing.T) (*Transcoder, *model.Registry) {
	t.Helper()

	registry := newExampleRegistry(t)
	return New(registry), registry
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// decoded marshals s and decodes it into plain maps and slices
func decoded(t *testing.T, s *jsonschema.Schema) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(mustMarshal(t, s), &out))
	return out
}

func property(t *testing.T, s *jsonschema.Schema, name string) *jsonschema.Schema {
	t.Helper()

	require.NotNil(t, s.Properties)
	prop, ok := s.Properties.Get(name)
	require.True(t, ok, "property %s not found", name)
	return prop
}

func propertyNames(s *jsonschema.Schema) []string {
	var names []string
	if s.Properties == nil {
		return names
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}
