package transcode

import (
	"github.com/invopop/jsonschema"

	"github.com/conduit-lang/docschema/internal/model"
)

type geoShapeInfo struct {
	name  string
	depth int
}

// geoShapes holds the GeoJSON type name and coordinate nesting of each shape
var geoShapes = map[model.Kind]geoShapeInfo{
	model.KindPoint:           {name: "Point", depth: 0},
	model.KindLineString:      {name: "LineString", depth: 1},
	model.KindMultiPoint:      {name: "MultiPoint", depth: 1},
	model.KindPolygon:         {name: "Polygon", depth: 2},
	model.KindMultiLineString: {name: "MultiLineString", depth: 2},
	model.KindMultiPolygon:    {name: "MultiPolygon", depth: 3},
}

// coordinatePair is a longitude, latitude array of exactly two numbers
func coordinatePair() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "array",
		PrefixItems: []*jsonschema.Schema{
			{Type: "number", Extras: map[string]any{"min_value": -180, "max_value": 180}},
			{Type: "number", Extras: map[string]any{"min_value": -90, "max_value": 90}},
		},
		Items: jsonschema.FalseSchema,
	}
}

// coordinates wraps the pair in depth levels of arrays
func coordinates(depth int) *jsonschema.Schema {
	s := coordinatePair()
	for i := 0; i < depth; i++ {
		s = &jsonschema.Schema{Type: "array", Items: s}
	}
	return s
}

// geoShape accepts either a GeoJSON object or its bare coordinates. Both
// branches carry the title.
func geoShape(title string, k model.Kind) *jsonschema.Schema {
	info := geoShapes[k]

	props := jsonschema.NewProperties()
	props.Set("type", &jsonschema.Schema{Type: "string", Enum: []any{info.name}})
	props.Set("coordinates", coordinates(info.depth))

	object := &jsonschema.Schema{
		Type:       "object",
		Title:      title,
		Properties: props,
	}

	bare := coordinates(info.depth)
	bare.Title = title

	return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{object, bare}}
}
