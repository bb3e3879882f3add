package transcode

import (
	"context"

	"github.com/invopop/jsonschema"

	"github.com/conduit-lang/docschema/internal/model"
)

// listSchema resolves list, sorted_list and embedded_document_list fields
func (t *Transcoder) listSchema(ctx context.Context, w *walk, f model.Field, d *model.FieldDescriptor, strict bool) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{Type: "array"}
	if d.Required {
		one := uint64(1)
		s.MinItems = &one
	}
	if d.Default != nil {
		s.Default = defaultValue(d)
	}

	contained := d.Contained()
	if contained == nil || contained.Excluded {
		return s, nil
	}

	items, err := t.itemSchema(ctx, w, f, contained, strict)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return s, nil
}

// itemSchema resolves the element schema of a list
func (t *Transcoder) itemSchema(ctx context.Context, w *walk, f model.Field, d *model.FieldDescriptor, strict bool) (*jsonschema.Schema, error) {
	switch {
	case !d.Kind.Valid():
		return nil, &ClassificationError{Model: w.current(), Field: f.Name, Kind: d.Kind}
	case d.Kind == model.KindEmbeddedDocument:
		return t.embedded(ctx, w, d, strict)
	case d.Kind == model.KindGenericEmbeddedDocument:
		return &jsonschema.Schema{Type: "object"}, nil
	case d.Kind.IsReference():
		return &jsonschema.Schema{Type: "string"}, nil
	case d.Kind.IsGeo():
		return geoShape(Title(f.Name), d.Kind), nil
	case d.Kind.IsListLike():
		return t.listSchema(ctx, w, f, d, strict)
	case d.Kind.IsMapLike():
		return mapSchema(d), nil
	}

	typ, ok := jsonTypes[d.Kind]
	if !ok {
		typ = "string"
	}
	return &jsonschema.Schema{Type: typ}, nil
}

// mapSchema is an object whose values all share the contained kind's type
func mapSchema(d *model.FieldDescriptor) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "object"}

	contained := d.Contained()
	if contained == nil {
		return s
	}
	if typ, ok := jsonTypes[contained.Kind]; ok {
		s.PatternProperties = map[string]*jsonschema.Schema{
			".*": {Type: typ},
		}
	}
	return s
}
