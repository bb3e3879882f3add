// Package transcode turns document models into JSON Schema documents.
//
// A Transcoder walks a model's declared fields in order, classifies each one
// by kind and assembles an object schema with ordered properties. Embedded
// models are inlined recursively and a base model's properties are merged
// under the subclass's. Transcoding is a pure function of the model graph and
// the strict flag; strict mode adds the list of required property names.
package transcode

import (
	"context"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"go.uber.org/zap"

	"github.com/conduit-lang/docschema/internal/model"
)

// SchemaIDPrefix prefixes the $id of every generated document schema
const SchemaIDPrefix = "/schemas/"

// reservedNames never become properties
var reservedNames = map[string]bool{
	"id":                      true,
	"objects":                 true,
	"DoesNotExist":            true,
	"MultipleObjectsReturned": true,
}

// Transcoder generates schemas for models resolved through a Resolver.
// It holds no per-call state and is safe for concurrent use.
type Transcoder struct {
	resolver model.Resolver
	logger   *zap.Logger
}

// Option configures a Transcoder
type Option func(*Transcoder)

// WithLogger sets the logger used for degraded lookups
func WithLogger(logger *zap.Logger) Option {
	return func(t *Transcoder) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a Transcoder. A nil resolver resolves nothing, so embedded
// documents and bases degrade to empty schemas.
func New(resolver model.Resolver, opts ...Option) *Transcoder {
	t := &Transcoder{
		resolver: resolver,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcode generates the schema of m. In strict mode the document lists its
// required properties.
func (t *Transcoder) Transcode(ctx context.Context, m *model.DocumentModel, strict bool) (*jsonschema.Schema, error) {
	if m == nil {
		return nil, fmt.Errorf("transcode: model cannot be nil")
	}
	return t.document(ctx, &walk{}, m, strict)
}

// TranscodeByName resolves name and transcodes it
func (t *Transcoder) TranscodeByName(ctx context.Context, name string, strict bool) (*jsonschema.Schema, error) {
	m, ok := t.resolve(name)
	if !ok {
		return nil, fmt.Errorf("transcode: %w: %s", ErrModelNotFound, name)
	}
	return t.Transcode(ctx, m, strict)
}

func (t *Transcoder) resolve(name string) (*model.DocumentModel, bool) {
	if t.resolver == nil || name == "" {
		return nil, false
	}
	m, ok := t.resolver.Resolve(name)
	return m, ok && m != nil
}

// walk is the stack of models being inlined by one Transcode call
type walk struct {
	stack []string
}

func (w *walk) enter(name string) error {
	for i, n := range w.stack {
		if n == name {
			path := make([]string, 0, len(w.stack)-i+1)
			path = append(path, w.stack[i:]...)
			path = append(path, name)
			return &CycleError{Path: path}
		}
	}
	w.stack = append(w.stack, name)
	return nil
}

func (w *walk) leave() {
	w.stack = w.stack[:len(w.stack)-1]
}

func (w *walk) current() string {
	if len(w.stack) == 0 {
		return ""
	}
	return w.stack[len(w.stack)-1]
}

func (t *Transcoder) document(ctx context.Context, w *walk, m *model.DocumentModel, strict bool) (*jsonschema.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if m.Override != nil {
		s := cloneSchema(m.Override)
		if !strict {
			s.Required = nil
		}
		return s, nil
	}

	if err := w.enter(m.Name); err != nil {
		return nil, err
	}
	defer w.leave()

	props := jsonschema.NewProperties()
	var required []string
	for _, f := range m.Fields {
		if skipField(f) {
			continue
		}

		sub, err := t.field(ctx, w, f, strict)
		if err != nil {
			return nil, err
		}
		props.Set(f.Name, sub)

		if f.Descriptor.Required {
			required = append(required, f.Name)
		}
	}

	if m.Base != "" {
		baseProps, err := t.inherited(ctx, w, m, strict)
		if err != nil {
			return nil, err
		}
		if baseProps != nil {
			for pair := baseProps.Oldest(); pair != nil; pair = pair.Next() {
				if _, exists := props.Get(pair.Key); !exists {
					props.Set(pair.Key, pair.Value)
				}
			}
		}
	}

	additional := jsonschema.FalseSchema
	if m.Dynamic {
		additional = jsonschema.TrueSchema
	}

	s := &jsonschema.Schema{
		ID:                   jsonschema.ID(SchemaIDPrefix + m.Name),
		Type:                 "object",
		Title:                Title(m.Name),
		Properties:           props,
		AdditionalProperties: additional,
	}
	if strict && len(required) > 0 {
		s.Required = required
	}
	return s, nil
}

// inherited returns the generated properties of m's base. Unresolved and
// abstract bases contribute nothing.
func (t *Transcoder) inherited(ctx context.Context, w *walk, m *model.DocumentModel, strict bool) (*orderedProperties, error) {
	base, ok := t.resolve(m.Base)
	if !ok {
		t.logger.Debug("base model not resolvable; skipping inherited properties",
			zap.String("model", m.Name),
			zap.String("base", m.Base),
		)
		return nil, nil
	}
	if base.Abstract {
		return nil, nil
	}

	s, err := t.document(ctx, w, base, strict)
	if err != nil {
		return nil, err
	}
	return s.Properties, nil
}

// field dispatches a declared field to its builder. Every kind of the
// taxonomy is listed; anything else is a classification error.
func (t *Transcoder) field(ctx context.Context, w *walk, f model.Field, strict bool) (*jsonschema.Schema, error) {
	d := f.Descriptor
	title := Title(f.Name)

	var (
		s   *jsonschema.Schema
		err error
	)
	switch d.Kind {
	case model.KindPoint, model.KindLineString, model.KindPolygon,
		model.KindMultiPoint, model.KindMultiLineString, model.KindMultiPolygon:
		return geoShape(title, d.Kind), nil

	case model.KindEmbeddedDocument:
		s, err = t.embedded(ctx, w, d, strict)

	case model.KindGenericEmbeddedDocument:
		s = &jsonschema.Schema{Type: "object"}

	case model.KindList, model.KindSortedList, model.KindEmbeddedDocumentList:
		s, err = t.listSchema(ctx, w, f, d, strict)

	case model.KindBinary, model.KindBoolean, model.KindComplexDateTime, model.KindDate,
		model.KindDateTime, model.KindDecimal, model.KindDecimal128, model.KindDict,
		model.KindDynamic, model.KindEmail, model.KindEnum, model.KindFloat,
		model.KindInt, model.KindLong, model.KindObjectID, model.KindSequence,
		model.KindString, model.KindURL, model.KindUUID,
		model.KindReference, model.KindLazyReference, model.KindCachedReference,
		model.KindGenericReference, model.KindGenericLazyReference,
		model.KindMap, model.KindGeoPoint:
		s = classify(d)

	default:
		return nil, &ClassificationError{Model: w.current(), Field: f.Name, Kind: d.Kind}
	}
	if err != nil {
		return nil, err
	}

	s.Title = title
	return s, nil
}

// embedded inlines the target document. Unresolved and abstract targets
// yield an empty schema.
func (t *Transcoder) embedded(ctx context.Context, w *walk, d *model.FieldDescriptor, strict bool) (*jsonschema.Schema, error) {
	target, ok := t.resolve(d.Target)
	if !ok || target.Abstract {
		t.logger.Debug("embedded model has no schema; using empty schema",
			zap.String("model", w.current()),
			zap.String("target", d.Target),
		)
		return &jsonschema.Schema{}, nil
	}
	return t.document(ctx, w, target, strict)
}

func skipField(f model.Field) bool {
	if f.Descriptor == nil || f.Descriptor.Excluded {
		return true
	}
	return reservedNames[f.Name] || strings.HasPrefix(f.Name, "_")
}
