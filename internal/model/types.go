package model

import (
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// Symbol is one member of a symbolic enumeration. Value is what gets
// serialized; Name is only used for display.
type Symbol struct {
	Name  string
	Value any
}

// FieldDescriptor describes one declared field
type FieldDescriptor struct {
	Kind Kind

	// Constraints
	Required  bool
	Default   any // a func() any is treated as a factory, not a value
	MinValue  *float64
	MaxValue  *float64
	MinLength *int
	MaxLength *int
	Choices   []any
	Symbols   []Symbol
	Regex     any // string or *regexp.Regexp
	URLRegex  any // string or *regexp.Regexp
	Unique    bool

	// Target is the referenced model id for embedded and reference kinds
	Target string

	// Field is the contained descriptor for container kinds
	Field *FieldDescriptor

	// Excluded fields never appear in generated schemas
	Excluded bool
}

// HasCallableDefault reports whether Default is a factory function
func (d *FieldDescriptor) HasCallableDefault() bool {
	if d == nil || d.Default == nil {
		return false
	}
	return reflect.TypeOf(d.Default).Kind() == reflect.Func
}

// Contained returns the descriptor held by a container. An
// embedded_document_list that only names a Target contains that document.
func (d *FieldDescriptor) Contained() *FieldDescriptor {
	if d == nil {
		return nil
	}
	if d.Field == nil && d.Kind == KindEmbeddedDocumentList && d.Target != "" {
		return &FieldDescriptor{Kind: KindEmbeddedDocument, Target: d.Target}
	}
	return d.Field
}

// Field pairs a declared name with its descriptor. A nil Descriptor marks an
// absent value and is skipped by the transcoder.
type Field struct {
	Name       string
	Descriptor *FieldDescriptor
}

// DocumentModel represents a declared document type
type DocumentModel struct {
	Name string

	// Fields in declaration order
	Fields []Field

	// Base is the id of the immediate parent model, if any
	Base string

	// Dynamic models accept extra untyped keys
	Dynamic bool

	// Abstract models do not take part in schema generation. Embedding one
	// yields an empty schema and subclasses do not inherit its properties.
	Abstract bool

	// Override is a hand-authored schema returned instead of a generated one.
	// It is never mutated.
	Override *jsonschema.Schema

	// Documentation is carried into tooling output; it is not a schema keyword
	Documentation string
	FilePath      string
}

// NewDocumentModel creates an empty model with the given name
func NewDocumentModel(name string) *DocumentModel {
	return &DocumentModel{
		Name:   name,
		Fields: make([]Field, 0),
	}
}

// AddField appends a field, keeping declaration order
func (m *DocumentModel) AddField(name string, desc *FieldDescriptor) *DocumentModel {
	m.Fields = append(m.Fields, Field{Name: name, Descriptor: desc})
	return m
}

// Targets returns the model ids this model inlines: embedded targets at any
// container depth, plus the base model. Reference targets are not included
// since they serialize as a scalar key.
func (m *DocumentModel) Targets() []string {
	var targets []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			targets = append(targets, name)
		}
	}

	if m.Base != "" {
		add(m.Base)
	}
	for _, f := range m.Fields {
		for d := f.Descriptor; d != nil; d = d.Contained() {
			if d.Excluded {
				break
			}
			if d.Kind == KindEmbeddedDocument {
				add(d.Target)
			}
		}
	}
	return targets
}

// Resolver looks up models by id
type Resolver interface {
	Resolve(name string) (*DocumentModel, bool)
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(name string) (*DocumentModel, bool)

// Resolve calls f(name)
func (f ResolverFunc) Resolve(name string) (*DocumentModel, bool) {
	return f(name)
}

// validateStructure checks a single model in isolation
func validateStructure(m *DocumentModel) error {
	if m.Name == "" {
		return fmt.Errorf("model name cannot be empty")
	}

	seen := make(map[string]bool, len(m.Fields))
	for _, f := range m.Fields {
		if f.Name == "" {
			return fmt.Errorf("model %s has a field with an empty name", m.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("model %s declares field %s more than once", m.Name, f.Name)
		}
		seen[f.Name] = true

		if err := validateDescriptor(f.Descriptor); err != nil {
			return fmt.Errorf("model %s field %s: %w", m.Name, f.Name, err)
		}
	}
	return nil
}

func validateDescriptor(d *FieldDescriptor) error {
	if d == nil {
		return nil
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("invalid field kind %s", d.Kind)
	}
	if d.Kind.NeedsTarget() && d.Target == "" {
		return fmt.Errorf("%s field requires a target model", d.Kind)
	}
	if d.MinLength != nil && d.MaxLength != nil && *d.MinLength > *d.MaxLength {
		return fmt.Errorf("min_length %d exceeds max_length %d", *d.MinLength, *d.MaxLength)
	}
	if d.MinValue != nil && d.MaxValue != nil && *d.MinValue > *d.MaxValue {
		return fmt.Errorf("min_value %v exceeds max_value %v", *d.MinValue, *d.MaxValue)
	}
	if d.Kind == KindEmbeddedDocumentList && d.Target == "" && d.Field == nil {
		return fmt.Errorf("%s field requires a target model", d.Kind)
	}
	if d.Field != nil {
		if !d.Kind.IsListLike() && !d.Kind.IsMapLike() {
			return fmt.Errorf("%s field cannot contain a field", d.Kind)
		}
		return validateDescriptor(d.Field)
	}
	return nil
}
