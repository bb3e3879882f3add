package transcode

import (
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type orderedProperties = orderedmap.OrderedMap[string, *jsonschema.Schema]

// cloneSchema returns a deep copy of the subschema tree and the keyword
// slices of s, so the copy can be edited without touching s
func cloneSchema(s *jsonschema.Schema) *jsonschema.Schema {
	if s == nil {
		return nil
	}

	c := *s
	c.AllOf = cloneList(s.AllOf)
	c.AnyOf = cloneList(s.AnyOf)
	c.OneOf = cloneList(s.OneOf)
	c.Not = cloneSchema(s.Not)
	c.If = cloneSchema(s.If)
	c.Then = cloneSchema(s.Then)
	c.Else = cloneSchema(s.Else)
	c.PrefixItems = cloneList(s.PrefixItems)
	c.Items = cloneSchema(s.Items)
	c.Contains = cloneSchema(s.Contains)
	c.AdditionalProperties = cloneSchema(s.AdditionalProperties)
	c.PropertyNames = cloneSchema(s.PropertyNames)
	c.Properties = cloneProperties(s.Properties)
	c.PatternProperties = cloneMap(s.PatternProperties)

	if s.Definitions != nil {
		c.Definitions = make(jsonschema.Definitions, len(s.Definitions))
		for k, v := range s.Definitions {
			c.Definitions[k] = cloneSchema(v)
		}
	}
	if s.Required != nil {
		c.Required = append([]string(nil), s.Required...)
	}
	if s.Enum != nil {
		c.Enum = append([]any(nil), s.Enum...)
	}
	if s.Examples != nil {
		c.Examples = append([]any(nil), s.Examples...)
	}
	if s.Extras != nil {
		c.Extras = make(map[string]any, len(s.Extras))
		for k, v := range s.Extras {
			c.Extras[k] = v
		}
	}
	return &c
}

func cloneList(list []*jsonschema.Schema) []*jsonschema.Schema {
	if list == nil {
		return nil
	}
	out := make([]*jsonschema.Schema, len(list))
	for i, s := range list {
		out[i] = cloneSchema(s)
	}
	return out
}

func cloneMap(m map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	if m == nil {
		return nil
	}
	out := make(map[string]*jsonschema.Schema, len(m))
	for k, v := range m {
		out[k] = cloneSchema(v)
	}
	return out
}

func cloneProperties(props *orderedProperties) *orderedProperties {
	if props == nil {
		return nil
	}
	out := jsonschema.NewProperties()
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, cloneSchema(pair.Value))
	}
	return out
}
