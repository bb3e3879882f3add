package cache

import "fmt"

// SchemaKey is the cache key of a rendered model schema. version identifies
// the set of model declarations the schema was rendered from.
func SchemaKey(version, model string, strict bool) string {
	mode := "lax"
	if strict {
		mode = "strict"
	}
	return fmt.Sprintf("schema:%s:%s:%s", version, model, mode)
}

// SchemaKeys returns the keys of both renderings of a model
func SchemaKeys(version, model string) []string {
	return []string{SchemaKey(version, model, true), SchemaKey(version, model, false)}
}
