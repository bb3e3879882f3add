package model

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds every declared model and resolves them by id
type Registry struct {
	models map[string]*DocumentModel
	mu     sync.RWMutex
}

// Ensure Registry can be handed to the transcoder
var _ Resolver = (*Registry)(nil)

// NewRegistry creates a new, empty model registry
func NewRegistry() *Registry {
	return &Registry{
		models: make(map[string]*DocumentModel),
	}
}

// Register adds a model after structural validation. Targets are not checked
// here so models can be registered in any order; ValidateAll does that.
func (r *Registry) Register(m *DocumentModel) error {
	if m == nil {
		return fmt.Errorf("model cannot be nil")
	}
	if err := validateStructure(m); err != nil {
		return fmt.Errorf("model validation failed: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.models[m.Name]; exists {
		if existing.FilePath != "" && m.FilePath != "" && existing.FilePath != m.FilePath {
			return fmt.Errorf("model %s in %s is already registered from %s", m.Name, m.FilePath, existing.FilePath)
		}
		return fmt.Errorf("model %s is already registered", m.Name)
	}
	r.models[m.Name] = m
	return nil
}

// RegisterAll registers models in order and stops at the first failure
func (r *Registry) RegisterAll(models ...*DocumentModel) error {
	for _, m := range models {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a model by name
func (r *Registry) Get(name string) (*DocumentModel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[name]
	return m, ok
}

// Resolve implements Resolver
func (r *Registry) Resolve(name string) (*DocumentModel, bool) {
	return r.Get(name)
}

// List returns all model names in ascending order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a copy of the name -> model map
func (r *Registry) All() map[string]*DocumentModel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*DocumentModel, len(r.models))
	for k, v := range r.models {
		result[k] = v
	}
	return result
}

// Count returns the number of registered models
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.models)
}

// Clear removes every model
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models = make(map[string]*DocumentModel)
}

// ValidateAll checks cross-model consistency: bases must be registered and
// the inlining graph must be acyclic. Unknown field targets are not an error;
// see UnresolvedTargets.
func (r *Registry) ValidateAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.sortedNames() {
		m := r.models[name]
		if m.Base == "" {
			continue
		}
		if m.Base == m.Name {
			return fmt.Errorf("model %s extends itself", m.Name)
		}
		if _, ok := r.models[m.Base]; !ok {
			return fmt.Errorf("model %s extends unknown model %s", m.Name, m.Base)
		}
	}

	graph := NewEmbedGraph(r.models)
	if cycles := graph.DetectCycles(); len(cycles) > 0 {
		return fmt.Errorf("circular embedding detected:\n%s", FormatCycles(cycles))
	}
	return nil
}

// UnresolvedTarget is a field whose target model is not registered. An
// embedded one renders as an empty object schema; a reference one renders as
// its key type.
type UnresolvedTarget struct {
	Model  string
	Field  string
	Kind   Kind
	Target string
}

func (u UnresolvedTarget) String() string {
	return fmt.Sprintf("model %s field %s (%s) targets unknown model %s", u.Model, u.Field, u.Kind, u.Target)
}

// UnresolvedTargets lists fields, at any container depth, whose target is not
// registered. Excluded fields are skipped.
func (r *Registry) UnresolvedTargets() []UnresolvedTarget {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var unresolved []UnresolvedTarget
	for _, name := range r.sortedNames() {
		m := r.models[name]
		for _, f := range m.Fields {
			for d := f.Descriptor; d != nil; d = d.Contained() {
				if d.Excluded {
					break
				}
				if d.Target == "" || d.Kind.IsListLike() || d.Kind.IsMapLike() {
					continue
				}
				if _, ok := r.models[d.Target]; !ok {
					unresolved = append(unresolved, UnresolvedTarget{
						Model:  m.Name,
						Field:  f.Name,
						Kind:   d.Kind,
						Target: d.Target,
					})
				}
			}
		}
	}
	return unresolved
}

// Dependents returns every model whose schema inlines name, directly or
// through other models, sorted
func (r *Registry) Dependents(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	graph := NewEmbedGraph(r.models)
	seen := map[string]bool{name: true}
	queue := []string{name}
	var dependents []string
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, d := range graph.Dependents(next) {
			if !seen[d] {
				seen[d] = true
				dependents = append(dependents, d)
				queue = append(queue, d)
			}
		}
	}
	sort.Strings(dependents)
	return dependents
}

// DependencyOrder returns model names with inlined models before the models
// that inline them
func (r *Registry) DependencyOrder() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return NewEmbedGraph(r.models).TopologicalSort()
}

// Stats summarizes the registry
type Stats struct {
	TotalModels    int
	TotalFields    int
	DynamicModels  int
	AbstractModels int
	Overrides      int
	Inherited      int
}

// Stats returns counts across all registered models
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{TotalModels: len(r.models)}
	for _, m := range r.models {
		stats.TotalFields += len(m.Fields)
		if m.Dynamic {
			stats.DynamicModels++
		}
		if m.Abstract {
			stats.AbstractModels++
		}
		if m.Override != nil {
			stats.Overrides++
		}
		if m.Base != "" {
			stats.Inherited++
		}
	}
	return stats
}

// sortedNames must be called with the lock held
func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
