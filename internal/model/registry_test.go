package model

import (
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	user := NewDocumentModel("User").
		AddField("email", &FieldDescriptor{Kind: KindEmail, Required: true})

	require.NoError(t, registry.Register(user))

	retrieved, ok := registry.Get("User")
	require.True(t, ok)
	assert.Same(t, user, retrieved)
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_RegisterRejects(t *testing.T) {
	tests := []struct {
		name  string
		model *DocumentModel
		want  string
	}{
		{"nil model", nil, "model cannot be nil"},
		{"empty name", NewDocumentModel(""), "model name cannot be empty"},
		{
			"duplicate field",
			NewDocumentModel("Dup").AddField("a", &FieldDescriptor{Kind: KindString}).AddField("a", &FieldDescriptor{Kind: KindInt}),
			"declares field a more than once",
		},
		{
			"invalid kind",
			NewDocumentModel("Bad").AddField("a", &FieldDescriptor{}),
			"invalid field kind",
		},
		{
			"embedded without target",
			NewDocumentModel("Bad").AddField("a", &FieldDescriptor{Kind: KindEmbeddedDocument}),
			"requires a target model",
		},
		{
			"embedded list without target",
			NewDocumentModel("Bad").AddField("a", &FieldDescriptor{Kind: KindEmbeddedDocumentList}),
			"requires a target model",
		},
		{
			"min length above max",
			NewDocumentModel("Bad").AddField("a", &FieldDescriptor{Kind: KindString, MinLength: intPtr(3), MaxLength: intPtr(1)}),
			"min_length 3 exceeds max_length 1",
		},
		{
			"min value above max",
			NewDocumentModel("Bad").AddField("a", &FieldDescriptor{Kind: KindInt, MinValue: floatPtr(5), MaxValue: floatPtr(1)}),
			"min_value 5 exceeds max_value 1",
		},
		{
			"scalar with contained field",
			NewDocumentModel("Bad").AddField("a", &FieldDescriptor{Kind: KindString, Field: &FieldDescriptor{Kind: KindInt}}),
			"cannot contain a field",
		},
		{
			"invalid contained field",
			NewDocumentModel("Bad").AddField("a", &FieldDescriptor{Kind: KindList, Field: &FieldDescriptor{Kind: KindReference}}),
			"requires a target model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.model)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegistry_DuplicateModel(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(NewDocumentModel("User")))

	err := registry.Register(NewDocumentModel("User"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_ListIsSorted(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterAll(
		NewDocumentModel("Zebra"),
		NewDocumentModel("Apple"),
		NewDocumentModel("Mango"),
	))

	assert.Equal(t, []string{"Apple", "Mango", "Zebra"}, registry.List())
	assert.Len(t, registry.All(), 3)

	registry.Clear()
	assert.Equal(t, 0, registry.Count())
	assert.Empty(t, registry.List())
}

func TestRegistry_ResolverFunc(t *testing.T) {
	m := NewDocumentModel("Only")
	var resolver Resolver = ResolverFunc(func(name string) (*DocumentModel, bool) {
		return m, name == "Only"
	})

	got, ok := resolver.Resolve("Only")
	assert.True(t, ok)
	assert.Same(t, m, got)

	_, ok = resolver.Resolve("Other")
	assert.False(t, ok)
}

func TestRegistry_ValidateAll(t *testing.T) {
	t.Run("valid graph", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.RegisterAll(
			NewDocumentModel("Address").AddField("city", &FieldDescriptor{Kind: KindString}),
			NewDocumentModel("Person").
				AddField("home", &FieldDescriptor{Kind: KindEmbeddedDocument, Target: "Address"}).
				AddField("friends", &FieldDescriptor{Kind: KindList, Field: &FieldDescriptor{Kind: KindReference, Target: "Person"}}),
		))
		assert.NoError(t, registry.ValidateAll())
	})

	t.Run("unknown base", func(t *testing.T) {
		child := NewDocumentModel("Child")
		child.Base = "Parent"

		registry := NewRegistry()
		require.NoError(t, registry.Register(child))

		err := registry.ValidateAll()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extends unknown model Parent")
	})

	t.Run("self extension", func(t *testing.T) {
		self := NewDocumentModel("Self")
		self.Base = "Self"

		registry := NewRegistry()
		require.NoError(t, registry.Register(self))

		err := registry.ValidateAll()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extends itself")
	})

	t.Run("unknown targets are not an error", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(
			NewDocumentModel("Holder").
				AddField("items", &FieldDescriptor{Kind: KindEmbeddedDocumentList, Target: "Missing"}).
				AddField("owner", &FieldDescriptor{Kind: KindReference, Target: "Account"}),
		))
		assert.NoError(t, registry.ValidateAll())
	})

	t.Run("embedding cycle", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.RegisterAll(
			NewDocumentModel("A").AddField("b", &FieldDescriptor{Kind: KindEmbeddedDocument, Target: "B"}),
			NewDocumentModel("B").AddField("a", &FieldDescriptor{Kind: KindEmbeddedDocument, Target: "A"}),
		))

		err := registry.ValidateAll()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "circular embedding detected")
		assert.Contains(t, err.Error(), "A -> B -> A")
	})
}

func TestRegistry_UnresolvedTargets(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterAll(
		NewDocumentModel("Address"),
		NewDocumentModel("Holder").
			AddField("home", &FieldDescriptor{Kind: KindEmbeddedDocument, Target: "Address"}).
			AddField("items", &FieldDescriptor{Kind: KindEmbeddedDocumentList, Target: "Missing"}).
			AddField("owners", &FieldDescriptor{Kind: KindMap, Field: &FieldDescriptor{Kind: KindLazyReference, Target: "Account"}}).
			AddField("ghost", &FieldDescriptor{Kind: KindEmbeddedDocument, Target: "Gone", Excluded: true}),
	))

	unresolved := registry.UnresolvedTargets()
	require.Len(t, unresolved, 2)
	assert.Equal(t, UnresolvedTarget{Model: "Holder", Field: "items", Kind: KindEmbeddedDocument, Target: "Missing"}, unresolved[0])
	assert.Equal(t, UnresolvedTarget{Model: "Holder", Field: "owners", Kind: KindLazyReference, Target: "Account"}, unresolved[1])
	assert.Equal(t, "model Holder field owners (lazy_reference) targets unknown model Account", unresolved[1].String())
}

func TestRegistry_Dependents(t *testing.T) {
	child := NewDocumentModel("Child")
	child.Base = "Order"

	registry := NewRegistry()
	require.NoError(t, registry.RegisterAll(
		NewDocumentModel("Address"),
		NewDocumentModel("Customer").AddField("address", &FieldDescriptor{Kind: KindEmbeddedDocument, Target: "Address"}),
		NewDocumentModel("Order").
			AddField("customer", &FieldDescriptor{Kind: KindEmbeddedDocument, Target: "Customer"}).
			AddField("ref", &FieldDescriptor{Kind: KindReference, Target: "Address"}),
		NewDocumentModel("Unrelated"),
		child,
	))

	assert.Equal(t, []string{"Child", "Customer", "Order"}, registry.Dependents("Address"))
	assert.Equal(t, []string{"Child"}, registry.Dependents("Order"))
	assert.Empty(t, registry.Dependents("Unrelated"))
}

func TestRegistry_Stats(t *testing.T) {
	dynamic := NewDocumentModel("Dynamic").AddField("a", &FieldDescriptor{Kind: KindString})
	dynamic.Dynamic = true
	abstract := NewDocumentModel("Abstract").AddField("b", &FieldDescriptor{Kind: KindString})
	abstract.Abstract = true
	child := NewDocumentModel("Child").AddField("c", &FieldDescriptor{Kind: KindInt})
	child.Base = "Abstract"
	custom := NewDocumentModel("Custom")
	custom.Override = &jsonschema.Schema{Type: "object"}

	registry := NewRegistry()
	require.NoError(t, registry.RegisterAll(dynamic, abstract, child, custom))

	assert.Equal(t, Stats{
		TotalModels:    4,
		TotalFields:    3,
		DynamicModels:  1,
		AbstractModels: 1,
		Overrides:      1,
		Inherited:      1,
	}, registry.Stats())
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
