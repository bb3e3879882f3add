package model

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleModels = `
models:
  - name: ExampleBaseDocument
    fields:
      - name: base_field
        kind: string

  - name: ExampleEmbeddedDocument
    fields:
      - name: embedded_field
        kind: string

  - name: ExampleDocument
    base: ExampleBaseDocument
    doc: Everything at once
    fields:
      - name: boolean_field
        kind: boolean
        required: true
      - name: string_field
        kind: string
        default: "1"
        min_length: 1
        max_length: 2
        choices: ["1", "2", "3"]
        regex: ".*"
        unique: true
      - name: int_field
        kind: int
        min_value: 0
        max_value: 5
      - name: enum_field
        kind: enum
        symbols:
          - {name: A, value: "1"}
          - {name: B, value: "2"}
      - name: tags
        kind: list
        default_factory: list
        field: {kind: string}
      - name: lines
        kind: embedded_document_list
        model: ExampleEmbeddedDocument
      - name: counts
        kind: map
        field: {kind: int}
      - name: secret
        kind: string
        exclude: true

  - name: ExampleDocumentWithCustomSchema
    override: custom.json
`

const customSchema = `{
  "$id": "/schemas/ExampleDocumentWithCustomSchema",
  "type": "object",
  "title": "Example Document With Custom Schema",
  "properties": {"name": {"type": "string"}},
  "required": ["name"],
  "additionalProperties": false
}`

func writeModels(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.json"), []byte(customSchema), 0o644))
	return path
}

func fieldNamed(t *testing.T, m *DocumentModel, name string) *FieldDescriptor {
	t.Helper()
	for _, f := range m.Fields {
		if f.Name == name {
			return f.Descriptor
		}
	}
	t.Fatalf("model %s has no field %s", m.Name, name)
	return nil
}

func TestLoadFile(t *testing.T) {
	path := writeModels(t, sampleModels)

	models, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, models, 4)

	doc := models[2]
	assert.Equal(t, "ExampleDocument", doc.Name)
	assert.Equal(t, "ExampleBaseDocument", doc.Base)
	assert.Equal(t, "Everything at once", doc.Documentation)
	assert.Equal(t, path, doc.FilePath)

	names := make([]string, 0, len(doc.Fields))
	for _, f := range doc.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"boolean_field", "string_field", "int_field", "enum_field", "tags", "lines", "counts", "secret"}, names)

	str := fieldNamed(t, doc, "string_field")
	assert.Equal(t, KindString, str.Kind)
	assert.Equal(t, "1", str.Default)
	assert.Equal(t, 1, *str.MinLength)
	assert.Equal(t, 2, *str.MaxLength)
	assert.Equal(t, []any{"1", "2", "3"}, str.Choices)
	assert.True(t, str.Unique)
	re, ok := str.Regex.(*regexp.Regexp)
	require.True(t, ok)
	assert.Equal(t, ".*", re.String())

	num := fieldNamed(t, doc, "int_field")
	assert.Equal(t, 0.0, *num.MinValue)
	assert.Equal(t, 5.0, *num.MaxValue)

	enum := fieldNamed(t, doc, "enum_field")
	assert.Equal(t, []Symbol{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}, enum.Symbols)

	tags := fieldNamed(t, doc, "tags")
	assert.True(t, tags.HasCallableDefault())
	assert.Equal(t, KindString, tags.Field.Kind)

	lines := fieldNamed(t, doc, "lines")
	assert.Equal(t, "ExampleEmbeddedDocument", lines.Contained().Target)
	assert.Equal(t, KindEmbeddedDocument, lines.Contained().Kind)

	secret := fieldNamed(t, doc, "secret")
	assert.True(t, secret.Excluded)

	custom := models[3]
	require.NotNil(t, custom.Override)
	assert.Equal(t, "Example Document With Custom Schema", custom.Override.Title)
	assert.Equal(t, []string{"name"}, custom.Override.Required)
	prop, ok := custom.Override.Properties.Get("name")
	require.True(t, ok)
	assert.Equal(t, "string", prop.Type)
}

func TestLoadRegistry(t *testing.T) {
	registry, err := LoadRegistry(writeModels(t, sampleModels))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ExampleBaseDocument",
		"ExampleDocument",
		"ExampleDocumentWithCustomSchema",
		"ExampleEmbeddedDocument",
	}, registry.List())

	order, err := registry.DependencyOrder()
	require.NoError(t, err)
	assert.Less(t, indexOf(order, "ExampleEmbeddedDocument"), indexOf(order, "ExampleDocument"))
	assert.Less(t, indexOf(order, "ExampleBaseDocument"), indexOf(order, "ExampleDocument"))
}

func TestLoad_Empty(t *testing.T) {
	models, err := Load(strings.NewReader(""), ".")
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown kind",
			yaml: "models:\n  - name: M\n    fields:\n      - {name: f, kind: text}\n",
			want: "model M field f: unknown field kind: text",
		},
		{
			name: "invalid regex",
			yaml: "models:\n  - name: M\n    fields:\n      - {name: f, kind: string, regex: \"(\"}\n",
			want: "invalid regex",
		},
		{
			name: "unknown factory",
			yaml: "models:\n  - name: M\n    fields:\n      - {name: f, kind: list, default_factory: set}\n",
			want: "unknown default_factory: set",
		},
		{
			name: "default and factory",
			yaml: "models:\n  - name: M\n    fields:\n      - {name: f, kind: list, default: [], default_factory: list}\n",
			want: "mutually exclusive",
		},
		{
			name: "unknown key",
			yaml: "models:\n  - name: M\n    colour: red\n",
			want: "failed to parse models",
		},
		{
			name: "missing name",
			yaml: "models:\n  - fields: []\n",
			want: "model without a name",
		},
		{
			name: "missing override file",
			yaml: "models:\n  - name: M\n    override: nope.json\n",
			want: "failed to read override schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRegistry_Invalid(t *testing.T) {
	_, err := LoadRegistry(writeModels(t, "models:\n  - name: A\n    base: Missing\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extends unknown model Missing")

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read models file")
}

func TestLoadPath_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shared"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared", "address.yml"),
		[]byte("models:\n  - name: Address\n    fields:\n      - {name: city, kind: string}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.yaml"),
		[]byte("models:\n  - name: User\n    fields:\n      - {name: home, kind: embedded_document, model: Address}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# models"), 0o644))

	models, err := LoadPath(dir)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "Address", models[0].Name)
	assert.Equal(t, "User", models[1].Name)

	registry, err := LoadRegistry(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Count())
}

func TestLoadRegistry_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name),
			[]byte("models:\n  - name: Address\n"), 0o644))
	}

	_, err := LoadRegistry(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model Address in "+filepath.Join(dir, "b.yaml"))
	assert.Contains(t, err.Error(), "already registered from "+filepath.Join(dir, "a.yaml"))
}

func TestLoadRegistry_UnresolvedTargetsLoad(t *testing.T) {
	content := `
models:
  - name: Post
    fields:
      - name: author
        kind: reference
        model: Account
      - name: layout
        kind: embedded_document
        model: Layout
`
	registry, err := LoadRegistry(writeModels(t, content))
	require.NoError(t, err)

	unresolved := registry.UnresolvedTargets()
	require.Len(t, unresolved, 2)
	assert.Equal(t, UnresolvedTarget{Model: "Post", Field: "author", Kind: KindReference, Target: "Account"}, unresolved[0])
	assert.Equal(t, "Layout", unresolved[1].Target)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
