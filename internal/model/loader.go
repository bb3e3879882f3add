package model

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/docschema/internal/utils"
)

// modelFile is the on-disk layout of a models document
type modelFile struct {
	Models []modelSpec `yaml:"models"`
}

type modelSpec struct {
	Name          string      `yaml:"name"`
	Base          string      `yaml:"base"`
	Dynamic       bool        `yaml:"dynamic"`
	Abstract      bool        `yaml:"abstract"`
	Override      string      `yaml:"override"`
	Documentation string      `yaml:"doc"`
	Fields        []fieldSpec `yaml:"fields"`
}

type fieldSpec struct {
	Name           string `yaml:"name"`
	descriptorSpec `yaml:",inline"`
}

type descriptorSpec struct {
	Kind           string          `yaml:"kind"`
	Required       bool            `yaml:"required"`
	Default        any             `yaml:"default"`
	DefaultFactory string          `yaml:"default_factory"`
	MinValue       *float64        `yaml:"min_value"`
	MaxValue       *float64        `yaml:"max_value"`
	MinLength      *int            `yaml:"min_length"`
	MaxLength      *int            `yaml:"max_length"`
	Choices        []any           `yaml:"choices"`
	Symbols        []symbolSpec    `yaml:"symbols"`
	Regex          string          `yaml:"regex"`
	URLRegex       string          `yaml:"url_regex"`
	Unique         bool            `yaml:"unique"`
	Exclude        bool            `yaml:"exclude"`
	Model          string          `yaml:"model"`
	Field          *descriptorSpec `yaml:"field"`
}

type symbolSpec struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

// defaultFactories are the callable defaults a models file may name
var defaultFactories = map[string]func() any{
	"list": func() any { return []any{} },
	"dict": func() any { return map[string]any{} },
	"now":  func() any { return time.Now().UTC() },
	"uuid": func() any { return uuid.NewString() },
}

// LoadFile reads a YAML models file. Override paths are resolved relative to
// the file's directory.
func LoadFile(path string) ([]*DocumentModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}

	models, err := Load(bytes.NewReader(data), filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, m := range models {
		m.FilePath = path
	}
	return models, nil
}

// Load decodes models from r. baseDir anchors relative override paths.
func Load(r io.Reader, baseDir string) ([]*DocumentModel, error) {
	var file modelFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return []*DocumentModel{}, nil
		}
		return nil, fmt.Errorf("failed to parse models: %w", err)
	}

	models := make([]*DocumentModel, 0, len(file.Models))
	for _, spec := range file.Models {
		m, err := buildModel(spec, baseDir)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

// LoadPath loads a models file, or every .yaml and .yml file below a directory
// in lexical path order
func LoadPath(path string) ([]*DocumentModel, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}
	if !info.IsDir() {
		return LoadFile(path)
	}

	files, err := utils.FindFiles(path, ".yaml", ".yml")
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	var models []*DocumentModel
	for _, file := range files {
		loaded, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		models = append(models, loaded...)
	}
	return models, nil
}

// LoadRegistry loads a models file or directory into a fresh registry and
// validates it
func LoadRegistry(path string) (*Registry, error) {
	models, err := LoadPath(path)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	if err := registry.RegisterAll(models...); err != nil {
		return nil, err
	}
	if err := registry.ValidateAll(); err != nil {
		return nil, err
	}
	return registry, nil
}

func buildModel(spec modelSpec, baseDir string) (*DocumentModel, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("model without a name")
	}

	m := NewDocumentModel(spec.Name)
	m.Base = spec.Base
	m.Dynamic = spec.Dynamic
	m.Abstract = spec.Abstract
	m.Documentation = spec.Documentation

	if spec.Override != "" {
		override, err := loadOverride(spec.Override, baseDir)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", spec.Name, err)
		}
		m.Override = override
	}

	for _, fs := range spec.Fields {
		desc, err := buildDescriptor(&fs.descriptorSpec)
		if err != nil {
			return nil, fmt.Errorf("model %s field %s: %w", spec.Name, fs.Name, err)
		}
		m.AddField(fs.Name, desc)
	}
	return m, nil
}

func buildDescriptor(spec *descriptorSpec) (*FieldDescriptor, error) {
	kind, err := ParseKind(spec.Kind)
	if err != nil {
		return nil, err
	}

	desc := &FieldDescriptor{
		Kind:      kind,
		Required:  spec.Required,
		Default:   spec.Default,
		MinValue:  spec.MinValue,
		MaxValue:  spec.MaxValue,
		MinLength: spec.MinLength,
		MaxLength: spec.MaxLength,
		Choices:   spec.Choices,
		Unique:    spec.Unique,
		Excluded:  spec.Exclude,
		Target:    spec.Model,
	}

	if spec.DefaultFactory != "" {
		if spec.Default != nil {
			return nil, fmt.Errorf("default and default_factory are mutually exclusive")
		}
		factory, ok := defaultFactories[spec.DefaultFactory]
		if !ok {
			return nil, fmt.Errorf("unknown default_factory: %s", spec.DefaultFactory)
		}
		desc.Default = factory
	}

	for _, sym := range spec.Symbols {
		desc.Symbols = append(desc.Symbols, Symbol{Name: sym.Name, Value: sym.Value})
	}

	if spec.Regex != "" {
		re, err := regexp.Compile(spec.Regex)
		if err != nil {
			return nil, fmt.Errorf("invalid regex: %w", err)
		}
		desc.Regex = re
	}
	if spec.URLRegex != "" {
		re, err := regexp.Compile(spec.URLRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid url_regex: %w", err)
		}
		desc.URLRegex = re
	}

	if spec.Field != nil {
		contained, err := buildDescriptor(spec.Field)
		if err != nil {
			return nil, fmt.Errorf("contained field: %w", err)
		}
		desc.Field = contained
	}

	return desc, nil
}

func loadOverride(path, baseDir string) (*jsonschema.Schema, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read override schema: %w", err)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse override schema %s: %w", path, err)
	}
	return &schema, nil
}
