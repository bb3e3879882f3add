// Package catalog renders the schemas of every registered model, caches the
// encoded documents and writes them to disk.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conduit-lang/docschema/internal/cache"
	"github.com/conduit-lang/docschema/internal/model"
	"github.com/conduit-lang/docschema/internal/transcode"
)

// FileSuffix is appended to the model name of every written schema
const FileSuffix = ".schema.json"

// ErrAbstractModel is returned when rendering a model that has no schema
var ErrAbstractModel = errors.New("abstract models have no schema")

// Rendered is an encoded schema document
type Rendered struct {
	Model  string
	Strict bool
	Body   []byte
	ETag   string
}

// Catalog renders registered models through a Transcoder
type Catalog struct {
	registry   *model.Registry
	transcoder *transcode.Transcoder
	cache      cache.Cache
	ttl        time.Duration
	logger     *zap.Logger
	workers    int
	version    string
}

// Option configures a Catalog
type Option func(*Catalog)

// WithCache stores rendered documents in c for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cat *Catalog) {
		if c != nil {
			cat.cache = c
			cat.ttl = ttl
		}
	}
}

// WithLogger sets the logger for the catalog and its transcoder
func WithLogger(logger *zap.Logger) Option {
	return func(cat *Catalog) {
		if logger != nil {
			cat.logger = logger
		}
	}
}

// WithWorkers bounds how many models RenderAll renders at once
func WithWorkers(n int) Option {
	return func(cat *Catalog) {
		if n > 0 {
			cat.workers = n
		}
	}
}

// New creates a catalog over registry. Without WithCache nothing is cached.
// Cache keys carry the registry fingerprint taken here, so models must be
// registered before New.
func New(registry *model.Registry, opts ...Option) *Catalog {
	c := &Catalog{
		registry: registry,
		cache:    cache.Nop{},
		logger:   zap.NewNop(),
		workers:  4,
		version:  registry.Fingerprint(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.transcoder = transcode.New(registry, transcode.WithLogger(c.logger.Named("transcode")))
	return c
}

// Models returns the names of every model that has a schema, sorted
func (c *Catalog) Models() []string {
	names := make([]string, 0, c.registry.Count())
	for _, name := range c.registry.List() {
		if m, ok := c.registry.Get(name); ok && !m.Abstract {
			names = append(names, name)
		}
	}
	return names
}

// Schema transcodes a model without touching the cache
func (c *Catalog) Schema(ctx context.Context, name string, strict bool) (*jsonschema.Schema, error) {
	m, ok := c.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", transcode.ErrModelNotFound, name)
	}
	if m.Abstract {
		return nil, fmt.Errorf("%w: %s", ErrAbstractModel, name)
	}
	return c.transcoder.Transcode(ctx, m, strict)
}

// Render returns the encoded schema of a model, from the cache when possible
func (c *Catalog) Render(ctx context.Context, name string, strict bool) (*Rendered, error) {
	key := cache.SchemaKey(c.version, name, strict)

	body, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		return &Rendered{Model: name, Strict: strict, Body: body, ETag: cache.GenerateETag(body)}, nil
	case !cache.IsCacheMiss(err):
		c.logger.Warn("schema cache read failed", zap.String("key", key), zap.Error(err))
	}

	s, err := c.Schema(ctx, name, strict)
	if err != nil {
		return nil, err
	}
	body, err = Encode(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema for %s: %w", name, err)
	}

	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("schema cache write failed", zap.String("key", key), zap.Error(err))
	}
	c.logger.Debug("rendered schema",
		zap.String("model", name),
		zap.Bool("strict", strict),
		zap.Int("bytes", len(body)),
	)

	return &Rendered{Model: name, Strict: strict, Body: body, ETag: cache.GenerateETag(body)}, nil
}

// RenderAll renders the named models, or every model when names is empty.
// Results follow the order of names.
func (c *Catalog) RenderAll(ctx context.Context, strict bool, names ...string) ([]*Rendered, error) {
	if len(names) == 0 {
		names = c.Models()
	}

	results := make([]*Rendered, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			r, err := c.Render(gctx, name, strict)
			if err != nil {
				return fmt.Errorf("model %s: %w", name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteDir renders models into dir as <Model>.schema.json and returns the
// written paths
func (c *Catalog) WriteDir(ctx context.Context, dir string, strict bool, names ...string) ([]string, error) {
	rendered, err := c.RenderAll(ctx, strict, names...)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(rendered))
	for _, r := range rendered {
		path := filepath.Join(dir, r.Model+FileSuffix)
		if err := os.WriteFile(path, r.Body, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Version returns the fingerprint of the models the catalog renders
func (c *Catalog) Version() string {
	return c.version
}

// Invalidate drops both cached renderings of a model and of every model whose
// schema inlines it
func (c *Catalog) Invalidate(ctx context.Context, name string) error {
	names := append([]string{name}, c.registry.Dependents(name)...)
	for _, n := range names {
		for _, key := range cache.SchemaKeys(c.version, n) {
			if err := c.cache.Delete(ctx, key); err != nil {
				return fmt.Errorf("failed to invalidate %s: %w", key, err)
			}
		}
	}
	c.logger.Debug("invalidated schemas", zap.Strings("models", names))
	return nil
}

// InvalidateAll drops every cached rendering
func (c *Catalog) InvalidateAll(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// Encode serializes a schema as indented JSON with a trailing newline
func Encode(s *jsonschema.Schema) ([]byte, error) {
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(body, '\n'), nil
}
