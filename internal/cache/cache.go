// Package cache stores rendered schema documents so repeated requests skip
// transcoding. Backends share one small interface; values are opaque bytes.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// Cache is implemented by every cache backend
type Cache interface {
	// Get returns the value stored under key or an error wrapping ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl uses the backend default and a
	// negative ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error

	// Clear removes every key owned by this cache
	Clear(ctx context.Context) error

	// Close releases backend resources
	Close() error
}

// Config holds settings shared by all backends
type Config struct {
	// DefaultTTL applies when Set is called with a zero ttl
	DefaultTTL time.Duration

	// Prefix namespaces every key
	Prefix string
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 5 * time.Minute,
		Prefix:     "docschema:",
	}
}

func miss(key string) error {
	return fmt.Errorf("%w: %s", ErrCacheMiss, key)
}

// IsCacheMiss reports whether err is a cache miss
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// Nop is a Cache that stores nothing. Every Get misses.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Get(_ context.Context, key string) ([]byte, error) { return nil, miss(key) }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, string) error { return nil }
func (Nop) Clear(context.Context) error { return nil }
func (Nop) Close() error { return nil }
