package adapters

import (
	"context"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/config"
)

// NOTE: If build bloat becomes a concern for unused backends
// look into build tags i.e. +build !noduckdb

type BuiltInBackend = string

const (
	MemoryBackend BuiltInBackend = config.MemoryBackend
	MongoBackend  BuiltInBackend = config.MongoBackend
	DuckDBBackend BuiltInBackend = config.DuckDBBackend
)

// RegisterBuiltins registers all built-in backends by default
// or only the specific ones if keys are provided
func (r *Registry) RegisterBuiltins(backends ...BuiltInBackend) {
	if len(backends) == 0 {
		backends = append(backends, MemoryBackend, MongoBackend, DuckDBBackend)
	}

	for _, key := range backends {
		switch key {
		case MemoryBackend:
			r.Register(MemoryBackend, func(context.Context, *config.Config) (treefs.Store, error) {
				return NewMemoryStore(), nil
			})
		case MongoBackend:
			r.Register(MongoBackend, func(ctx context.Context, cfg *config.Config) (treefs.Store, error) {
				return NewMongoStore(ctx, cfg)
			})
		case DuckDBBackend:
			r.Register(DuckDBBackend, func(ctx context.Context, cfg *config.Config) (treefs.Store, error) {
				return NewDuckDBStore(ctx, cfg.DuckDBPath)
			})
		}
	}
}

// Open builds the store named by cfg.StoreBackend from a registry holding every built-in backend.
func Open(ctx context.Context, cfg *config.Config) (treefs.Store, error) {
	r := NewRegistry()
	r.RegisterBuiltins()
	return r.Open(ctx, cfg)
}
