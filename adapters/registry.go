package adapters

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/config"
)

// Opener connects a store backend using cfg.
type Opener func(ctx context.Context, cfg *config.Config) (treefs.Store, error)

// Registry maps a backend name to the [Opener] that builds it
type Registry struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

func NewRegistry() *Registry {
	return &Registry{openers: map[string]Opener{}}
}

// Register ties an opener to a backend name and should be called for each
// backend during app init. The first registration for a name wins.
func (r *Registry) Register(backend string, opener Opener) {
	backend = strings.ToLower(backend)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.openers[backend]; exists {
		return
	}
	r.openers[backend] = opener
}

// GetOpener returns the opener registered under backend.
func (r *Registry) GetOpener(backend string) (Opener, error) {
	r.mu.RLock()
	opener, ok := r.openers[strings.ToLower(backend)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no store registered for %q", backend)
	}
	return opener, nil
}

// Open builds the store named by cfg.StoreBackend.
// All expected backends should be registered with [Registry.Register]
// before calling this function.
func (r *Registry) Open(ctx context.Context, cfg *config.Config) (treefs.Store, error) {
	opener, err := r.GetOpener(cfg.StoreBackend)
	if err != nil {
		return nil, err
	}
	return opener(ctx, cfg)
}
