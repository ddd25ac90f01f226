package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps identifiers to surfaces.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[string]*Surface
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]*Surface)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide surface table.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Create registers a new surface under id.
func (r *Registry) Create(id string, width, height float64) (*Surface, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surfaces[id]; ok {
		return nil, fmt.Errorf("create surface %q: %w", id, ErrSurfaceExists)
	}
	s := NewSurface(id, width, height)
	r.surfaces[id] = s
	logger().Debug("surface created", "id", id, "width", width, "height", height)
	return s, nil
}

// Lookup returns the surface registered under id.
func (r *Registry) Lookup(id string) (*Surface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[id]
	return s, ok
}

// Remove drops a surface. It reports whether the id was registered.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.surfaces[id]
	delete(r.surfaces, id)
	return ok
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.surfaces))
	for id := range r.surfaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
