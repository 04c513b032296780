package catalog

import (
	"sync"
	"time"
)

// Registry publishes the current catalog Set to concurrent readers.
// Readers take a snapshot with Current and keep using it for the whole
// request; Replace swaps the snapshot without disturbing those readers.
type Registry struct {
	mu       sync.RWMutex
	set      *Set
	loadedAt time.Time
	reloads  int
}

// NewRegistry creates a registry publishing set.
func NewRegistry(set *Set) *Registry {
	return &Registry{set: set, loadedAt: time.Now().UTC()}
}

// Current returns the published Set.
func (r *Registry) Current() *Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set
}

// Replace publishes a new Set.
func (r *Registry) Replace(set *Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set = set
	r.loadedAt = time.Now().UTC()
	r.reloads++
}

// LoadedAt returns when the current Set was published.
func (r *Registry) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

// Reloads returns how many times Replace has been called.
func (r *Registry) Reloads() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reloads
}
