// Package cache defines the process-lifetime ingredient cache shared by audits.
package cache

import (
	"context"
	"sync"
)

// IngredientCache maps normalized dish names to their ingredient lists.
// Implementations must be safe for concurrent use. Entries never expire.
type IngredientCache interface {
	// Lookup returns the cached entries for the given keys. Missing keys are
	// absent from the result.
	Lookup(ctx context.Context, keys []string) (map[string][]string, error)
	// Store records entries, replacing any previous value for the same key.
	Store(ctx context.Context, entries map[string][]string) error
}

// Memory is an in-process IngredientCache.
type Memory struct {
	entries map[string][]string
	mu      sync.RWMutex
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]string)}
}

// Lookup implements IngredientCache.
func (m *Memory) Lookup(_ context.Context, keys []string) (map[string][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	found := make(map[string][]string, len(keys))
	for _, key := range keys {
		if ingredients, ok := m.entries[key]; ok {
			found[key] = cloneList(ingredients)
		}
	}
	return found, nil
}

// Store implements IngredientCache.
func (m *Memory) Store(_ context.Context, entries map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, ingredients := range entries {
		m.entries[key] = cloneList(ingredients)
	}
	return nil
}

// Len returns the number of cached names.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cloneList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
