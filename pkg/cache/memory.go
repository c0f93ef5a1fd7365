// Package cache provides metadata.Cache implementations.
package cache

import (
	"context"
	"sync"

	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

// ErrCacheMiss is returned when nothing is stored for a class.
var ErrCacheMiss = metadata.ErrCacheMiss

// Memory keeps compiled metadata in process. Entries are cloned on the way in
// and out so callers cannot mutate cached state.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*metadata.ClassMetadata
}

var _ metadata.Cache = (*Memory)(nil)

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*metadata.ClassMetadata)}
}

// Load implements metadata.Cache.
func (m *Memory) Load(_ context.Context, class string) (*metadata.ClassMetadata, error) {
	m.mu.RLock()
	md, ok := m.entries[class]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	return md.Clone(), nil
}

// Save implements metadata.Cache.
func (m *Memory) Save(_ context.Context, md *metadata.ClassMetadata) error {
	if md == nil {
		return nil
	}
	m.mu.Lock()
	m.entries[md.Name] = md.Clone()
	m.mu.Unlock()
	return nil
}

// Evict implements metadata.Cache.
func (m *Memory) Evict(_ context.Context, class string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[class]; !ok {
		return ErrCacheMiss
	}
	delete(m.entries, class)
	return nil
}

// Len reports the number of cached classes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
