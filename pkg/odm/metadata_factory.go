package odm

import (
	"errors"
	"fmt"
	"sync"
)

// MetadataFactory loads and memoizes document mappings from a MappingDriver.
type MetadataFactory struct {
	driver MappingDriver

	mu     sync.RWMutex
	loaded map[string]*ClassMetadata
}

// NewMetadataFactory wraps driver.
func NewMetadataFactory(driver MappingDriver) *MetadataFactory {
	return &MetadataFactory{driver: driver, loaded: make(map[string]*ClassMetadata)}
}

// IsTransient reports whether className is unmapped.
func (f *MetadataFactory) IsTransient(className string) bool {
	if f == nil || f.driver == nil {
		return true
	}
	if f.HasMetadataFor(className) {
		return false
	}
	return f.driver.IsTransient(className)
}

// HasMetadataFor reports whether className was already loaded.
func (f *MetadataFactory) HasMetadataFor(className string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.loaded[className]
	return ok
}

// GetMetadataFor returns the mapping for className, loading it on first use.
// Unmapped classes yield ErrNotManaged.
func (f *MetadataFactory) GetMetadataFor(className string) (*ClassMetadata, error) {
	f.mu.RLock()
	md, ok := f.loaded[className]
	f.mu.RUnlock()
	if ok {
		return md, nil
	}

	if f.IsTransient(className) {
		return nil, fmt.Errorf("odm: %s: %w", className, ErrNotManaged)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if md, ok := f.loaded[className]; ok {
		return md, nil
	}
	md = NewClassMetadata(className)
	if err := f.driver.LoadMetadataForClass(className, md); err != nil {
		if errors.Is(err, ErrNotManaged) {
			return nil, err
		}
		return nil, fmt.Errorf("odm: load mapping for %s: %w", className, err)
	}
	f.loaded[className] = md
	return md, nil
}

// AllMetadata loads every class the driver knows about.
func (f *MetadataFactory) AllMetadata() ([]*ClassMetadata, error) {
	names, err := f.driver.AllClassNames()
	if err != nil {
		return nil, fmt.Errorf("odm: list classes: %w", err)
	}
	out := make([]*ClassMetadata, 0, len(names))
	for _, name := range names {
		md, err := f.GetMetadataFor(name)
		if err != nil {
			return nil, err
		}
		out = append(out, md)
	}
	return out, nil
}
