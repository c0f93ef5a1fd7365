package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss is returned by Cache implementations when nothing is stored
// for a class.
var ErrCacheMiss = errors.New("metadata: cache miss")

// Cache persists compiled class metadata between factory instances.
type Cache interface {
	Load(ctx context.Context, class string) (*ClassMetadata, error)
	Save(ctx context.Context, md *ClassMetadata) error
	Evict(ctx context.Context, class string) error
}

// FactoryOption customises a Factory.
type FactoryOption func(*Factory)

// WithCache stores compiled metadata in cache.
func WithCache(cache Cache) FactoryOption {
	return func(f *Factory) {
		f.cache = cache
	}
}

// WithLogger injects a zap logger. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFreshnessCheck makes cached entries stale once any of their file
// resources changed after the metadata was created.
func WithFreshnessCheck(enabled bool) FactoryOption {
	return func(f *Factory) {
		f.freshness = enabled
	}
}

// WithModTime overrides how file resource modification times are read.
func WithModTime(fn func(path string) (time.Time, error)) FactoryOption {
	return func(f *Factory) {
		if fn != nil {
			f.modTime = fn
		}
	}
}

// Factory fronts a Driver with an in-process map and an optional Cache.
// Concurrent lookups for the same class share one driver call.
type Factory struct {
	driver    Driver
	cache     Cache
	logger    *zap.Logger
	freshness bool
	modTime   func(path string) (time.Time, error)

	mu     sync.RWMutex
	loaded map[string]*ClassMetadata
	group  singleflight.Group
}

// NewFactory constructs a Factory around driver.
func NewFactory(driver Driver, options ...FactoryOption) *Factory {
	f := &Factory{
		driver:  driver,
		logger:  zap.NewNop(),
		modTime: statModTime,
		loaded:  make(map[string]*ClassMetadata),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// ClassMetadataFor returns a copy of the metadata for class, loading and
// caching it on first use.
func (f *Factory) ClassMetadataFor(ctx context.Context, class Class) (*ClassMetadata, error) {
	if ctx == nil {
		return nil, errors.New("metadata: context is required")
	}
	if f.driver == nil {
		return nil, errors.New("metadata: factory driver is nil")
	}
	if !class.Valid() {
		return nil, ErrInvalidClass
	}

	if md, ok := f.fromMemory(class.Name); ok {
		return md.Clone(), nil
	}

	result, err, _ := f.group.Do(class.Name, func() (any, error) {
		if md, ok := f.fromMemory(class.Name); ok {
			return md, nil
		}
		if md := f.fromCache(ctx, class.Name); md != nil {
			f.remember(md)
			return md, nil
		}

		md, err := f.driver.LoadMetadataForClass(ctx, class)
		if err != nil {
			return nil, err
		}
		if md == nil {
			return nil, fmt.Errorf("metadata: %s: %w", class.Name, ErrNoMetadata)
		}
		f.remember(md)
		f.store(ctx, md)
		return md, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*ClassMetadata).Clone(), nil
}

// Evict drops class from memory and from the cache.
func (f *Factory) Evict(ctx context.Context, class string) error {
	f.mu.Lock()
	delete(f.loaded, class)
	f.mu.Unlock()

	if f.cache == nil {
		return nil
	}
	if err := f.cache.Evict(ctx, class); err != nil && !errors.Is(err, ErrCacheMiss) {
		return fmt.Errorf("metadata: evict %s: %w", class, err)
	}
	return nil
}

func (f *Factory) fromMemory(class string) (*ClassMetadata, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	md, ok := f.loaded[class]
	return md, ok
}

func (f *Factory) remember(md *ClassMetadata) {
	f.mu.Lock()
	f.loaded[md.Name] = md
	f.mu.Unlock()
}

func (f *Factory) fromCache(ctx context.Context, class string) *ClassMetadata {
	if f.cache == nil {
		return nil
	}
	md, err := f.cache.Load(ctx, class)
	switch {
	case errors.Is(err, ErrCacheMiss):
		f.logger.Debug("metadata cache miss", zap.String("class", class))
		return nil
	case err != nil:
		f.logger.Warn("metadata cache load failed", zap.String("class", class), zap.Error(err))
		return nil
	case md == nil:
		return nil
	}
	if f.freshness && !f.isFresh(md) {
		f.logger.Debug("metadata cache entry is stale", zap.String("class", class))
		if err := f.cache.Evict(ctx, class); err != nil && !errors.Is(err, ErrCacheMiss) {
			f.logger.Warn("metadata cache evict failed", zap.String("class", class), zap.Error(err))
		}
		return nil
	}
	f.logger.Debug("metadata cache hit", zap.String("class", class))
	return md
}

func (f *Factory) store(ctx context.Context, md *ClassMetadata) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Save(ctx, md); err != nil {
		f.logger.Warn("metadata cache save failed", zap.String("class", md.Name), zap.Error(err))
	}
}

func (f *Factory) isFresh(md *ClassMetadata) bool {
	for _, path := range md.FileResources {
		modified, err := f.modTime(path)
		if err != nil {
			return false
		}
		if modified.After(md.CreatedAt) {
			return false
		}
	}
	return true
}

func statModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
