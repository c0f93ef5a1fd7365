// Package redis stores compiled serializer metadata in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

const defaultPrefix = "serializer-metadata::"

// Option configures the cache.
type Option func(*Cache)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithTTL expires entries after ttl. Zero keeps them until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// Cache is a metadata.Cache storing JSON payloads under prefixed keys.
type Cache struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
	owned  bool
}

var _ metadata.Cache = (*Cache)(nil)

// New wraps an existing client.
func New(client goredis.UniversalClient, opts ...Option) (*Cache, error) {
	if client == nil {
		return nil, errors.New("redis cache: client is nil")
	}
	c := &Cache{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// NewWithOptions creates a client from go-redis options and wraps it.
func NewWithOptions(options *goredis.Options, opts ...Option) (*Cache, error) {
	if options == nil {
		return nil, errors.New("redis cache: redis options are required")
	}
	c, err := New(goredis.NewClient(options), opts...)
	if err != nil {
		return nil, err
	}
	c.owned = true
	return c, nil
}

// Close releases the client when the cache created it. Clients passed to New
// belong to the caller and stay open.
func (c *Cache) Close() error {
	if !c.owned {
		return nil
	}
	return c.client.Close()
}

// Load implements metadata.Cache.
func (c *Cache) Load(ctx context.Context, class string) (*metadata.ClassMetadata, error) {
	data, err := c.client.Get(ctx, c.key(class)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, metadata.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis cache: get %s: %w", class, err)
	}
	var md metadata.ClassMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("redis cache: decode %s: %w", class, err)
	}
	for _, prop := range md.Properties {
		if prop != nil && prop.Type != nil {
			normalize(prop.Type)
		}
	}
	return &md, nil
}

// Save implements metadata.Cache.
func (c *Cache) Save(ctx context.Context, md *metadata.ClassMetadata) error {
	if md == nil {
		return nil
	}
	payload, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("redis cache: encode %s: %w", md.Name, err)
	}
	if err := c.client.Set(ctx, c.key(md.Name), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis cache: set %s: %w", md.Name, err)
	}
	return nil
}

// Evict implements metadata.Cache.
func (c *Cache) Evict(ctx context.Context, class string) error {
	removed, err := c.client.Del(ctx, c.key(class)).Result()
	if err != nil {
		return fmt.Errorf("redis cache: del %s: %w", class, err)
	}
	if removed == 0 {
		return metadata.ErrCacheMiss
	}
	return nil
}

// Client exposes the underlying redis client.
func (c *Cache) Client() goredis.UniversalClient {
	return c.client
}

func (c *Cache) key(class string) string {
	return c.prefix + class
}

// normalize restores non-nil params after a JSON round trip of "null".
func normalize(t *metadata.Type) {
	if t.Params == nil {
		t.Params = []metadata.Type{}
	}
	for i := range t.Params {
		normalize(&t.Params[i])
	}
}
