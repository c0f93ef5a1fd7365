package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

func TestCacheSaveLoad(t *testing.T) {
	cache, srv := newTestCache(t, WithTTL(5*time.Second), WithPrefix("test:"))
	ctx := context.Background()

	md := metadata.NewClassMetadata("example.com/blog.BlogPost")
	comments := metadata.NewPropertyMetadata(md.Name, "comments")
	comments.SetType(metadata.NewType("ArrayCollection", metadata.NewType("example.com/blog.Comment")))
	comments.Groups = []string{"post"}
	md.AddProperty(comments)
	md.AddProperty(metadata.NewPropertyMetadata(md.Name, "title"))
	md.AddFileResource("/srv/metadata/blog.yaml")

	if err := cache.Save(ctx, md); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !srv.Exists("test:example.com/blog.BlogPost") {
		t.Fatalf("expected prefixed key in redis, keys: %v", srv.Keys())
	}
	if ttl := srv.TTL("test:example.com/blog.BlogPost"); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("expected TTL within range, got %v", ttl)
	}

	got, err := cache.Load(ctx, md.Name)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(md, got); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestCacheMissAndEvict(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	if _, err := cache.Load(ctx, "missing"); !errors.Is(err, metadata.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := cache.Evict(ctx, "missing"); !errors.Is(err, metadata.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss on evict, got %v", err)
	}

	if err := cache.Save(ctx, metadata.NewClassMetadata("Post")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := cache.Evict(ctx, "Post"); err != nil {
		t.Fatalf("evict: %v", err)
	}
	if _, err := cache.Load(ctx, "Post"); !errors.Is(err, metadata.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after evict, got %v", err)
	}
}

func TestCacheExpires(t *testing.T) {
	cache, srv := newTestCache(t, WithTTL(time.Minute))
	ctx := context.Background()

	if err := cache.Save(ctx, metadata.NewClassMetadata("Post")); err != nil {
		t.Fatalf("save: %v", err)
	}
	srv.FastForward(2 * time.Minute)
	if _, err := cache.Load(ctx, "Post"); !errors.Is(err, metadata.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestCacheCorruptPayload(t *testing.T) {
	cache, srv := newTestCache(t)
	if err := srv.Set(defaultPrefix+"Post", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := cache.Load(context.Background(), "Post")
	if err == nil || errors.Is(err, metadata.ErrCacheMiss) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := NewWithOptions(nil); err == nil {
		t.Fatalf("expected error for nil options")
	}
}

func TestFactoryUsesRedisCache(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	driver := metadata.DriverFunc(func(_ context.Context, class metadata.Class) (*metadata.ClassMetadata, error) {
		calls++
		md := metadata.NewClassMetadata(class.Name)
		prop := metadata.NewPropertyMetadata(class.Name, "createdAt")
		prop.SetType(metadata.NewType("DateTime"))
		md.AddProperty(prop)
		return md, nil
	})

	for i := 0; i < 2; i++ {
		factory := metadata.NewFactory(driver, metadata.WithCache(cache))
		md, err := factory.ClassMetadataFor(ctx, metadata.NamedClass("Post"))
		if err != nil {
			t.Fatalf("factory %d: %v", i, err)
		}
		prop, ok := md.Property("createdAt")
		if !ok || prop.Type.String() != "DateTime" {
			t.Fatalf("factory %d: unexpected property %+v", i, prop)
		}
	}
	if calls != 1 {
		t.Fatalf("expected driver to run once, ran %d times", calls)
	}
}

func newTestCache(t *testing.T, opts ...Option) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache, err := New(client, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return cache, srv
}

func TestCloseReleasesOwnedClientOnly(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	owned, err := NewWithOptions(&goredis.Options{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("NewWithOptions failed: %v", err)
	}
	if err := owned.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := owned.Client().Ping(ctx).Err(); !errors.Is(err, goredis.ErrClosed) {
		t.Fatalf("expected closed client, got %v", err)
	}

	borrowed, _ := newTestCache(t)
	if err := borrowed.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := borrowed.Client().Ping(ctx).Err(); err != nil {
		t.Fatalf("caller owned client must stay open, got %v", err)
	}
}
