package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-serializer-metadata/pkg/cache"
	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()

	if _, err := store.Load(ctx, "Post"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	md := metadata.NewClassMetadata("Post")
	prop := metadata.NewPropertyMetadata("Post", "title")
	prop.SetType(metadata.NewType("string"))
	md.AddProperty(prop)

	if err := store.Save(ctx, md); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, _ := md.Property("title")
	saved.SerializedName = "mutated"

	got, err := store.Load(ctx, "Post")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cached, _ := got.Property("title"); cached.SerializedName != "title" {
		t.Fatalf("cached entry must not share state with the saved value")
	}
	if diff := cmp.Diff([]string{"title"}, got.PropertyNames()); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one entry, got %d", store.Len())
	}

	if err := store.Evict(ctx, "Post"); err != nil {
		t.Fatalf("evict: %v", err)
	}
	if err := store.Evict(ctx, "Post"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("expected cache miss on second evict, got %v", err)
	}
}

type countingDriver struct {
	calls int
}

func (d *countingDriver) LoadMetadataForClass(_ context.Context, class metadata.Class) (*metadata.ClassMetadata, error) {
	d.calls++
	return metadata.NewClassMetadata(class.Name), nil
}

func TestMemorySharedAcrossFactories(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	driver := &countingDriver{}

	first := metadata.NewFactory(driver, metadata.WithCache(store))
	if _, err := first.ClassMetadataFor(ctx, metadata.NamedClass("Post")); err != nil {
		t.Fatalf("first factory: %v", err)
	}
	second := metadata.NewFactory(driver, metadata.WithCache(store))
	if _, err := second.ClassMetadataFor(ctx, metadata.NamedClass("Post")); err != nil {
		t.Fatalf("second factory: %v", err)
	}
	if driver.calls != 1 {
		t.Fatalf("expected the second factory to hit the cache, driver called %d times", driver.calls)
	}
}
