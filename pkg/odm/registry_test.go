package odm_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-serializer-metadata/internal/fixtures/documents"
	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
	"github.com/goliatone/go-serializer-metadata/pkg/odm"
)

func TestRegistryManagerForClass(t *testing.T) {
	tags := odm.MustNewDocumentManager(odm.Configuration{MappingDriver: odm.NewTagDriver(documents.All()...)})
	files := odm.MustNewDocumentManager(odm.Configuration{MappingDriver: odm.NewYAMLDriver(mappingFS(), "mapping")})

	registry := odm.NewRegistry()
	registry.MustRegister("Tags", tags)
	registry.MustRegister("files", files)

	if diff := cmp.Diff([]string{"tags", "files"}, registry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if !registry.Has(" TAGS ") {
		t.Fatalf("lookups must be case-insensitive")
	}

	got, err := registry.ManagerForClass(metadata.ClassFor[documents.BlogPost]().Name)
	if err != nil || got != odm.Manager(tags) {
		t.Fatalf("expected tag manager, got %v, %v", got, err)
	}
	got, err = registry.ManagerForClass("example.com/blog.Page")
	if err != nil || got != odm.Manager(files) {
		t.Fatalf("expected file manager, got %v, %v", got, err)
	}

	_, err = registry.ManagerForClass(metadata.ClassFor[documents.Draft]().Name)
	if !errors.Is(err, odm.ErrNoManagerFound) {
		t.Fatalf("expected ErrNoManagerFound, got %v", err)
	}
}

func TestRegistryRegistrationErrors(t *testing.T) {
	registry := odm.NewRegistry()
	manager := odm.MustNewDocumentManager(odm.Configuration{MappingDriver: odm.NewYAMLDriver(fstest.MapFS{}, ".")})

	if err := registry.Register("default", nil); err == nil {
		t.Fatalf("expected error for nil manager")
	}
	if err := registry.Register("  ", manager); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := registry.Register("default", manager); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("DEFAULT", manager); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if _, err := registry.Manager("missing"); err == nil {
		t.Fatalf("expected lookup error")
	}
	if got, err := registry.Manager("default"); err != nil || got != odm.Manager(manager) {
		t.Fatalf("Manager(default) = %v, %v", got, err)
	}
}

func TestManagerFunc(t *testing.T) {
	var registry odm.ManagerRegistry = odm.ManagerFunc(func(string) (odm.Manager, error) {
		return nil, odm.ErrNoManagerFound
	})
	if _, err := registry.ManagerForClass("x"); !errors.Is(err, odm.ErrNoManagerFound) {
		t.Fatalf("expected ErrNoManagerFound, got %v", err)
	}
}
