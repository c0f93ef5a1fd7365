package odmtype_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-serializer-metadata/internal/fixtures/documents"
	"github.com/goliatone/go-serializer-metadata/internal/fixtures/plain"
	"github.com/goliatone/go-serializer-metadata/pkg/driver/odmtype"
	"github.com/goliatone/go-serializer-metadata/pkg/driver/structtag"
	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
	"github.com/goliatone/go-serializer-metadata/pkg/odm"
	"github.com/goliatone/go-serializer-metadata/pkg/testsupport"
)

type countingRegistry struct {
	manager odm.Manager
	calls   int
}

func (r *countingRegistry) ManagerForClass(string) (odm.Manager, error) {
	r.calls++
	return r.manager, nil
}

func documentManager(t *testing.T) *odm.DocumentManager {
	t.Helper()
	dm, err := odm.NewDocumentManager(odm.Configuration{
		MappingDriver:  odm.NewTagDriver(documents.All()...),
		ProxyDir:       filepath.Join(os.TempDir(), "SerializerMetadataTestProxies"),
		ProxyNamespace: "Proxies",
	})
	if err != nil {
		t.Fatalf("document manager: %v", err)
	}
	return dm
}

func tagDriver() metadata.Driver {
	return structtag.New()
}

func typeDriver(t *testing.T, options ...odmtype.Option) (*odmtype.Driver, *countingRegistry) {
	t.Helper()
	registry := &countingRegistry{manager: documentManager(t)}
	return odmtype.New(tagDriver(), registry, options...), registry
}

func loadBlogPost(t *testing.T) *metadata.ClassMetadata {
	t.Helper()
	driver, registry := typeDriver(t)
	md, err := driver.LoadMetadataForClass(context.Background(), metadata.ClassFor[documents.BlogPost]())
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	if registry.calls == 0 {
		t.Fatalf("expected the manager registry to be consulted")
	}
	return md
}

func propertyType(t *testing.T, md *metadata.ClassMetadata, name string) *metadata.Type {
	t.Helper()
	prop, ok := md.Property(name)
	if !ok {
		t.Fatalf("property %q missing; have %v", name, md.PropertyNames())
	}
	return prop.Type
}

func TestTypelessPropertyIsGivenTypeFromDocumentMapping(t *testing.T) {
	md := loadBlogPost(t)

	want := &metadata.Type{Name: "DateTime", Params: []metadata.Type{}}
	if diff := cmp.Diff(want, propertyType(t, md, "createdAt")); diff != "" {
		t.Fatalf("createdAt type mismatch (-want +got):\n%s", diff)
	}
}

func TestSingleValuedAssociationIsProperlyHinted(t *testing.T) {
	md := loadBlogPost(t)

	want := &metadata.Type{Name: metadata.ClassFor[documents.Author]().Name, Params: []metadata.Type{}}
	if diff := cmp.Diff(want, propertyType(t, md, "author")); diff != "" {
		t.Fatalf("author type mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiValuedAssociationIsProperlyHinted(t *testing.T) {
	md := loadBlogPost(t)

	want := &metadata.Type{Name: "ArrayCollection", Params: []metadata.Type{
		{Name: metadata.ClassFor[documents.Comment]().Name, Params: []metadata.Type{}},
	}}
	if diff := cmp.Diff(want, propertyType(t, md, "comments")); diff != "" {
		t.Fatalf("comments type mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeGuessByMappingIsOverwrittenByDelegateDriver(t *testing.T) {
	md := loadBlogPost(t)

	// The mapping says boolean; the serializer tag declares integer.
	want := &metadata.Type{Name: "integer", Params: []metadata.Type{}}
	if diff := cmp.Diff(want, propertyType(t, md, "published")); diff != "" {
		t.Fatalf("published type mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmappedPropertiesStayUntyped(t *testing.T) {
	md := loadBlogPost(t)

	if got := propertyType(t, md, "id"); got != nil {
		t.Fatalf("identifier is not a mapped field, expected no type, got %v", got)
	}
	want := []string{"id", "title", "slug", "createdAt", "published", "comments", "author"}
	if diff := cmp.Diff(want, md.PropertyNames()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
}

func TestNonDocumentClassIsNotModified(t *testing.T) {
	class := metadata.ClassFor[plain.BlogPost]()

	plainMetadata, err := tagDriver().LoadMetadataForClass(context.Background(), class)
	if err != nil {
		t.Fatalf("plain metadata: %v", err)
	}
	driver, registry := typeDriver(t)
	decorated, err := driver.LoadMetadataForClass(context.Background(), class)
	if err != nil {
		t.Fatalf("decorated metadata: %v", err)
	}
	if registry.calls == 0 {
		t.Fatalf("expected the manager registry to be consulted")
	}

	// Timestamps differ by construction time only.
	if diff := testsupport.DiffMetadata(plainMetadata, decorated); diff != "" {
		t.Fatalf("decorated metadata differs (-plain +decorated):\n%s", diff)
	}
}

func TestNoManagerFoundLeavesMetadataUntouched(t *testing.T) {
	registry := odm.NewRegistry()
	registry.MustRegister("default", documentManager(t))

	class := metadata.ClassFor[plain.Article]()
	plainMetadata, err := tagDriver().LoadMetadataForClass(context.Background(), class)
	if err != nil {
		t.Fatalf("plain metadata: %v", err)
	}
	decorated, err := odmtype.New(tagDriver(), registry).LoadMetadataForClass(context.Background(), class)
	if err != nil {
		t.Fatalf("decorated metadata: %v", err)
	}
	if diff := testsupport.DiffMetadata(plainMetadata, decorated); diff != "" {
		t.Fatalf("decorated metadata differs (-plain +decorated):\n%s", diff)
	}
}

func TestNodeAndParentPropertiesAreHidden(t *testing.T) {
	driver, _ := typeDriver(t)
	md, err := driver.LoadMetadataForClass(context.Background(), metadata.ClassFor[documents.Page]())
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}

	want := []string{"id", "title", "keywords", "views", "rating", "draft", "virtual"}
	if diff := cmp.Diff(want, md.PropertyNames()); diff != "" {
		t.Fatalf("property names mismatch (-want +got):\n%s", diff)
	}

	expectations := map[string]*metadata.Type{
		"title":    metadata.TypePtr("string"),
		"keywords": metadata.TypePtr("array"),
		"views":    metadata.TypePtr("integer"),
		"rating":   metadata.TypePtr("float"),
		"draft":    nil,
		"virtual":  nil,
	}
	for name, want := range expectations {
		if diff := cmp.Diff(want, propertyType(t, md, name)); diff != "" {
			t.Fatalf("%s type mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestVirtualPropertiesAreSkipped(t *testing.T) {
	delegate := metadata.DriverFunc(func(ctx context.Context, class metadata.Class) (*metadata.ClassMetadata, error) {
		md := metadata.NewClassMetadata(class.Name)
		prop := metadata.NewPropertyMetadata(class.Name, "createdAt")
		prop.Virtual = true
		md.AddProperty(prop)
		return md, nil
	})
	registry := &countingRegistry{manager: documentManager(t)}

	md, err := odmtype.New(delegate, registry).LoadMetadataForClass(context.Background(), metadata.ClassFor[documents.BlogPost]())
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	if got := propertyType(t, md, "createdAt"); got != nil {
		t.Fatalf("virtual property must not be typed, got %v", got)
	}
}

func TestOptionsCustomiseHints(t *testing.T) {
	driver, _ := typeDriver(t,
		odmtype.WithCollectionType("list"),
		odmtype.WithFieldType("DATE", "DateTimeImmutable"),
	)
	md, err := driver.LoadMetadataForClass(context.Background(), metadata.ClassFor[documents.BlogPost]())
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}

	if diff := cmp.Diff(metadata.TypePtr("DateTimeImmutable"), propertyType(t, md, "createdAt")); diff != "" {
		t.Fatalf("createdAt type mismatch (-want +got):\n%s", diff)
	}
	wantComments := metadata.TypePtr("list", metadata.NewType(metadata.ClassFor[documents.Comment]().Name))
	if diff := cmp.Diff(wantComments, propertyType(t, md, "comments")); diff != "" {
		t.Fatalf("comments type mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownFieldTypesLeavePropertyUntyped(t *testing.T) {
	driver, _ := typeDriver(t, odmtype.WithFieldTypes(map[string]string{"string": "string"}))
	md, err := driver.LoadMetadataForClass(context.Background(), metadata.ClassFor[documents.BlogPost]())
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	if got := propertyType(t, md, "createdAt"); got != nil {
		t.Fatalf("expected createdAt to stay untyped, got %v", got)
	}
	if diff := cmp.Diff(metadata.TypePtr("string"), propertyType(t, md, "slug")); diff != "" {
		t.Fatalf("slug type mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryErrorsPropagate(t *testing.T) {
	boom := errors.New("registry offline")
	registry := odm.ManagerFunc(func(string) (odm.Manager, error) { return nil, boom })

	_, err := odmtype.New(tagDriver(), registry).LoadMetadataForClass(context.Background(), metadata.ClassFor[documents.BlogPost]())
	if !errors.Is(err, boom) {
		t.Fatalf("expected registry error, got %v", err)
	}
}

func TestDelegateErrorsPropagate(t *testing.T) {
	driver, registry := typeDriver(t)
	_, err := driver.LoadMetadataForClass(context.Background(), metadata.NamedClass("NotAStruct"))
	if !errors.Is(err, metadata.ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata from the delegate, got %v", err)
	}
	if registry.calls != 0 {
		t.Fatalf("registry must not be consulted when the delegate fails")
	}
}

func TestDriverWorksAsDecorator(t *testing.T) {
	registry := &countingRegistry{manager: documentManager(t)}
	driver := metadata.Decorate(tagDriver(), odmtype.New(nil, registry))

	md, err := driver.LoadMetadataForClass(context.Background(), metadata.ClassFor[documents.BlogPost]())
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	if diff := cmp.Diff(metadata.TypePtr("DateTime"), propertyType(t, md, "createdAt")); diff != "" {
		t.Fatalf("createdAt type mismatch (-want +got):\n%s", diff)
	}
}
