package structtag_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-serializer-metadata/internal/fixtures/plain"
	"github.com/goliatone/go-serializer-metadata/pkg/driver/structtag"
	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
	"github.com/goliatone/go-serializer-metadata/pkg/naming"
)

func TestLoadMetadataForClass(t *testing.T) {
	class := metadata.ClassFor[plain.BlogPost]()
	md, err := structtag.New().LoadMetadataForClass(context.Background(), class)
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}

	owner := class.Name
	want := &metadata.ClassMetadata{
		Name: owner,
		Properties: []*metadata.PropertyMetadata{
			{Class: owner, Name: "id", SerializedName: "id", Type: metadata.TypePtr("string"), Groups: []string{"comments", "post"}},
			{Class: owner, Name: "title", SerializedName: "title", Type: metadata.TypePtr("string"), Groups: []string{"comments", "post"}},
			{Class: owner, Name: "createdAt", SerializedName: "createdAt", Type: metadata.TypePtr("DateTime", metadata.NewType("Y-m-d")), ReadOnly: true},
			{Class: owner, Name: "published", SerializedName: "is_published", Type: metadata.TypePtr("boolean")},
			{Class: owner, Name: "tags", SerializedName: "tags", Type: metadata.TypePtr("array", metadata.NewType("string")), SkipWhenEmpty: true},
			{Class: owner, Name: "metadata", SerializedName: "metadata"},
		},
	}

	if diff := cmp.Diff(want, md, cmpopts.IgnoreFields(metadata.ClassMetadata{}, "CreatedAt")); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if md.CreatedAt.IsZero() {
		t.Fatalf("expected creation timestamp")
	}
}

func TestEmbeddedStructsAreFlattened(t *testing.T) {
	md, err := structtag.New().LoadMetadataForClass(context.Background(), metadata.ClassFor[plain.Article]())
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}

	if diff := cmp.Diff([]string{"updatedAt", "headline"}, md.PropertyNames()); diff != "" {
		t.Fatalf("property names mismatch (-want +got):\n%s", diff)
	}
	updated, _ := md.Property("updatedAt")
	if updated.Class != metadata.ClassFor[plain.Timestamps]().Name {
		t.Fatalf("embedded property should keep its declaring class, got %q", updated.Class)
	}
	if updated.SinceVersion != "1.2" {
		t.Fatalf("since version mismatch: %q", updated.SinceVersion)
	}
	headline, _ := md.Property("headline")
	if headline.Description != "Main, visible title" {
		t.Fatalf("description mismatch: %q", headline.Description)
	}
}

func TestNamingStrategyApplies(t *testing.T) {
	driver := structtag.New(structtag.WithNamingStrategy(naming.SerializedNameAware{Delegate: naming.NewCamelCaseToSnake()}))
	md, err := driver.LoadMetadataForClass(context.Background(), metadata.ClassFor[plain.BlogPost]())
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	created, _ := md.Property("createdAt")
	if created.SerializedName != "created_at" {
		t.Fatalf("expected snake case name, got %q", created.SerializedName)
	}
	published, _ := md.Property("published")
	if published.SerializedName != "is_published" {
		t.Fatalf("explicit name must win, got %q", published.SerializedName)
	}
}

type customTagged struct {
	Name string `json:"name" meta:"type=string,name=label"`
}

func TestCustomTagName(t *testing.T) {
	md, err := structtag.New(structtag.WithTagName("meta")).LoadMetadataForClass(context.Background(), metadata.ClassFor[customTagged]())
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	prop, ok := md.Property("name")
	if !ok || prop.SerializedName != "label" || prop.Type.Name != "string" {
		t.Fatalf("unexpected property %#v", prop)
	}
}

type badType struct {
	Value string `serializer:"type=array<string"`
}

func TestInvalidTypeIsReported(t *testing.T) {
	_, err := structtag.New().LoadMetadataForClass(context.Background(), metadata.ClassFor[badType]())
	if !errors.Is(err, metadata.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestNonStructClassesHaveNoMetadata(t *testing.T) {
	driver := structtag.New()
	for _, class := range []metadata.Class{metadata.NamedClass("Unknown"), metadata.ClassOf(42)} {
		if _, err := driver.LoadMetadataForClass(context.Background(), class); !errors.Is(err, metadata.ErrNoMetadata) {
			t.Fatalf("%s: expected ErrNoMetadata, got %v", class.Name, err)
		}
	}
}
