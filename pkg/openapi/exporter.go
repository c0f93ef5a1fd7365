package openapi

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

// DefaultRefPrefix is where class schemas are referenced from.
const DefaultRefPrefix = "#/components/schemas/"

// Extension keys carried on property schemas.
const (
	ExtensionGroups         = "x-serializer-groups"
	ExtensionSinceVersion   = "x-serializer-since"
	ExtensionUntilVersion   = "x-serializer-until"
	ExtensionDateTimeFormat = "x-serializer-datetime-format"
)

// ScalarFunc builds the schema for a scalar serializer type.
type ScalarFunc func(t metadata.Type) *openapi3.Schema

// Option configures an Exporter.
type Option func(*Exporter)

// WithRefPrefix overrides DefaultRefPrefix.
func WithRefPrefix(prefix string) Option {
	return func(e *Exporter) {
		if prefix != "" {
			e.refPrefix = prefix
		}
	}
}

// WithScalar maps a serializer type name to a schema builder.
func WithScalar(name string, fn ScalarFunc) Option {
	return func(e *Exporter) {
		if name != "" && fn != nil {
			e.scalars[name] = fn
		}
	}
}

// WithCollectionType marks name as a list type rendered as an array.
func WithCollectionType(name string) Option {
	return func(e *Exporter) {
		if name != "" {
			e.collections[name] = struct{}{}
		}
	}
}

// WithDescriptionPolicy replaces the sanitizer applied to descriptions. Nil
// disables sanitizing.
func WithDescriptionPolicy(policy *bluemonday.Policy) Option {
	return func(e *Exporter) {
		e.policy = policy
	}
}

// Exporter converts serializer metadata into OpenAPI schemas.
type Exporter struct {
	refPrefix   string
	scalars     map[string]ScalarFunc
	collections map[string]struct{}
	policy      *bluemonday.Policy
}

// New builds an Exporter with the default scalar table.
func New(options ...Option) *Exporter {
	e := &Exporter{
		refPrefix:   DefaultRefPrefix,
		scalars:     defaultScalars(),
		collections: map[string]struct{}{"array": {}, "list": {}, "ArrayCollection": {}},
		policy:      defaultDescriptionPolicy(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func defaultScalars() map[string]ScalarFunc {
	str := func(metadata.Type) *openapi3.Schema { return openapi3.NewStringSchema() }
	integer := func(metadata.Type) *openapi3.Schema { return openapi3.NewIntegerSchema() }
	number := func(metadata.Type) *openapi3.Schema { return openapi3.NewFloat64Schema() }
	boolean := func(metadata.Type) *openapi3.Schema { return openapi3.NewBoolSchema() }
	dateTime := func(t metadata.Type) *openapi3.Schema {
		schema := openapi3.NewDateTimeSchema()
		if len(t.Params) > 0 && t.Params[0].Name != "" {
			schema.Extensions = map[string]any{ExtensionDateTimeFormat: t.Params[0].Name}
		}
		return schema
	}
	return map[string]ScalarFunc{
		"string":            str,
		"integer":           integer,
		"int":               integer,
		"float":             number,
		"double":            number,
		"boolean":           boolean,
		"bool":              boolean,
		"DateTime":          dateTime,
		"DateTimeImmutable": dateTime,
		"DateInterval":      str,
	}
}

// SchemaName is the component name used for a class.
func SchemaName(class string) string {
	return metadata.ShortName(class)
}

// Schema renders one class as an object schema keyed by serialized names.
func (e *Exporter) Schema(md *metadata.ClassMetadata) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	if md == nil {
		return schema
	}
	schema.Title = SchemaName(md.Name)
	schema.Properties = make(openapi3.Schemas, len(md.Properties))
	for _, prop := range md.Properties {
		if prop == nil {
			continue
		}
		name := prop.SerializedName
		if name == "" {
			name = prop.Name
		}
		schema.Properties[name] = e.propertySchema(prop)
	}
	return schema
}

// TypeSchema renders a type descriptor. Nil yields an unconstrained schema.
func (e *Exporter) TypeSchema(t *metadata.Type) *openapi3.SchemaRef {
	if t == nil || t.Name == "" {
		return openapi3.NewSchemaRef("", &openapi3.Schema{})
	}
	if fn, ok := e.scalars[t.Name]; ok {
		return openapi3.NewSchemaRef("", fn(*t))
	}
	if _, ok := e.collections[t.Name]; ok {
		return openapi3.NewSchemaRef("", e.collectionSchema(*t))
	}
	return openapi3.NewSchemaRef(e.refPrefix+SchemaName(t.Name), nil)
}

func (e *Exporter) collectionSchema(t metadata.Type) *openapi3.Schema {
	switch len(t.Params) {
	case 0:
		return openapi3.NewArraySchema().WithItems(&openapi3.Schema{})
	case 1:
		schema := openapi3.NewArraySchema()
		schema.Items = e.TypeSchema(&t.Params[0])
		return schema
	default:
		schema := openapi3.NewObjectSchema()
		value := e.TypeSchema(&t.Params[1])
		schema.AdditionalProperties = openapi3.AdditionalProperties{Schema: value}
		return schema
	}
}

func (e *Exporter) propertySchema(prop *metadata.PropertyMetadata) *openapi3.SchemaRef {
	ref := e.TypeSchema(prop.Type)
	description := sanitizeDescription(e.policy, prop.Description)
	extensions := propertyExtensions(prop)

	if !prop.ReadOnly && description == "" && len(extensions) == 0 {
		return ref
	}
	if ref.Ref != "" {
		// Siblings of $ref are ignored in OpenAPI 3.0, so wrap it.
		ref = openapi3.NewSchemaRef("", &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}})
	}
	value := ref.Value
	value.ReadOnly = prop.ReadOnly
	value.Description = description
	if len(extensions) > 0 {
		if value.Extensions == nil {
			value.Extensions = make(map[string]any, len(extensions))
		}
		for key, ext := range extensions {
			value.Extensions[key] = ext
		}
	}
	return ref
}

func propertyExtensions(prop *metadata.PropertyMetadata) map[string]any {
	out := make(map[string]any)
	if len(prop.Groups) > 0 {
		out[ExtensionGroups] = append([]string(nil), prop.Groups...)
	}
	if prop.SinceVersion != "" {
		out[ExtensionSinceVersion] = prop.SinceVersion
	}
	if prop.UntilVersion != "" {
		out[ExtensionUntilVersion] = prop.UntilVersion
	}
	return out
}

// Components renders every class into a components object. Classes sharing a
// short name keep the first occurrence.
func (e *Exporter) Components(mds ...*metadata.ClassMetadata) openapi3.Components {
	components := openapi3.NewComponents()
	components.Schemas = make(openapi3.Schemas, len(mds))
	for _, md := range mds {
		if md == nil {
			continue
		}
		name := SchemaName(md.Name)
		if _, exists := components.Schemas[name]; exists {
			continue
		}
		components.Schemas[name] = openapi3.NewSchemaRef("", e.Schema(md))
	}
	return components
}

// Document wraps the components of mds in a minimal OpenAPI document.
func (e *Exporter) Document(title, version string, mds ...*metadata.ClassMetadata) *openapi3.T {
	components := e.Components(mds...)
	return &openapi3.T{
		OpenAPI:    "3.0.3",
		Info:       &openapi3.Info{Title: title, Version: version},
		Paths:      openapi3.NewPaths(),
		Components: &components,
	}
}

// References lists the component names referenced from schema, sorted.
func References(schema *openapi3.Schema) []string {
	seen := make(map[string]struct{})
	collectRefs(schema, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectRefs(schema *openapi3.Schema, seen map[string]struct{}) {
	if schema == nil {
		return
	}
	visit := func(ref *openapi3.SchemaRef) {
		if ref == nil {
			return
		}
		if ref.Ref != "" {
			seen[ref.Ref[strings.LastIndex(ref.Ref, "/")+1:]] = struct{}{}
			return
		}
		collectRefs(ref.Value, seen)
	}
	for _, prop := range schema.Properties {
		visit(prop)
	}
	visit(schema.Items)
	visit(schema.AdditionalProperties.Schema)
	for _, ref := range schema.AllOf {
		visit(ref)
	}
}
