package odm

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-serializer-metadata/internal/tagutil"
	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

// DefaultTagName is the struct tag read by TagDriver.
const DefaultTagName = "odm"

var timeType = reflect.TypeOf(time.Time{})

// TagDriver maps registered Go struct types through `odm:"..."` tags:
//
//	ID        string     `odm:"id"`
//	Node      any        `odm:"node"`
//	Parent    any        `odm:"parentDocument"`
//	CreatedAt time.Time  `odm:"field,type=date"`
//	Tags      []string   `odm:"field"`              // string, multivalue
//	Author    *Author    `odm:"referenceOne"`       // target inferred
//	Comments  []*Comment `odm:"referenceMany,target=Comment"`
//
// Untagged fields are not mapped. Scalar types default from the Go type and
// reference targets default from the field's element type. A relative target
// name resolves against the owning type's package.
type TagDriver struct {
	tagName string

	mu    sync.RWMutex
	types map[string]reflect.Type
}

var _ MappingDriver = (*TagDriver)(nil)

// NewTagDriver registers documents given as values, pointers, or
// reflect.Types.
func NewTagDriver(documents ...any) *TagDriver {
	d := &TagDriver{tagName: DefaultTagName, types: make(map[string]reflect.Type)}
	for _, doc := range documents {
		d.Register(doc)
	}
	return d
}

// Register adds a document type. Non-struct values are ignored.
func (d *TagDriver) Register(document any) {
	class := metadata.ClassOf(document)
	if class.Type == nil || class.Type.Kind() != reflect.Struct {
		return
	}
	d.mu.Lock()
	d.types[class.Name] = class.Type
	d.mu.Unlock()
}

// IsTransient implements MappingDriver.
func (d *TagDriver) IsTransient(className string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.types[className]
	return !ok
}

// AllClassNames implements MappingDriver.
func (d *TagDriver) AllClassNames() ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.types))
	for name := range d.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadMetadataForClass implements MappingDriver.
func (d *TagDriver) LoadMetadataForClass(className string, md *ClassMetadata) error {
	d.mu.RLock()
	t, ok := d.types[className]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("odm: tag driver: %s: %w", className, ErrNotManaged)
	}
	return d.mapStruct(t, md)
}

func (d *TagDriver) mapStruct(t reflect.Type, md *ClassMetadata) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		raw, ok := field.Tag.Lookup(d.tagName)
		if !ok {
			if field.Anonymous {
				if embedded := metadata.Indirect(field.Type); embedded.Kind() == reflect.Struct {
					if err := d.mapStruct(embedded, md); err != nil {
						return err
					}
				}
			}
			continue
		}
		if raw == "-" {
			continue
		}
		if err := d.mapField(t, field, raw, md); err != nil {
			return err
		}
	}
	return nil
}

func (d *TagDriver) mapField(owner reflect.Type, field reflect.StructField, raw string, md *ClassMetadata) error {
	opts := tagutil.Parse(raw)
	if len(opts) == 0 || !opts[0].Flag {
		return fmt.Errorf("odm: %s.%s: tag must start with a mapping kind: %w", md.Name, field.Name, ErrMappingInvalid)
	}
	name := tagutil.PropertyName(field.Name)
	values := make(map[string]string, len(opts))
	flags := make(map[string]bool, len(opts))
	for _, opt := range opts[1:] {
		if opt.Flag {
			flags[opt.Key] = true
			continue
		}
		values[opt.Key] = opt.Value
	}

	switch kind := opts[0].Key; kind {
	case "id":
		md.Identifier = name
	case "node":
		md.Node = name
	case "parent", "parentdocument":
		md.ParentMapping = name
	case "field":
		mapping := FieldMapping{
			FieldName:  name,
			Type:       values["type"],
			Property:   values["property"],
			Multivalue: flags["multivalue"],
			Nullable:   flags["nullable"],
		}
		inferred, multivalue := scalarType(field.Type)
		if mapping.Type == "" {
			mapping.Type = inferred
		}
		if multivalue {
			mapping.Multivalue = true
		}
		return md.MapField(mapping)
	case "referenceone", "referencemany":
		mapping := AssociationMapping{
			FieldName:      name,
			Kind:           MappingReferenceOne,
			TargetDocument: values["target"],
			Property:       values["property"],
		}
		if kind == "referencemany" {
			mapping.Kind = MappingReferenceMany
		}
		if mapping.TargetDocument == "" {
			mapping.TargetDocument = inferTarget(field.Type)
		} else {
			mapping.TargetDocument = qualify(owner, mapping.TargetDocument)
		}
		return md.MapAssociation(mapping)
	default:
		return fmt.Errorf("odm: %s.%s: unknown mapping kind %q: %w", md.Name, field.Name, kind, ErrMappingInvalid)
	}
	return nil
}

// scalarType infers the document field type from a Go type and reports
// whether the field holds multiple values.
func scalarType(t reflect.Type) (string, bool) {
	t = metadata.Indirect(t)
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		inner, _ := scalarType(t.Elem())
		return inner, true
	}
	if t == timeType {
		return "date", false
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean", false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "long", false
	case reflect.Float32, reflect.Float64:
		return "double", false
	case reflect.Slice, reflect.Array:
		return "binary", false
	}
	return DefaultFieldType, false
}

func inferTarget(t reflect.Type) string {
	t = metadata.Indirect(t)
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		t = metadata.Indirect(t.Elem())
	}
	if t.Kind() != reflect.Struct {
		return ""
	}
	return metadata.TypeName(t)
}

func qualify(owner reflect.Type, target string) string {
	if strings.ContainsAny(target, "./\\") || owner.PkgPath() == "" {
		return target
	}
	return owner.PkgPath() + "." + target
}
