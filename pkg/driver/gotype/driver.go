// Package gotype fills properties that are still untyped after every other
// driver ran, using the Go type of the backing struct field. It is the last
// resort in a chain: declared and document-mapped types always come first.
package gotype

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/goliatone/go-serializer-metadata/internal/tagutil"
	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

var timeType = reflect.TypeOf(time.Time{})

// Driver decorates a delegate with Go type hints.
type Driver struct {
	delegate metadata.Driver
}

var _ metadata.Driver = (*Driver)(nil)

// New wraps delegate.
func New(delegate metadata.Driver) *Driver {
	return &Driver{delegate: delegate}
}

// LoadMetadataForClass implements metadata.Driver.
func (d *Driver) LoadMetadataForClass(ctx context.Context, class metadata.Class) (*metadata.ClassMetadata, error) {
	if d.delegate == nil {
		return nil, errors.New("gotype: delegate driver is nil")
	}
	md, err := d.delegate.LoadMetadataForClass(ctx, class)
	if err != nil {
		return nil, err
	}
	d.apply(class, md)
	return md, nil
}

func (d *Driver) apply(class metadata.Class, md *metadata.ClassMetadata) {
	t := metadata.Indirect(class.Type)
	if md == nil || t == nil || t.Kind() != reflect.Struct {
		return
	}
	fields := make(map[string]reflect.Type)
	collectFields(t, fields, map[reflect.Type]bool{t: true})

	for _, prop := range md.Properties {
		if prop == nil || prop.HasType() || prop.Virtual {
			continue
		}
		ft, ok := fields[prop.Name]
		if !ok {
			continue
		}
		if hint, ok := TypeOf(ft); ok {
			prop.SetType(hint)
		}
	}
}

func collectFields(t reflect.Type, out map[string]reflect.Type, visiting map[reflect.Type]bool) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			embedded := metadata.Indirect(field.Type)
			if embedded.Kind() == reflect.Struct && !visiting[embedded] {
				visiting[embedded] = true
				collectFields(embedded, out, visiting)
				delete(visiting, embedded)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		name := tagutil.PropertyName(field.Name)
		if _, exists := out[name]; !exists {
			out[name] = field.Type
		}
	}
}

// TypeOf maps a Go type onto a serializer type descriptor. Interfaces and
// functions have no serializer equivalent and report false.
func TypeOf(t reflect.Type) (metadata.Type, bool) {
	t = metadata.Indirect(t)
	if t == timeType {
		return metadata.NewType("DateTime"), true
	}
	switch t.Kind() {
	case reflect.String:
		return metadata.NewType("string"), true
	case reflect.Bool:
		return metadata.NewType("boolean"), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return metadata.NewType("integer"), true
	case reflect.Float32, reflect.Float64:
		return metadata.NewType("float"), true
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return metadata.NewType("string"), true
		}
		elem, ok := TypeOf(t.Elem())
		if !ok {
			return metadata.NewType("array"), true
		}
		return metadata.NewType("array", elem), true
	case reflect.Map:
		key, keyOK := TypeOf(t.Key())
		value, valueOK := TypeOf(t.Elem())
		if !keyOK || !valueOK {
			return metadata.NewType("array"), true
		}
		return metadata.NewType("array", key, value), true
	case reflect.Struct:
		return metadata.NewType(metadata.TypeName(t)), true
	}
	return metadata.Type{}, false
}
