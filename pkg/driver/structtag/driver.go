// Package structtag reads serializer metadata from `serializer:"..."` struct
// tags. It is the reflection counterpart of annotation based metadata: every
// exported field becomes a property unless tagged `serializer:"-"` or
// `serializer:"exclude"`, and only explicitly declared types are recorded.
//
// Recognised options: type=<type string>, name=<serialized name>,
// groups=a|b, since=<version>, until=<version>, desc=<text>, readonly,
// inline, skipempty, exclude.
package structtag

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-serializer-metadata/internal/tagutil"
	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
	"github.com/goliatone/go-serializer-metadata/pkg/naming"
)

const DefaultTagName = "serializer"

// Option configures the driver.
type Option func(*Driver)

// WithNamingStrategy overrides how serialized names are derived.
func WithNamingStrategy(strategy naming.Strategy) Option {
	return func(d *Driver) {
		if strategy != nil {
			d.naming = strategy
		}
	}
}

// WithTagName reads a different struct tag key.
func WithTagName(name string) Option {
	return func(d *Driver) {
		if name = strings.TrimSpace(name); name != "" {
			d.tagName = name
		}
	}
}

// WithLogger injects a zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Driver implements metadata.Driver using struct tags.
type Driver struct {
	naming  naming.Strategy
	tagName string
	logger  *zap.Logger
}

var _ metadata.Driver = (*Driver)(nil)

// New constructs a Driver. The default naming strategy keeps property names
// unchanged unless a tag sets name=.
func New(options ...Option) *Driver {
	d := &Driver{
		naming:  naming.SerializedNameAware{Delegate: naming.Identical{}},
		tagName: DefaultTagName,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// LoadMetadataForClass implements metadata.Driver. Classes without a backing
// struct type yield metadata.ErrNoMetadata.
func (d *Driver) LoadMetadataForClass(ctx context.Context, class metadata.Class) (*metadata.ClassMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := metadata.Indirect(class.Type)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("structtag: %s: %w", class.Name, metadata.ErrNoMetadata)
	}

	name := class.Name
	if name == "" {
		name = metadata.TypeName(t)
	}
	md := metadata.NewClassMetadata(name)
	if err := d.collect(md, t, map[reflect.Type]bool{t: true}); err != nil {
		return nil, err
	}
	d.logger.Debug("loaded struct tag metadata",
		zap.String("class", name),
		zap.Int("properties", len(md.Properties)))
	return md, nil
}

func (d *Driver) collect(md *metadata.ClassMetadata, t reflect.Type, visiting map[reflect.Type]bool) error {
	owner := metadata.TypeName(t)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		raw, tagged := field.Tag.Lookup(d.tagName)
		if raw == "-" {
			continue
		}

		if field.Anonymous && !tagged {
			embedded := metadata.Indirect(field.Type)
			if embedded.Kind() == reflect.Struct && !visiting[embedded] {
				visiting[embedded] = true
				if err := d.collect(md, embedded, visiting); err != nil {
					return err
				}
				delete(visiting, embedded)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}

		prop, excluded, err := d.property(owner, field, raw)
		if err != nil {
			return err
		}
		if excluded {
			continue
		}
		md.AddProperty(prop)
	}
	return nil
}

func (d *Driver) property(owner string, field reflect.StructField, raw string) (*metadata.PropertyMetadata, bool, error) {
	prop := metadata.NewPropertyMetadata(owner, tagutil.PropertyName(field.Name))
	for _, opt := range tagutil.Parse(raw) {
		switch opt.Key {
		case "exclude":
			return nil, true, nil
		case "type":
			parsed, err := metadata.ParseType(opt.Value)
			if err != nil {
				return nil, false, fmt.Errorf("structtag: %s.%s: %w", owner, field.Name, err)
			}
			prop.SetType(parsed)
		case "name":
			prop.SerializedName = unquote(opt.Value)
		case "groups":
			prop.Groups = tagutil.SplitList(opt.Value)
		case "since":
			prop.SinceVersion = opt.Value
		case "until":
			prop.UntilVersion = opt.Value
		case "desc":
			prop.Description = unquote(opt.Value)
		case "readonly":
			prop.ReadOnly = true
		case "inline":
			prop.Inline = true
		case "skipempty":
			prop.SkipWhenEmpty = true
		default:
			d.logger.Debug("ignoring unknown serializer tag option",
				zap.String("class", owner),
				zap.String("field", field.Name),
				zap.String("option", opt.Key))
		}
	}
	prop.SerializedName = d.naming.TranslateName(prop)
	return prop, false, nil
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '\'' || first == '"') && first == last {
			return value[1 : len(value)-1]
		}
	}
	return value
}
