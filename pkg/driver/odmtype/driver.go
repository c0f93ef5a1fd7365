// Package odmtype decorates serializer metadata with type hints taken from
// document mappings. Properties the delegate driver already typed are left
// alone, so explicit declarations always beat inferred types.
package odmtype

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
	"github.com/goliatone/go-serializer-metadata/pkg/odm"
)

// Option configures the driver.
type Option func(*Driver)

// WithFieldTypes replaces the document-to-serializer field type table.
func WithFieldTypes(types map[string]string) Option {
	return func(d *Driver) {
		if types == nil {
			return
		}
		d.fieldTypes = make(map[string]string, len(types))
		for key, value := range types {
			d.fieldTypes[strings.ToLower(key)] = value
		}
	}
}

// WithFieldType adds or overrides one entry of the field type table.
func WithFieldType(documentType, serializerType string) Option {
	return func(d *Driver) {
		d.fieldTypes[strings.ToLower(documentType)] = serializerType
	}
}

// WithCollectionType changes the container name used for reference-many
// hints.
func WithCollectionType(name string) Option {
	return func(d *Driver) {
		if name = strings.TrimSpace(name); name != "" {
			d.collectionType = name
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

// Driver wraps a delegate metadata driver and fills untyped properties from
// the document mapping of the class.
type Driver struct {
	delegate       metadata.Driver
	registry       odm.ManagerRegistry
	fieldTypes     map[string]string
	collectionType string
	logger         *zap.Logger
}

var (
	_ metadata.Driver    = (*Driver)(nil)
	_ metadata.Decorator = (*Driver)(nil)
)

// New constructs the driver.
func New(delegate metadata.Driver, registry odm.ManagerRegistry, options ...Option) *Driver {
	d := &Driver{
		delegate:       delegate,
		registry:       registry,
		fieldTypes:     DefaultFieldTypes(),
		collectionType: DefaultCollectionType,
		logger:         zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// LoadMetadataForClass loads metadata from the delegate and decorates it.
// Classes without a document mapping come back exactly as the delegate built
// them.
func (d *Driver) LoadMetadataForClass(ctx context.Context, class metadata.Class) (*metadata.ClassMetadata, error) {
	if d.delegate == nil {
		return nil, errors.New("odmtype: delegate driver is nil")
	}
	md, err := d.delegate.LoadMetadataForClass(ctx, class)
	if err != nil {
		return nil, err
	}
	if err := d.Decorate(ctx, md); err != nil {
		return nil, err
	}
	return md, nil
}

// Decorate applies document type hints to md in place, which lets the driver
// also run through metadata.Decorate.
func (d *Driver) Decorate(ctx context.Context, md *metadata.ClassMetadata) error {
	if md == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	manager, mapping, err := d.documentMetadata(md.Name)
	if err != nil {
		return err
	}
	if mapping == nil {
		return nil
	}

	// Scan the delegate's property list so its exclusions stay in force.
	for _, prop := range append([]*metadata.PropertyMetadata(nil), md.Properties...) {
		if prop == nil || prop.HasType() || prop.Virtual {
			continue
		}
		if hideProperty(mapping, prop) {
			md.RemoveProperty(prop.Name)
			continue
		}
		if err := d.setPropertyType(manager, mapping, prop); err != nil {
			return err
		}
	}
	return nil
}

// documentMetadata returns a nil mapping when the class has no document
// mapping.
func (d *Driver) documentMetadata(className string) (odm.Manager, *odm.ClassMetadata, error) {
	if d.registry == nil {
		return nil, nil, nil
	}
	manager, err := d.registry.ManagerForClass(className)
	if errors.Is(err, odm.ErrNoManagerFound) {
		d.logger.Debug("no document manager for class", zap.String("class", className))
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("odmtype: manager for %s: %w", className, err)
	}
	if manager == nil || manager.IsTransient(className) {
		return nil, nil, nil
	}

	mapping, err := manager.ClassMetadata(className)
	if errors.Is(err, odm.ErrNotManaged) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("odmtype: mapping for %s: %w", className, err)
	}
	return manager, mapping, nil
}

func (d *Driver) setPropertyType(manager odm.Manager, mapping *odm.ClassMetadata, prop *metadata.PropertyMetadata) error {
	resolution, err := manager.ResolveFieldMapping(mapping.Name, prop.Name)
	if err != nil {
		return fmt.Errorf("odmtype: resolve %s.%s: %w", mapping.Name, prop.Name, err)
	}
	switch resolution.MappingType {
	case odm.MappingScalar:
		serializerType, ok := d.fieldTypes[strings.ToLower(resolution.TargetType)]
		if !ok || serializerType == "" {
			d.logger.Debug("unmapped document field type",
				zap.String("class", mapping.Name),
				zap.String("property", prop.Name),
				zap.String("type", resolution.TargetType))
			return nil
		}
		if resolution.Multivalue {
			serializerType = "array"
		}
		parsed, err := metadata.ParseType(serializerType)
		if err != nil {
			return fmt.Errorf("odmtype: %s.%s: %w", mapping.Name, prop.Name, err)
		}
		prop.SetType(parsed)

	case odm.MappingReferenceOne, odm.MappingReferenceMany:
		target := resolution.TargetType
		if target == "" {
			return nil
		}
		_, targetMapping, err := d.documentMetadata(target)
		if err != nil {
			return err
		}
		if targetMapping == nil {
			d.logger.Debug("association target is not a document",
				zap.String("class", mapping.Name),
				zap.String("property", prop.Name),
				zap.String("target", target))
			return nil
		}
		hint := metadata.NewType(target)
		if resolution.MappingType == odm.MappingReferenceMany {
			hint = metadata.NewType(d.collectionType, hint)
		}
		prop.SetType(hint)
	}
	return nil
}

// hideProperty reports properties that hold repository internals rather than
// document data.
func hideProperty(mapping *odm.ClassMetadata, prop *metadata.PropertyMetadata) bool {
	switch prop.Name {
	case "lazyPropertiesDefaults":
		return true
	case "":
		return false
	}
	return prop.Name == mapping.ParentMapping || prop.Name == mapping.Node
}
