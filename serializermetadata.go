// Package serializermetadata assembles the default metadata stack: serializer
// struct tags (optionally preceded by YAML files), document mapping type hints
// and Go type fallbacks, fronted by a caching factory.
package serializermetadata

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-serializer-metadata/pkg/cache"
	"github.com/goliatone/go-serializer-metadata/pkg/driver/gotype"
	"github.com/goliatone/go-serializer-metadata/pkg/driver/odmtype"
	"github.com/goliatone/go-serializer-metadata/pkg/driver/structtag"
	"github.com/goliatone/go-serializer-metadata/pkg/driver/yamldriver"
	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
	"github.com/goliatone/go-serializer-metadata/pkg/naming"
	"github.com/goliatone/go-serializer-metadata/pkg/odm"
)

// Type aliases the type descriptor for callers that only import the root
// package.
type Type = metadata.Type

// ClassMetadata aliases metadata.ClassMetadata.
type ClassMetadata = metadata.ClassMetadata

// PropertyMetadata aliases metadata.PropertyMetadata.
type PropertyMetadata = metadata.PropertyMetadata

// Class aliases metadata.Class.
type Class = metadata.Class

// Option configures NewFactory.
type Option func(*options)

type options struct {
	registry    odm.ManagerRegistry
	yamlDirs    []string
	naming      naming.Strategy
	cache       metadata.Cache
	logger      *zap.Logger
	typeOptions []odmtype.Option
	goTypes     bool
}

// WithRegistry enables document mapping type hints.
func WithRegistry(registry odm.ManagerRegistry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithYAMLDir consults YAML metadata in dir before struct tags.
func WithYAMLDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.yamlDirs = append(o.yamlDirs, dir)
		}
	}
}

// WithNamingStrategy sets the serialized name strategy. Explicit names always
// win.
func WithNamingStrategy(strategy naming.Strategy) Option {
	return func(o *options) {
		if strategy != nil {
			o.naming = strategy
		}
	}
}

// WithCache replaces the default in-memory cache.
func WithCache(c metadata.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithLogger injects a zap logger into every layer.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTypeOptions forwards options to the document type decorator.
func WithTypeOptions(opts ...odmtype.Option) Option {
	return func(o *options) {
		o.typeOptions = append(o.typeOptions, opts...)
	}
}

// WithoutGoTypes disables the Go type fallback.
func WithoutGoTypes() Option {
	return func(o *options) {
		o.goTypes = false
	}
}

// NewDriver builds the driver stack without a factory.
func NewDriver(opts ...Option) metadata.Driver {
	return newDriver(resolve(opts))
}

// NewFactory builds the driver stack and fronts it with a caching factory.
func NewFactory(opts ...Option) *metadata.Factory {
	o := resolve(opts)
	store := o.cache
	if store == nil {
		store = cache.NewMemory()
	}
	return metadata.NewFactory(newDriver(o),
		metadata.WithCache(store),
		metadata.WithFreshnessCheck(len(o.yamlDirs) > 0),
		metadata.WithLogger(o.logger.Named("factory")),
	)
}

// MetadataFor loads metadata for T through factory.
func MetadataFor[T any](ctx context.Context, factory *metadata.Factory) (*metadata.ClassMetadata, error) {
	return factory.ClassMetadataFor(ctx, metadata.ClassFor[T]())
}

func resolve(opts []Option) *options {
	o := &options{
		naming:  naming.SerializedNameAware{Delegate: naming.Identical{}},
		logger:  zap.NewNop(),
		goTypes: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func newDriver(o *options) metadata.Driver {
	strategy := naming.SerializedNameAware{Delegate: o.naming}
	chain := metadata.NewChain()
	for _, dir := range o.yamlDirs {
		chain.Add(yamldriver.NewDirDriver(dir,
			yamldriver.WithNamingStrategy(strategy),
			yamldriver.WithLogger(o.logger.Named("yaml")),
		))
	}
	chain.Add(structtag.New(
		structtag.WithNamingStrategy(strategy),
		structtag.WithLogger(o.logger.Named("structtag")),
	))

	var driver metadata.Driver = chain
	if o.registry != nil {
		typeOptions := append([]odmtype.Option{odmtype.WithLogger(o.logger.Named("odmtype"))}, o.typeOptions...)
		driver = odmtype.New(driver, o.registry, typeOptions...)
	}
	if o.goTypes {
		driver = gotype.New(driver)
	}
	return driver
}
