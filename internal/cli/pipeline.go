package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/goliatone/go-serializer-metadata/pkg/cache"
	rediscache "github.com/goliatone/go-serializer-metadata/pkg/cache/redis"
	"github.com/goliatone/go-serializer-metadata/pkg/driver/odmtype"
	"github.com/goliatone/go-serializer-metadata/pkg/driver/yamldriver"
	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
	"github.com/goliatone/go-serializer-metadata/pkg/naming"
	"github.com/goliatone/go-serializer-metadata/pkg/odm"
)

// pipeline is the assembled driver stack for one invocation.
type pipeline struct {
	source  *yamldriver.Driver
	factory *metadata.Factory
	cache   metadata.Cache
}

// Close releases the cache backend, if it holds a connection.
func (p *pipeline) Close() error {
	if closer, ok := p.cache.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func buildPipeline(cfg *Config, logger *zap.Logger) (*pipeline, error) {
	if strings.TrimSpace(cfg.Metadata) == "" {
		return nil, errors.New("cli: a metadata directory is required (--metadata)")
	}
	if err := requireDir(cfg.Metadata); err != nil {
		return nil, err
	}
	strategy, ok := naming.ByName(cfg.Naming)
	if !ok {
		return nil, fmt.Errorf("cli: unknown naming strategy %q", cfg.Naming)
	}

	source := yamldriver.NewDirDriver(cfg.Metadata,
		yamldriver.WithNamingStrategy(naming.SerializedNameAware{Delegate: strategy}),
		yamldriver.WithLogger(logger.Named("yaml")),
	)

	var driver metadata.Driver = source
	if strings.TrimSpace(cfg.Mapping) != "" {
		if err := requireDir(cfg.Mapping); err != nil {
			return nil, err
		}
		manager, err := odm.NewDocumentManager(odm.Configuration{
			MappingDriver: odm.NewYAMLDriver(os.DirFS(cfg.Mapping), "."),
			Logger:        logger.Named("odm"),
		})
		if err != nil {
			return nil, err
		}
		registry := odm.NewRegistry()
		if err := registry.Register("default", manager); err != nil {
			return nil, err
		}
		options := []odmtype.Option{odmtype.WithLogger(logger.Named("odmtype"))}
		if cfg.CollectionType != "" {
			options = append(options, odmtype.WithCollectionType(cfg.CollectionType))
		}
		driver = odmtype.New(source, registry, options...)
	}

	store, err := buildCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	factory := metadata.NewFactory(driver,
		metadata.WithCache(store),
		metadata.WithFreshnessCheck(true),
		metadata.WithLogger(logger.Named("factory")),
	)
	return &pipeline{source: source, factory: factory, cache: store}, nil
}

func buildCache(cfg CacheConfig) (metadata.Cache, error) {
	if strings.TrimSpace(cfg.Redis) == "" {
		return cache.NewMemory(), nil
	}
	return rediscache.NewWithOptions(
		&goredis.Options{Addr: cfg.Redis},
		rediscache.WithPrefix(cfg.Prefix),
		rediscache.WithTTL(cfg.TTL),
	)
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cli: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cli: %s is not a directory", path)
	}
	return nil
}
