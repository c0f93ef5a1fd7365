package odm

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Manager is the handle a ManagerRegistry returns for a class.
type Manager interface {
	ClassMetadata(className string) (*ClassMetadata, error)
	IsTransient(className string) bool
	ResolveFieldMapping(className, fieldName string) (FieldResolution, error)
}

// Configuration carries what a DocumentManager needs. Proxy settings are kept
// for the persistence layer that owns proxy generation.
type Configuration struct {
	MappingDriver  MappingDriver
	ProxyDir       string
	ProxyNamespace string
	Logger         *zap.Logger
}

// DocumentManager exposes document mappings for one configuration.
type DocumentManager struct {
	config  Configuration
	factory *MetadataFactory
	logger  *zap.Logger
}

var _ Manager = (*DocumentManager)(nil)

// NewDocumentManager validates cfg and builds a manager.
func NewDocumentManager(cfg Configuration) (*DocumentManager, error) {
	if cfg.MappingDriver == nil {
		return nil, errors.New("odm: configuration requires a mapping driver")
	}
	cfg.ProxyDir = strings.TrimSpace(cfg.ProxyDir)
	cfg.ProxyNamespace = strings.TrimSpace(cfg.ProxyNamespace)
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentManager{
		config:  cfg,
		factory: NewMetadataFactory(cfg.MappingDriver),
		logger:  logger,
	}, nil
}

// MustNewDocumentManager panics on configuration errors. Useful for tests.
func MustNewDocumentManager(cfg Configuration) *DocumentManager {
	dm, err := NewDocumentManager(cfg)
	if err != nil {
		panic(err)
	}
	return dm
}

// Configuration returns the manager configuration.
func (dm *DocumentManager) Configuration() Configuration {
	return dm.config
}

// MetadataFactory returns the mapping factory.
func (dm *DocumentManager) MetadataFactory() *MetadataFactory {
	return dm.factory
}

// IsTransient implements Manager.
func (dm *DocumentManager) IsTransient(className string) bool {
	return dm.factory.IsTransient(className)
}

// ClassMetadata implements Manager.
func (dm *DocumentManager) ClassMetadata(className string) (*ClassMetadata, error) {
	md, err := dm.factory.GetMetadataFor(className)
	if err != nil {
		dm.logger.Debug("document mapping unavailable", zap.String("class", className), zap.Error(err))
		return nil, err
	}
	return md, nil
}

// ResolveFieldMapping implements Manager. Unknown classes fail with
// ErrNotManaged; unknown fields resolve to MappingNone.
func (dm *DocumentManager) ResolveFieldMapping(className, fieldName string) (FieldResolution, error) {
	md, err := dm.ClassMetadata(className)
	if err != nil {
		return FieldResolution{}, err
	}
	return md.Resolve(fieldName), nil
}

// ManagerFunc adapts a resolver function into a ManagerRegistry.
type ManagerFunc func(className string) (Manager, error)

// ManagerForClass calls the underlying function.
func (fn ManagerFunc) ManagerForClass(className string) (Manager, error) {
	return fn(className)
}

// classError formats an error for className.
func classError(className string, err error) error {
	return fmt.Errorf("odm: %s: %w", className, err)
}
