// Package yamldriver reads serializer metadata from YAML files. Each file maps
// class names to their property configuration; property order in the file is
// the property order of the resulting metadata:
//
//	github.com/acme/blog.BlogPost:
//	  properties:
//	    title:
//	      type: string
//	      groups: [post]
//	    createdAt:
//	      serializedName: created
//	      readOnly: true
//	    secret:
//	      exclude: true
//	  virtualProperties:
//	    summary:
//	      type: string
package yamldriver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
	"github.com/goliatone/go-serializer-metadata/pkg/naming"
)

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

// WithLogger injects a zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithResourcePrefix sets the directory prepended to file paths recorded in
// ClassMetadata.FileResources. NewDirDriver sets it to the directory it reads.
func WithResourcePrefix(dir string) Option {
	return func(d *Driver) {
		d.resourcePrefix = dir
	}
}

// Driver implements metadata.Driver over YAML files in an fs.FS.
type Driver struct {
	fsys           fs.FS
	root           string
	naming         naming.Strategy
	logger         *zap.Logger
	resourcePrefix string

	once    sync.Once
	loadErr error
	classes map[string]classEntry
}

var (
	_ metadata.Driver      = (*Driver)(nil)
	_ metadata.ClassLister = (*Driver)(nil)
)

type classEntry struct {
	file string
	node *yaml.Node
}

type classDocument struct {
	Properties        yaml.Node `yaml:"properties"`
	VirtualProperties yaml.Node `yaml:"virtualProperties"`
}

type propertyDocument struct {
	Type           string   `yaml:"type"`
	SerializedName string   `yaml:"serializedName"`
	Groups         []string `yaml:"groups"`
	Since          string   `yaml:"since"`
	Until          string   `yaml:"until"`
	ReadOnly       bool     `yaml:"readOnly"`
	Inline         bool     `yaml:"inline"`
	SkipWhenEmpty  bool     `yaml:"skipWhenEmpty"`
	Exclude        bool     `yaml:"exclude"`
	Description    string   `yaml:"description"`
}

// New reads metadata files below root in fsys.
func New(fsys fs.FS, root string, options ...Option) *Driver {
	if root == "" {
		root = "."
	}
	d := &Driver{
		fsys:   fsys,
		root:   root,
		naming: naming.SerializedNameAware{Delegate: naming.Identical{}},
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// NewDirDriver reads metadata files from a directory on disk and records
// absolute file resources so freshness checks can stat them.
func NewDirDriver(dir string, options ...Option) *Driver {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	options = append([]Option{WithResourcePrefix(abs)}, options...)
	return New(os.DirFS(abs), ".", options...)
}

func (d *Driver) index() error {
	d.once.Do(func() {
		d.classes = make(map[string]classEntry)
		if d.fsys == nil {
			return
		}
		d.loadErr = fs.WalkDir(d.fsys, d.root, func(p string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() || !isYAMLFile(p) {
				return nil
			}
			data, err := fs.ReadFile(d.fsys, p)
			if err != nil {
				return fmt.Errorf("yamldriver: read %s: %w", p, err)
			}
			var doc map[string]yaml.Node
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("yamldriver: parse %s: %w", p, err)
			}
			for class, node := range doc {
				class = strings.TrimSpace(class)
				if class == "" {
					return fmt.Errorf("yamldriver: file %s defines an empty class name", p)
				}
				if existing, dup := d.classes[class]; dup {
					return fmt.Errorf("yamldriver: class %q defined in both %s and %s", class, existing.file, p)
				}
				node := node
				d.classes[class] = classEntry{file: p, node: &node}
			}
			return nil
		})
		d.logger.Debug("indexed yaml metadata", zap.Int("classes", len(d.classes)), zap.Error(d.loadErr))
	})
	return d.loadErr
}

// AllClassNames implements metadata.ClassLister.
func (d *Driver) AllClassNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.index(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(d.classes))
	for name := range d.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadMetadataForClass implements metadata.Driver.
func (d *Driver) LoadMetadataForClass(ctx context.Context, class metadata.Class) (*metadata.ClassMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.index(); err != nil {
		return nil, err
	}
	entry, ok := d.classes[class.Name]
	if !ok {
		return nil, fmt.Errorf("yamldriver: %s: %w", class.Name, metadata.ErrNoMetadata)
	}

	var doc classDocument
	if entry.node != nil {
		if err := entry.node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("yamldriver: %s (%s): %w", class.Name, entry.file, err)
		}
	}

	md := metadata.NewClassMetadata(class.Name)
	md.AddFileResource(d.resource(entry.file))
	if err := d.addProperties(md, &doc.Properties, false, entry.file); err != nil {
		return nil, err
	}
	if err := d.addProperties(md, &doc.VirtualProperties, true, entry.file); err != nil {
		return nil, err
	}
	return md, nil
}

func (d *Driver) addProperties(md *metadata.ClassMetadata, node *yaml.Node, virtual bool, file string) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("yamldriver: %s (%s): properties must be a mapping (line %d)", md.Name, file, node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := strings.TrimSpace(node.Content[i].Value)
		if name == "" {
			return fmt.Errorf("yamldriver: %s (%s): empty property name (line %d)", md.Name, file, node.Content[i].Line)
		}
		var doc propertyDocument
		if err := node.Content[i+1].Decode(&doc); err != nil {
			return fmt.Errorf("yamldriver: %s.%s (%s): %w", md.Name, name, file, err)
		}
		if doc.Exclude {
			continue
		}
		prop, err := d.property(md.Name, name, doc)
		if err != nil {
			return fmt.Errorf("yamldriver: %s.%s (%s): %w", md.Name, name, file, err)
		}
		prop.Virtual = virtual
		md.AddProperty(prop)
	}
	return nil
}

func (d *Driver) property(class, name string, doc propertyDocument) (*metadata.PropertyMetadata, error) {
	prop := metadata.NewPropertyMetadata(class, name)
	if doc.Type != "" {
		parsed, err := metadata.ParseType(doc.Type)
		if err != nil {
			return nil, err
		}
		prop.SetType(parsed)
	}
	if doc.SerializedName != "" {
		prop.SerializedName = doc.SerializedName
	}
	prop.Groups = doc.Groups
	prop.SinceVersion = doc.Since
	prop.UntilVersion = doc.Until
	prop.ReadOnly = doc.ReadOnly
	prop.Inline = doc.Inline
	prop.SkipWhenEmpty = doc.SkipWhenEmpty
	prop.Description = doc.Description
	prop.SerializedName = d.naming.TranslateName(prop)
	return prop, nil
}

func (d *Driver) resource(file string) string {
	if d.resourcePrefix == "" {
		return file
	}
	return filepath.Join(d.resourcePrefix, filepath.FromSlash(file))
}

func isYAMLFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
