package odm

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// YAMLDriver maps documents from YAML files stored in an fs.FS. Each file maps
// class names to their definition:
//
//	github.com/acme/blog.BlogPost:
//	  id: id
//	  node: node
//	  parentDocument: parent
//	  fields:
//	    title: { type: string }
//	    createdAt: { type: date }
//	  referenceOne:
//	    author: { targetDocument: Author }
//	  referenceMany:
//	    comments: { targetDocument: Comment }
//
// Relative target names resolve against the owning class's package.
type YAMLDriver struct {
	fsys fs.FS
	root string

	once    sync.Once
	loadErr error
	entries map[string]yamlEntry
}

var _ MappingDriver = (*YAMLDriver)(nil)

type yamlEntry struct {
	file string
	doc  yamlDocument
}

type yamlDocument struct {
	ID             string                        `yaml:"id"`
	Node           string                        `yaml:"node"`
	ParentDocument string                        `yaml:"parentDocument"`
	Referenceable  bool                          `yaml:"referenceable"`
	Fields         map[string]FieldMapping       `yaml:"fields"`
	ReferenceOne   map[string]AssociationMapping `yaml:"referenceOne"`
	ReferenceMany  map[string]AssociationMapping `yaml:"referenceMany"`
}

// NewYAMLDriver reads mapping files below root in fsys. Files are indexed on
// first use.
func NewYAMLDriver(fsys fs.FS, root string) *YAMLDriver {
	if root == "" {
		root = "."
	}
	return &YAMLDriver{fsys: fsys, root: root}
}

func (d *YAMLDriver) index() error {
	d.once.Do(func() {
		d.entries = make(map[string]yamlEntry)
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
				return fmt.Errorf("odm: read %s: %w", p, err)
			}
			var docs map[string]yamlDocument
			if err := yaml.Unmarshal(data, &docs); err != nil {
				return fmt.Errorf("odm: parse %s: %v: %w", p, err, ErrMappingInvalid)
			}
			for class, doc := range docs {
				class = strings.TrimSpace(class)
				if class == "" {
					return fmt.Errorf("odm: file %s maps an empty class name: %w", p, ErrMappingInvalid)
				}
				if existing, dup := d.entries[class]; dup {
					return fmt.Errorf("odm: class %q mapped in both %s and %s: %w", class, existing.file, p, ErrMappingInvalid)
				}
				d.entries[class] = yamlEntry{file: p, doc: doc}
			}
			return nil
		})
	})
	return d.loadErr
}

// IsTransient implements MappingDriver.
func (d *YAMLDriver) IsTransient(className string) bool {
	if err := d.index(); err != nil {
		return true
	}
	_, ok := d.entries[className]
	return !ok
}

// AllClassNames implements MappingDriver.
func (d *YAMLDriver) AllClassNames() ([]string, error) {
	if err := d.index(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(d.entries))
	for name := range d.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadMetadataForClass implements MappingDriver.
func (d *YAMLDriver) LoadMetadataForClass(className string, md *ClassMetadata) error {
	if err := d.index(); err != nil {
		return err
	}
	entry, ok := d.entries[className]
	if !ok {
		return fmt.Errorf("odm: yaml driver: %s: %w", className, ErrNotManaged)
	}
	doc := entry.doc

	md.Identifier = doc.ID
	md.Node = doc.Node
	md.ParentMapping = doc.ParentDocument
	md.Referenceable = doc.Referenceable

	for _, name := range sortedKeys(doc.Fields) {
		mapping := doc.Fields[name]
		mapping.FieldName = name
		if err := md.MapField(mapping); err != nil {
			return fmt.Errorf("%w (file %s)", err, entry.file)
		}
	}
	for kind, assocs := range map[MappingType]map[string]AssociationMapping{
		MappingReferenceOne:  doc.ReferenceOne,
		MappingReferenceMany: doc.ReferenceMany,
	} {
		for _, name := range sortedKeys(assocs) {
			mapping := assocs[name]
			mapping.FieldName = name
			mapping.Kind = kind
			mapping.TargetDocument = qualifyName(className, mapping.TargetDocument)
			if err := md.MapAssociation(mapping); err != nil {
				return fmt.Errorf("%w (file %s)", err, entry.file)
			}
		}
	}
	return nil
}

func qualifyName(owner, target string) string {
	target = strings.TrimSpace(target)
	if target == "" || strings.ContainsAny(target, "./\\") {
		return target
	}
	idx := strings.LastIndexAny(owner, ".\\")
	if idx < 0 {
		return target
	}
	return owner[:idx+1] + target
}

func isYAMLFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
