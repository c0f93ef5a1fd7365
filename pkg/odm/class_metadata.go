package odm

import (
	"fmt"
	"sort"
	"strings"
)

// MappingType classifies how a document field is persisted.
type MappingType string

const (
	MappingNone          MappingType = ""
	MappingScalar        MappingType = "scalar"
	MappingReferenceOne  MappingType = "referenceOne"
	MappingReferenceMany MappingType = "referenceMany"
)

// DefaultFieldType is used when a scalar mapping omits its type.
const DefaultFieldType = "string"

// FieldMapping maps a scalar property.
type FieldMapping struct {
	FieldName  string `yaml:"-"`
	Type       string `yaml:"type"`
	Property   string `yaml:"property,omitempty"`
	Multivalue bool   `yaml:"multivalue,omitempty"`
	Nullable   bool   `yaml:"nullable,omitempty"`
}

// AssociationMapping maps a reference to other documents.
type AssociationMapping struct {
	FieldName      string      `yaml:"-"`
	Kind           MappingType `yaml:"-"`
	TargetDocument string      `yaml:"targetDocument"`
	Property       string      `yaml:"property,omitempty"`
}

// ClassMetadata is the document mapping for one class.
type ClassMetadata struct {
	Name          string
	Identifier    string
	Node          string
	ParentMapping string
	Referenceable bool
	Fields        map[string]FieldMapping
	Associations  map[string]AssociationMapping
}

// NewClassMetadata creates an empty mapping for name.
func NewClassMetadata(name string) *ClassMetadata {
	return &ClassMetadata{
		Name:         name,
		Fields:       make(map[string]FieldMapping),
		Associations: make(map[string]AssociationMapping),
	}
}

// MapField registers a scalar field mapping.
func (m *ClassMetadata) MapField(mapping FieldMapping) error {
	name := strings.TrimSpace(mapping.FieldName)
	if name == "" {
		return fmt.Errorf("odm: %s: field name is required: %w", m.Name, ErrMappingInvalid)
	}
	if m.claimed(name) {
		return fmt.Errorf("odm: %s: field %q mapped twice: %w", m.Name, name, ErrMappingInvalid)
	}
	mapping.FieldName = name
	mapping.Type = strings.TrimSpace(mapping.Type)
	if mapping.Type == "" {
		mapping.Type = DefaultFieldType
	}
	if mapping.Property == "" {
		mapping.Property = name
	}
	m.Fields[name] = mapping
	return nil
}

// MapAssociation registers a reference mapping.
func (m *ClassMetadata) MapAssociation(mapping AssociationMapping) error {
	name := strings.TrimSpace(mapping.FieldName)
	if name == "" {
		return fmt.Errorf("odm: %s: association name is required: %w", m.Name, ErrMappingInvalid)
	}
	if mapping.Kind != MappingReferenceOne && mapping.Kind != MappingReferenceMany {
		return fmt.Errorf("odm: %s.%s: unsupported association kind %q: %w", m.Name, name, mapping.Kind, ErrMappingInvalid)
	}
	if strings.TrimSpace(mapping.TargetDocument) == "" {
		return fmt.Errorf("odm: %s.%s: target document is required: %w", m.Name, name, ErrMappingInvalid)
	}
	if m.claimed(name) {
		return fmt.Errorf("odm: %s: field %q mapped twice: %w", m.Name, name, ErrMappingInvalid)
	}
	mapping.FieldName = name
	mapping.TargetDocument = strings.TrimSpace(mapping.TargetDocument)
	m.Associations[name] = mapping
	return nil
}

func (m *ClassMetadata) claimed(name string) bool {
	if _, ok := m.Fields[name]; ok {
		return true
	}
	_, ok := m.Associations[name]
	return ok
}

// HasField reports whether name is a scalar field.
func (m *ClassMetadata) HasField(name string) bool {
	_, ok := m.Fields[name]
	return ok
}

// TypeOfField returns the mapped scalar type.
func (m *ClassMetadata) TypeOfField(name string) (string, bool) {
	field, ok := m.Fields[name]
	return field.Type, ok
}

// HasAssociation reports whether name is a reference.
func (m *ClassMetadata) HasAssociation(name string) bool {
	_, ok := m.Associations[name]
	return ok
}

// AssociationTargetClass returns the class referenced by name.
func (m *ClassMetadata) AssociationTargetClass(name string) (string, error) {
	assoc, ok := m.Associations[name]
	if !ok {
		return "", fmt.Errorf("odm: %s: %q is not an association: %w", m.Name, name, ErrMappingInvalid)
	}
	return assoc.TargetDocument, nil
}

// IsSingleValuedAssociation reports whether name references one document.
func (m *ClassMetadata) IsSingleValuedAssociation(name string) bool {
	assoc, ok := m.Associations[name]
	return ok && assoc.Kind == MappingReferenceOne
}

// IsCollectionValuedAssociation reports whether name references many
// documents.
func (m *ClassMetadata) IsCollectionValuedAssociation(name string) bool {
	assoc, ok := m.Associations[name]
	return ok && assoc.Kind == MappingReferenceMany
}

// FieldNames returns the scalar field names in sorted order.
func (m *ClassMetadata) FieldNames() []string {
	return sortedKeys(m.Fields)
}

// AssociationNames returns the association names in sorted order.
func (m *ClassMetadata) AssociationNames() []string {
	return sortedKeys(m.Associations)
}

// FieldResolution answers "what does the oracle know about this field".
// TargetType holds the scalar type for MappingScalar and the target class for
// references; it is empty for MappingNone.
type FieldResolution struct {
	MappingType MappingType
	TargetType  string
	Multivalue  bool
}

// Resolve classifies fieldName.
func (m *ClassMetadata) Resolve(fieldName string) FieldResolution {
	if field, ok := m.Fields[fieldName]; ok {
		return FieldResolution{
			MappingType: MappingScalar,
			TargetType:  field.Type,
			Multivalue:  field.Multivalue,
		}
	}
	if assoc, ok := m.Associations[fieldName]; ok {
		return FieldResolution{
			MappingType: assoc.Kind,
			TargetType:  assoc.TargetDocument,
			Multivalue:  assoc.Kind == MappingReferenceMany,
		}
	}
	return FieldResolution{MappingType: MappingNone}
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
