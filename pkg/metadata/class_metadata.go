package metadata

import (
	"slices"
	"time"
)

// PropertyMetadata describes how one property of a class is serialized. A nil
// Type means no driver declared one; decorators may fill it in.
type PropertyMetadata struct {
	Class          string   `json:"class" yaml:"class"`
	Name           string   `json:"name" yaml:"name"`
	SerializedName string   `json:"serializedName,omitempty" yaml:"serializedName,omitempty"`
	Type           *Type    `json:"type,omitempty" yaml:"type,omitempty"`
	ReadOnly       bool     `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Virtual        bool     `json:"virtual,omitempty" yaml:"virtual,omitempty"`
	Inline         bool     `json:"inline,omitempty" yaml:"inline,omitempty"`
	SkipWhenEmpty  bool     `json:"skipWhenEmpty,omitempty" yaml:"skipWhenEmpty,omitempty"`
	Groups         []string `json:"groups,omitempty" yaml:"groups,omitempty"`
	SinceVersion   string   `json:"sinceVersion,omitempty" yaml:"sinceVersion,omitempty"`
	UntilVersion   string   `json:"untilVersion,omitempty" yaml:"untilVersion,omitempty"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewPropertyMetadata creates an untyped property owned by class.
func NewPropertyMetadata(class, name string) *PropertyMetadata {
	return &PropertyMetadata{Class: class, Name: name, SerializedName: name}
}

// SetType assigns a copy of t.
func (p *PropertyMetadata) SetType(t Type) {
	clone := t.Clone()
	p.Type = &clone
}

// HasType reports whether a type has been declared or inferred.
func (p *PropertyMetadata) HasType() bool {
	return p != nil && p.Type != nil && p.Type.Name != ""
}

// Clone returns a deep copy.
func (p *PropertyMetadata) Clone() *PropertyMetadata {
	if p == nil {
		return nil
	}
	out := *p
	if p.Type != nil {
		clone := p.Type.Clone()
		out.Type = &clone
	}
	out.Groups = slices.Clone(p.Groups)
	return &out
}

// ClassMetadata is the metadata produced once per class by a Driver. Properties
// keep the order in which the driver discovered them.
type ClassMetadata struct {
	Name          string              `json:"name" yaml:"name"`
	Properties    []*PropertyMetadata `json:"properties" yaml:"properties"`
	CreatedAt     time.Time           `json:"createdAt" yaml:"createdAt"`
	FileResources []string            `json:"fileResources,omitempty" yaml:"fileResources,omitempty"`
}

// NewClassMetadata creates an empty metadata record stamped with the current
// time.
func NewClassMetadata(name string) *ClassMetadata {
	return &ClassMetadata{
		Name:       name,
		Properties: []*PropertyMetadata{},
		CreatedAt:  time.Now(),
	}
}

// Property looks up a property by name.
func (m *ClassMetadata) Property(name string) (*PropertyMetadata, bool) {
	if m == nil {
		return nil, false
	}
	for _, prop := range m.Properties {
		if prop != nil && prop.Name == name {
			return prop, true
		}
	}
	return nil, false
}

// AddProperty appends prop, replacing an existing property with the same name
// in place.
func (m *ClassMetadata) AddProperty(prop *PropertyMetadata) {
	if prop == nil {
		return
	}
	for i, existing := range m.Properties {
		if existing != nil && existing.Name == prop.Name {
			m.Properties[i] = prop
			return
		}
	}
	m.Properties = append(m.Properties, prop)
}

// RemoveProperty drops the named property and reports whether it existed.
func (m *ClassMetadata) RemoveProperty(name string) bool {
	if m == nil {
		return false
	}
	for i, existing := range m.Properties {
		if existing != nil && existing.Name == name {
			m.Properties = slices.Delete(m.Properties, i, i+1)
			return true
		}
	}
	return false
}

// PropertyNames returns property names in discovery order.
func (m *ClassMetadata) PropertyNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.Properties))
	for _, prop := range m.Properties {
		if prop != nil {
			names = append(names, prop.Name)
		}
	}
	return names
}

// AddFileResource records a file the metadata was read from.
func (m *ClassMetadata) AddFileResource(path string) {
	if path == "" || slices.Contains(m.FileResources, path) {
		return
	}
	m.FileResources = append(m.FileResources, path)
}

// Clone returns a deep copy so cached metadata can be handed out safely.
func (m *ClassMetadata) Clone() *ClassMetadata {
	if m == nil {
		return nil
	}
	out := &ClassMetadata{
		Name:          m.Name,
		Properties:    make([]*PropertyMetadata, 0, len(m.Properties)),
		CreatedAt:     m.CreatedAt,
		FileResources: slices.Clone(m.FileResources),
	}
	for _, prop := range m.Properties {
		out.Properties = append(out.Properties, prop.Clone())
	}
	return out
}
