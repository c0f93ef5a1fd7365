package metadata

import "strings"

// Type is a serializer type descriptor: a name plus ordered nested parameters.
// Params is never nil on values produced by this package so descriptors compare
// equal to literal {name, []} values and marshal as "params": [].
type Type struct {
	Name   string `json:"name" yaml:"name"`
	Params []Type `json:"params" yaml:"params"`
}

// NewType builds a descriptor with the supplied parameters.
func NewType(name string, params ...Type) Type {
	out := Type{Name: name, Params: make([]Type, 0, len(params))}
	out.Params = append(out.Params, params...)
	return out
}

// TypePtr returns a pointer to a fresh descriptor, handy when assigning
// PropertyMetadata.Type.
func TypePtr(name string, params ...Type) *Type {
	t := NewType(name, params...)
	return &t
}

// String renders the descriptor using the type grammar accepted by ParseType.
func (t Type) String() string {
	if len(t.Params) == 0 {
		return t.Name
	}
	var b strings.Builder
	b.WriteString(t.Name)
	b.WriteByte('<')
	for i, param := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if needsQuoting(param) {
			b.WriteByte('\'')
			b.WriteString(strings.ReplaceAll(param.Name, "'", "\\'"))
			b.WriteByte('\'')
			continue
		}
		b.WriteString(param.String())
	}
	b.WriteByte('>')
	return b.String()
}

// Clone returns a deep copy.
func (t Type) Clone() Type {
	out := Type{Name: t.Name, Params: make([]Type, len(t.Params))}
	for i, param := range t.Params {
		out.Params[i] = param.Clone()
	}
	return out
}

// Validate reports whether the descriptor tree is well formed: every node has a
// name and a non-nil parameter list.
func (t Type) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrInvalidType
	}
	if t.Params == nil {
		return ErrInvalidType
	}
	for _, param := range t.Params {
		if err := param.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsCollection reports whether the descriptor names a list-like container.
func (t Type) IsCollection() bool {
	switch t.Name {
	case "array", "list", "ArrayCollection", "Collection":
		return true
	}
	return false
}

func needsQuoting(t Type) bool {
	if len(t.Params) > 0 {
		return false
	}
	for _, r := range t.Name {
		if !isIdentRune(r) {
			return true
		}
	}
	return t.Name == ""
}
