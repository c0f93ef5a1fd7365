package metadata

import (
	"reflect"
	"strings"
)

// Class identifies the subject of a metadata lookup. Name is the fully
// qualified class name ("<import path>.<TypeName>" for Go types); Type is set
// when the class is backed by a Go type and reflection-based drivers can scan
// it.
type Class struct {
	Name string
	Type reflect.Type
}

// NamedClass references a class by name only.
func NamedClass(name string) Class {
	return Class{Name: strings.TrimSpace(name)}
}

// ClassOf builds a Class from a value, a pointer to a value, or a
// reflect.Type.
func ClassOf(v any) Class {
	var t reflect.Type
	switch typed := v.(type) {
	case nil:
		return Class{}
	case reflect.Type:
		t = typed
	default:
		t = reflect.TypeOf(v)
	}
	t = Indirect(t)
	return Class{Name: TypeName(t), Type: t}
}

// ClassFor returns the Class describing T.
func ClassFor[T any]() Class {
	return ClassOf(reflect.TypeOf((*T)(nil)).Elem())
}

// Valid reports whether the class carries a name.
func (c Class) Valid() bool {
	return c.Name != ""
}

// ShortName strips the package or namespace prefix from the class name.
func (c Class) ShortName() string {
	return ShortName(c.Name)
}

func (c Class) String() string {
	return c.Name
}

// TypeName returns the fully qualified name for a Go type. Named types render
// as "<import path>.<TypeName>"; unnamed types fall back to reflect's string
// form.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	t = Indirect(t)
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Indirect unwraps pointer types.
func Indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// ShortName strips everything up to the last path, namespace, or package
// separator from a fully qualified class name.
func ShortName(name string) string {
	if idx := strings.LastIndexAny(name, "/\\"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
