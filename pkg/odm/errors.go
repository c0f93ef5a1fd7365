package odm

import "errors"

var (
	// ErrNotManaged reports that a class has no document mapping.
	ErrNotManaged = errors.New("odm: class is not managed")
	// ErrNoManagerFound reports that no registered manager handles a class.
	ErrNoManagerFound = errors.New("odm: no manager found for class")
	// ErrMappingInvalid reports a malformed mapping definition.
	ErrMappingInvalid = errors.New("odm: invalid mapping")
)
