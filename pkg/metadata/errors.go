package metadata

import "errors"

var (
	// ErrNoMetadata reports that a driver has no metadata for the requested
	// class. Chains treat it as "try the next driver".
	ErrNoMetadata = errors.New("metadata: no metadata for class")
	// ErrInvalidType reports a malformed type string or descriptor.
	ErrInvalidType = errors.New("metadata: invalid type")
	// ErrInvalidClass reports a class reference without a usable name.
	ErrInvalidClass = errors.New("metadata: invalid class")
)
