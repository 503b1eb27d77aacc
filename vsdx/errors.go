package vsdx

import "errors"

// Any of these aborts loading of the whole package. Callers should use
// errors.Is since actual errors are always wrapped with location details.
var (
	// ErrMalformedPackage is returned when a required part, element or
	// relationship is missing or has unexpected shape.
	ErrMalformedPackage = errors.New("malformed package")
	// ErrDuplicateKey is returned when an id is seen twice in the same index.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrMalformedNumber is returned when numeric attribute or cell value
	// could not be parsed.
	ErrMalformedNumber = errors.New("malformed number")
)
