package catalog

import "errors"

var (
	// ErrFileNotFound is returned when a catalog file does not exist.
	ErrFileNotFound = errors.New("catalog file does not exist")
	// ErrMalformed is returned when a catalog file cannot be decoded into the expected shape.
	ErrMalformed = errors.New("catalog file is malformed")
)
