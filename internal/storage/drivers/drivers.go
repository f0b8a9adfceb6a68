package drivers

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrTableNotFound is returned by reads of a table that was never written.
	ErrTableNotFound = errors.New("table not found")
)
