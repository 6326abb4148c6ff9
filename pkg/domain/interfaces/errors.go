package interfaces

import "github.com/m-mizutani/goerr/v2"

// Errors shared by every repository backend
var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = goerr.New("record not found")

	// ErrStaleWrite is returned when the stored version differs from the
	// version the write was based on
	ErrStaleWrite = goerr.New("record was modified concurrently")
)
