package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned when a report window's start is not strictly
// before its end. It is checked before any data is fetched.
var ErrInvalidWindow = errors.New("window start must be before window end")

// ErrNotFound is returned by drill-down builders for an unknown project or
// user id.
var ErrNotFound = errors.New("not found")

// DataFetchError wraps a failed source query. Report builds are
// all-or-nothing: one failed fetch aborts the whole build and no partial
// report is emitted.
type DataFetchError struct {
	Source string
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }
