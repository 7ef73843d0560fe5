package mortality

import (
	"fmt"
	"strings"
)

// IOError indicates the dataset file could not be opened or read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read dataset %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// SchemaError indicates one or more required columns are absent from the header.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %s: missing required column(s): %s", e.Path, strings.Join(e.Missing, ", "))
}

// MalformedDataError indicates a field that failed to parse. Row is the
// 1-based data row (the header is row 0).
type MalformedDataError struct {
	Path   string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *MalformedDataError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("dataset %s: row %d: %v", e.Path, e.Row, e.Err)
	}
	return fmt.Sprintf("dataset %s: row %d: column %q: invalid value %q: %v", e.Path, e.Row, e.Column, e.Value, e.Err)
}

func (e *MalformedDataError) Unwrap() error { return e.Err }
