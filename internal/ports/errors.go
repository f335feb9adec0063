package ports

import (
	"errors"
	"fmt"
)

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUsage              = errors.New("no input files supplied")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Input Errors
	ErrFileAccess = errors.New("input file cannot be opened")
	ErrParse      = errors.New("malformed trade record")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)

// ParseError describes a trade log cell that could not be converted.
// errors.Is(err, ErrParse) is true for every ParseError.
type ParseError struct {
	Path  string // Input file
	Line  int    // 1-based record number; the header is record 1
	Field string // Column name
	Value string // Raw cell content
	Err   error  // Underlying conversion error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: field %s=%q: %v", e.Path, e.Line, e.Field, e.Value, e.Err)
}

// Unwrap exposes both ErrParse and the underlying error.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
