package record

import (
	"errors"
	"fmt"
)

// ErrPortRange is the cause of a ParseError for a numeric port outside 1-65535.
var ErrPortRange = errors.New("port out of range")

// ParseError reports a record that named a domain but carried an unusable
// field. Only that record is affected.
type ParseError struct {
	File  string
	Line  int
	Field string
	Value string
	Cause error
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("parse error at %s:%d: invalid %s %q: %v", file, e.Line, e.Field, e.Value, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
