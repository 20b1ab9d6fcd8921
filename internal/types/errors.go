package types

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is matched by every EmptyInputError via errors.Is.
var ErrEmptyInput = errors.New("empty input")

// EmptyInputError reports a device or template set without rows.
type EmptyInputError struct {
	Set  string // "devices" or "templates"
	Path string
}

func (e *EmptyInputError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s input is empty: %s", e.Set, e.Path)
	}
	return fmt.Sprintf("%s input is empty", e.Set)
}

func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}

// DecodeError means neither UTF-8 nor GBK could decode a source file.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s as UTF-8 or GBK: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MalformedNumberError is raised when an offset or address cannot be parsed
// the way the active protocol family requires.
type MalformedNumberError struct {
	Source string // "device" or "template"
	Line   int
	Field  string
	Value  string
	Err    error
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("%s line %d: field %s: malformed number %q", e.Source, e.Line, e.Field, e.Value)
}

func (e *MalformedNumberError) Unwrap() error {
	return e.Err
}

// MissingColumnError is returned at load time when an expected header is absent.
type MissingColumnError struct {
	Path   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing column %q", e.Path, e.Column)
}

// UnknownDataTypeError is returned when unknown template types are rejected.
type UnknownDataTypeError struct {
	Line  int
	Value string
}

func (e *UnknownDataTypeError) Error() string {
	return fmt.Sprintf("template line %d: unknown data type %q", e.Line, e.Value)
}
