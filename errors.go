// FILE: lixenwraith/zconfig/errors.go
package zconfig

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned when a required path has no value.
	ErrKeyNotFound = errors.New("no such key")
	// ErrEmptyPath is returned when a path normalizes to zero segments.
	ErrEmptyPath = errors.New("empty path")
	// ErrCoercion is matched by every *CoercionError.
	ErrCoercion = errors.New("coercion failed")
	// ErrUnit is matched by every *UnitError.
	ErrUnit = errors.New("unrecognized unit")
	// ErrEmptyDocument is returned by parsers whose input holds no mapping.
	// The loader logs it and merges nothing.
	ErrEmptyDocument = errors.New("document does not contain a mapping")
	// ErrDecode is returned when file bytes are invalid for the requested text encoding.
	ErrDecode = errors.New("text decoding failed")
	// ErrNoParser is returned when no registered parser handles a file.
	ErrNoParser = errors.New("no parser handles file")
	// ErrUnknownProvider is returned when a secret provider name was never registered.
	ErrUnknownProvider = errors.New("unknown secret provider")
)

// CoercionError reports a present value that could not be converted to the requested type.
type CoercionError struct {
	Path  string
	Value any
	Type  string
	Err   error
}

func (e *CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %#v at %q to %s: %v", e.Value, e.Path, e.Type, e.Err)
	}
	return fmt.Sprintf("cannot convert %#v at %q to %s", e.Value, e.Path, e.Type)
}

func (e *CoercionError) Unwrap() error { return e.Err }

func (e *CoercionError) Is(target error) bool { return target == ErrCoercion }

// UnitError reports an unknown unit suffix in a byte-size or duration value.
type UnitError struct {
	Unit string
	Kind string
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("unrecognized %s unit %q", e.Kind, e.Unit)
}

func (e *UnitError) Is(target error) bool { return target == ErrUnit }
