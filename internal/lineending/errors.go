package lineending

import (
	"errors"
	"strconv"
)

var (
	// ErrMissingArgument reports a required parameter holding the absent marker.
	ErrMissingArgument = errors.New("missing argument")
	// ErrUnknownValue reports a string that is not a known line ending.
	ErrUnknownValue = errors.New("not a known line ending")
)

// ArgumentError names the parameter that was absent.
type ArgumentError struct {
	Name string
}

func (e *ArgumentError) Error() string {
	return ErrMissingArgument.Error() + ": " + e.Name
}

func (e *ArgumentError) Unwrap() error { return ErrMissingArgument }

// UnknownValueError carries the value that failed to resolve.
type UnknownValueError struct {
	Value string
}

func (e *UnknownValueError) Error() string {
	return strconv.Quote(e.Value) + ": " + ErrUnknownValue.Error()
}

func (e *UnknownValueError) Unwrap() error { return ErrUnknownValue }

// Missing returns an ArgumentError for the named parameter.
func Missing(name string) error {
	return &ArgumentError{Name: name}
}
