package sheet

import (
	"errors"
	"fmt"
)

// ErrorKind classifies conversion failures for the caller.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindUnsupportedFormat
	KindMalformedInput
	KindEmptyDataset
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindMalformedInput:
		return "malformed_input"
	case KindEmptyDataset:
		return "empty_dataset"
	default:
		return "internal"
	}
}

// Error is a classified failure. Err is usually a *util.Result chain.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidInputError(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

func UnsupportedFormatError(msg string) *Error {
	return &Error{Kind: KindUnsupportedFormat, Msg: msg}
}

func MalformedInputError(msg string, err error) *Error {
	return &Error{Kind: KindMalformedInput, Msg: msg, Err: err}
}

func EmptyDatasetError(msg string) *Error {
	return &Error{Kind: KindEmptyDataset, Msg: msg}
}

// KindOf returns the classification of err, KindInternal when unclassified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
