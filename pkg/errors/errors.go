package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeMalformedRow ErrorType = "malformed_row"
	ErrorTypeFetch        ErrorType = "fetch"
	ErrorTypeFilesystem   ErrorType = "filesystem"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error represents a pipeline error with type and location information
type Error struct {
	Type    ErrorType
	Message string
	// File and Row locate malformed input. Row is 1-based, 0 when unknown.
	File string
	Row  int
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.File != "" {
		if e.Row > 0 {
			msg = fmt.Sprintf("%s (%s row %d)", msg, e.File, e.Row)
		} else {
			msg = fmt.Sprintf("%s (%s)", msg, e.File)
		}
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MalformedRow reports a row with fewer fields than the schema requires
func MalformedRow(file string, row, have, want int) *Error {
	return &Error{
		Type:    ErrorTypeMalformedRow,
		Message: fmt.Sprintf("row has %d fields, need at least %d", have, want),
		File:    file,
		Row:     row,
	}
}

// Fetch wraps a failed remote fetch of uri
func Fetch(uri string, err error) *Error {
	return &Error{
		Type:    ErrorTypeFetch,
		Message: "failed to fetch " + uri,
		Err:     err,
	}
}

// Filesystem wraps a failed local filesystem operation on path
func Filesystem(path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeFilesystem,
		Message: "filesystem operation failed",
		File:    path,
		Err:     err,
	}
}

// Config reports an unusable configuration value
func Config(msg string) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Message: msg,
	}
}

// IsFatal reports whether an error of this type aborts the whole run.
// Fetch and filesystem errors only abort the record they belong to.
func IsFatal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeMalformedRow, ErrorTypeConfig:
		return true
	case ErrorTypeFetch, ErrorTypeFilesystem:
		return false
	default:
		return true
	}
}

// TypeOf returns the type of the first *Error in err's chain, or
// ErrorTypeUnknown when there is none
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}
