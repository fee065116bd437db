// Package apperr defines the coded error taxonomy shared by the storage,
// file-tree, VCS, search and auth layers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind groups error codes by the layer that raised them.
type Kind string

const (
	KindFileSystem Kind = "filesystem"
	KindVCS        Kind = "vcs"
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
)

// Code identifies a specific error condition.
type Code string

const (
	// Storage capability
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeIOFailure        Code = "IO_FAILURE"
	CodeNotADirectory    Code = "NOT_A_DIRECTORY"

	// VCS
	CodeVCSFailure      Code = "VCS_FAILURE"
	CodeNoRepository    Code = "NO_REPOSITORY"
	CodeNothingToCommit Code = "NOTHING_TO_COMMIT"

	// Validation
	CodeEmptyMessage    Code = "EMPTY_MESSAGE"
	CodeInvalidPattern  Code = "INVALID_PATTERN"
	CodeInvalidEmail    Code = "INVALID_EMAIL"
	CodeInvalidPassword Code = "INVALID_PASSWORD"
	CodeInvalidName     Code = "INVALID_NAME"

	// Auth backend
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeNetwork            Code = "NETWORK"
)

// Error is a structured error with a kind, a code and optional context.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an Error without a cause.
func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an Error around an existing error.
func Wrap(err error, kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: err}
}

// FileSystem creates a storage capability error.
func FileSystem(code Code, message string, cause error) *Error {
	return &Error{Kind: KindFileSystem, Code: code, Message: message, Cause: cause}
}

// VCS wraps an error raised by the version-control library.
func VCS(cause error, message string) *Error {
	return &Error{Kind: KindVCS, Code: CodeVCSFailure, Message: message, Cause: cause}
}

// Validation creates an input validation error.
func Validation(code Code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func asError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	for err != nil {
		appErr, ok := asError(err)
		if !ok {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// CodeOf returns the outermost code in err's chain, or "".
func CodeOf(err error) Code {
	if appErr, ok := asError(err); ok {
		return appErr.Code
	}
	return ""
}

// KindOf returns the outermost kind in err's chain, or "".
func KindOf(err error) Kind {
	if appErr, ok := asError(err); ok {
		return appErr.Kind
	}
	return ""
}

// IsValidation reports whether err should be shown inline rather than as a
// failure banner.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
