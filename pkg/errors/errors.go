// Package errors provides structured error types for pakt.
//
// This package defines error codes and types that enable:
//   - Consistent error handling between the CLI and the install engine
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - NETWORK_*, REGISTRY_*: Transport and registry failures
//   - UNRESOLVED_VERSION, CYCLE_DETECTED, ARCHIVE_ERROR: install failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid package name: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRegistry, origErr, "fetch %s", name)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"

	// Registry and transport errors
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeRegistry Code = "REGISTRY_ERROR"

	// Install errors
	ErrCodeUnresolvedVersion Code = "UNRESOLVED_VERSION"
	ErrCodeArchive           Code = "ARCHIVE_ERROR"
	ErrCodeCycleDetected     Code = "CYCLE_DETECTED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coder is implemented by typed errors that carry their own code.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed error
// with a matching code.
func Is(err error, code Code) bool {
	for err != nil {
		if GetCode(err) == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var e *Error
	var c coder
	switch {
	case errors.As(err, &e):
		return e.Code
	case errors.As(err, &c):
		return c.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// UnresolvedVersionError reports that no known version of a package
// satisfies the requested constraint.
type UnresolvedVersionError struct {
	Package    string
	Constraint string
}

// Error implements the error interface.
func (e *UnresolvedVersionError) Error() string {
	return fmt.Sprintf("could not resolve version for %s@%s", e.Package, e.Constraint)
}

// Code returns the error code for this error type.
func (e *UnresolvedVersionError) Code() Code {
	return ErrCodeUnresolvedVersion
}

// CycleDetectedError reports a package that transitively depends on itself.
// Path lists the package names from the first occurrence back to the repeat.
type CycleDetectedError struct {
	Path []string
}

// Error implements the error interface.
func (e *CycleDetectedError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Path, " -> ")
}

// Code returns the error code for this error type.
func (e *CycleDetectedError) Code() Code {
	return ErrCodeCycleDetected
}
