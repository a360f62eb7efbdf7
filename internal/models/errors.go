package models

import (
	"errors"
	"fmt"
)

var (
	// ErrReferenceUnavailable means the reference document could not be loaded for a cycle.
	ErrReferenceUnavailable = errors.New("reference document unavailable")
	// ErrCycleInProgress is returned when a cycle is requested while another one runs.
	ErrCycleInProgress = errors.New("scan cycle already in progress")
	// ErrDuplicateTarget is returned when an owner registers a target twice.
	ErrDuplicateTarget = errors.New("target already registered")
	// ErrTargetNotFound is returned when removing a target that is not registered.
	ErrTargetNotFound = errors.New("target not registered")
	// ErrNoTargets is returned when an owner without targets tries to remove one.
	ErrNoTargets = errors.New("owner has no registered targets")
	// ErrEmptyTarget is returned for blank target input.
	ErrEmptyTarget = errors.New("target is empty")
)

// FetchErrorKind classifies why a target could not be fetched.
type FetchErrorKind string

const (
	FetchErrorNotFound       FetchErrorKind = "not_found"
	FetchErrorReadFailure    FetchErrorKind = "read_failure"
	FetchErrorNetworkFailure FetchErrorKind = "network_failure"
)

// FetchError is returned by the fetcher for any target it cannot turn into text.
type FetchError struct {
	Kind   FetchErrorKind
	Target Target
	Detail string
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchErrorNotFound:
		return fmt.Sprintf("file %s not found", e.Target)
	case FetchErrorReadFailure:
		return fmt.Sprintf("failed to read file %s: %s", e.Target, e.Detail)
	default:
		return fmt.Sprintf("failed to fetch %s: %s", e.Target, e.Detail)
	}
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError builds a FetchError, using err's message as detail when detail is empty.
func NewFetchError(kind FetchErrorKind, target Target, detail string, err error) *FetchError {
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return &FetchError{Kind: kind, Target: target, Detail: detail, Err: err}
}

// AsFetchError extracts a FetchError from an error chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// RegistryLoadError aborts the current cycle when the registry cannot be read.
type RegistryLoadError struct {
	Err error
}

func (e *RegistryLoadError) Error() string {
	return fmt.Sprintf("failed to load registry: %v", e.Err)
}

func (e *RegistryLoadError) Unwrap() error {
	return e.Err
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
