// Package errors holds the typed errors of liftmap. Pipeline failures map to
// a Kind so a run can be reported as a tagged result instead of a bare error.
package errors

import (
	"errors"
	"fmt"
)

// New is errors.New, re-exported so callers need a single errors import.
var New = errors.New

// Sentinels matched with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidValue  = errors.New("invalid value")

	ErrSourceUnavailable   = errors.New("source unavailable")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrValidationFailed    = errors.New("validation failed")
	ErrPersistenceFailed   = errors.New("persistence failed")
	ErrLinkFailed          = errors.New("link failed")
	ErrInvalidTransition   = errors.New("invalid stage transition")
)

// Kind classifies a pipeline failure for tagged results.
type Kind string

// Pipeline failure kinds.
const (
	KindNone              Kind = ""
	KindSourceUnavailable Kind = "source_unavailable"
	KindValidationFailed  Kind = "validation_failed"
	KindPersistenceFailed Kind = "persistence_failed"
	KindLinkError         Kind = "link_error"
	KindInternal          Kind = "internal"
)

// KindOf returns the pipeline failure kind of err. A link failure caused by
// the store is still a link failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrSourceUnavailable):
		return KindSourceUnavailable
	case errors.Is(err, ErrValidationFailed):
		return KindValidationFailed
	case errors.Is(err, ErrLinkFailed):
		return KindLinkError
	case errors.Is(err, ErrPersistenceFailed):
		return KindPersistenceFailed
	default:
		return KindInternal
	}
}

// IsNotFound reports whether err is, or wraps, a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsSourceUnavailable reports whether every payload source failed.
func IsSourceUnavailable(err error) bool { return errors.Is(err, ErrSourceUnavailable) }

// IsUpstreamUnavailable reports whether a remote endpoint answered 5xx.
func IsUpstreamUnavailable(err error) bool { return errors.Is(err, ErrUpstreamUnavailable) }

// NotFoundError names a record that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError returns a NotFoundError for resource id.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError rejects a single option, setting or field value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidValue }

// NewValidationError returns a ValidationError for field.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError reports a component that could not be configured.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError returns a ConfigError for component.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

func message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
