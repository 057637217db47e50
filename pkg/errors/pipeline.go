package errors

import (
	"fmt"
	"strings"
)

// APIError is a failed request against a remote payload endpoint. A 5xx
// status matches ErrUpstreamUnavailable.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("API error from %s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("API error from %s (status %d): %s", e.Source, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	return target == ErrUpstreamUnavailable && e.StatusCode >= 500
}

// NewAPIError returns an APIError for a response with statusCode.
func NewAPIError(source string, statusCode int, message string) *APIError {
	return &APIError{Source: source, StatusCode: statusCode, Message: message}
}

// SourceAttempt is one failed retrieval in a source chain.
type SourceAttempt struct {
	Source string
	Err    error
}

// SourceUnavailableError means every candidate source failed. It unwraps to
// the per-attempt errors.
type SourceUnavailableError struct {
	Attempts []SourceAttempt
}

func (e *SourceUnavailableError) Error() string {
	if len(e.Attempts) == 0 {
		return "no exercise sources configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Source, a.Err)
	}
	return "all exercise sources failed: " + strings.Join(parts, "; ")
}

func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

func (e *SourceUnavailableError) Unwrap() []error {
	var errs []error
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// NewSourceUnavailableError returns a SourceUnavailableError over attempts.
func NewSourceUnavailableError(attempts []SourceAttempt) *SourceUnavailableError {
	return &SourceUnavailableError{Attempts: attempts}
}

// ValidationFailedError is a payload rejected by the validation gate.
type ValidationFailedError struct {
	Total        int
	Invalid      int
	MinCount     int
	BelowMinimum bool
	Reasons      []string
}

func (e *ValidationFailedError) Error() string {
	var b strings.Builder
	b.WriteString("payload rejected")
	sep := ":"
	if e.BelowMinimum {
		fmt.Fprintf(&b, ": %d records is below the minimum of %d", e.Total, e.MinCount)
		sep = " and"
	}
	if e.Invalid > 0 {
		fmt.Fprintf(&b, "%s %d of %d records invalid", sep, e.Invalid, e.Total)
	}
	if len(e.Reasons) > 0 {
		fmt.Fprintf(&b, " (first: %s)", e.Reasons[0])
	}
	return b.String()
}

func (e *ValidationFailedError) Is(target error) bool { return target == ErrValidationFailed }

// PersistenceError is an aborted store transaction. Nothing it covered was
// written.
type PersistenceError struct {
	Operation string
	Message   string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %s", e.Operation, e.Message)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistenceFailed }

// NewPersistenceError returns a PersistenceError for operation.
func NewPersistenceError(operation string, err error) *PersistenceError {
	return &PersistenceError{Operation: operation, Message: message(err), Err: err}
}

// LinkError is a failure of the relationship linker at stage.
type LinkError struct {
	Stage string
	Err   error
}

func (e *LinkError) Error() string { return fmt.Sprintf("link %s failed: %v", e.Stage, e.Err) }

func (e *LinkError) Unwrap() error { return e.Err }

func (e *LinkError) Is(target error) bool { return target == ErrLinkFailed }

// NewLinkError returns a LinkError for stage.
func NewLinkError(stage string, err error) *LinkError {
	return &LinkError{Stage: stage, Err: err}
}

// TransitionError is a stage change the seed state machine refuses.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from stage %q to %q", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
