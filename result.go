package liftmap

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/seedstate"
	"github.com/agentstation/liftmap/pkg/validate"
)

// Status tags the outcome of an operation.
type Status string

// Operation statuses.
const (
	StatusSuccess Status = "success"
	StatusDryRun  Status = "dry-run"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// String returns the string representation of a status.
func (s Status) String() string {
	return string(s)
}

// Operation names a pipeline entry point.
type Operation string

// Pipeline operations.
const (
	OperationImport Operation = "import"
	OperationRepair Operation = "repair"
	OperationLinks  Operation = "links"
	OperationSeed   Operation = "seed"
)

// String returns the string representation of an operation.
func (o Operation) String() string {
	return string(o)
}

// Result is the tagged outcome of a pipeline operation.
type Result struct {
	Status    Status      `json:"status" yaml:"status"`
	Operation Operation   `json:"operation" yaml:"operation"`
	Message   string      `json:"message" yaml:"message"`
	ErrorKind errors.Kind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Err       error       `json:"-" yaml:"-"`

	Stats       seedstate.RunStats `json:"stats" yaml:"stats"`
	Validation  *validate.Report   `json:"validation,omitempty" yaml:"validation,omitempty"`
	Source      string             `json:"source,omitempty" yaml:"source,omitempty"`
	ContentHash string             `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
	Warnings    []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// LinkError is set when the trailing link pass of an import failed.
	// It does not change Status.
	LinkError string `json:"link_error,omitempty" yaml:"link_error,omitempty"`

	// Stages lists the pipeline stages the run went through.
	Stages []seedstate.Stage `json:"stages" yaml:"stages"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// OK reports whether the operation did not fail.
func (r *Result) OK() bool {
	return r != nil && r.Status != StatusError
}

// Duration returns the wall time of the operation.
func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", r.Operation, r.Status)
	switch r.Status {
	case StatusError:
		fmt.Fprintf(&b, " (%s): %s", r.ErrorKind, r.Message)
		return b.String()
	case StatusSkipped:
		fmt.Fprintf(&b, ": %s", r.Message)
		return b.String()
	}
	s := r.Stats
	switch r.Operation {
	case OperationLinks:
		fmt.Fprintf(&b, ": %d exercises linked", s.Linked)
	default:
		fmt.Fprintf(&b, ": %d inserted, %d updated, %d skipped", s.Inserted, s.Updated, s.Skipped)
		if s.UserOwned > 0 {
			fmt.Fprintf(&b, " (%d user-owned)", s.UserOwned)
		}
		if s.Equipment > 0 {
			fmt.Fprintf(&b, ", %d equipment created", s.Equipment)
		}
	}
	if r.LinkError != "" {
		b.WriteString("; linking failed: " + r.LinkError)
	}
	return b.String()
}
