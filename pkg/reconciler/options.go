package reconciler

import (
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/policy"
	"github.com/agentstation/utc"
	"github.com/google/uuid"
)

type options struct {
	table  policy.Table
	repair bool
	now    func() utc.Time
	newID  func() string
}

func defaultOptions() *options {
	return &options{
		table: policy.Default(),
		now:   utc.Now,
		newID: uuid.NewString,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithPolicy sets the field merge table.
func WithPolicy(table policy.Table) Option {
	return func(o *options) error {
		if len(table) == 0 {
			return &errors.ValidationError{Field: "policy", Message: "cannot be empty"}
		}
		o.table = table
		return nil
	}
}

// WithRepair enables repair mode: fallback-key matching, no inserts, and
// clearing of placeholder-only lists.
func WithRepair(enabled bool) Option {
	return func(o *options) error {
		o.repair = enabled
		return nil
	}
}

// WithClock sets the timestamp source.
func WithClock(now func() utc.Time) Option {
	return func(o *options) error {
		if now == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.now = now
		return nil
	}
}

// WithIDGenerator sets the primary key generator for inserted records.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) error {
		if newID == nil {
			return &errors.ValidationError{Field: "id_generator", Message: "cannot be nil"}
		}
		o.newID = newID
		return nil
	}
}
