package differ

import "github.com/agentstation/liftmap/pkg/policy"

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithIgnoredFields sets fields to ignore during comparison.
func WithIgnoredFields(fields ...string) Option {
	return func(d *differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithFields compares using a custom field table.
func WithFields(table policy.Table) Option {
	return func(d *differ) {
		d.fields = table
	}
}
