// Package validate applies the structural schema and the minimum catalog size
// gate to normalized exercises.
//
// Validation never returns an error. It reports: Outcome.OK is true only when
// the payload has at least MinCount records and every record passes the
// schema, and Outcome.Report explains every rejection.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/constants"
	pkgerrors "github.com/agentstation/liftmap/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Sample describes one record called out in a report.
type Sample struct {
	Index   int      `json:"index" yaml:"index"`
	Name    string   `json:"name" yaml:"name"`
	Reasons []string `json:"reasons" yaml:"reasons"`
}

// Report summarizes a validation pass.
type Report struct {
	Total          int      `json:"total" yaml:"total"`
	ValidCount     int      `json:"valid_count" yaml:"valid_count"`
	InvalidCount   int      `json:"invalid_count" yaml:"invalid_count"`
	MinCount       int      `json:"min_count" yaml:"min_count"`
	BelowMinimum   bool     `json:"below_minimum" yaml:"below_minimum"`
	InvalidSamples []Sample `json:"invalid_samples" yaml:"invalid_samples"`
	WarningCount   int      `json:"warning_count" yaml:"warning_count"`
	WarningSamples []Sample `json:"warning_samples" yaml:"warning_samples"`
}

// Err converts a failing report into a ValidationFailedError, or nil when it passed.
func (r *Report) Err() error {
	if r == nil || (!r.BelowMinimum && r.InvalidCount == 0) {
		return nil
	}
	reasons := make([]string, 0, len(r.InvalidSamples))
	for _, s := range r.InvalidSamples {
		reasons = append(reasons, fmt.Sprintf("#%d %q: %s", s.Index, s.Name, strings.Join(s.Reasons, ", ")))
	}
	return &pkgerrors.ValidationFailedError{
		Total:        r.Total,
		Invalid:      r.InvalidCount,
		MinCount:     r.MinCount,
		BelowMinimum: r.BelowMinimum,
		Reasons:      reasons,
	}
}

// Outcome is the result of validating a payload.
type Outcome struct {
	OK bool
	// Normalized holds the records that passed the schema, in input order.
	Normalized []catalogs.Exercise
	Report     Report
}

// Validator checks normalized exercises.
type Validator struct {
	validate   *validator.Validate
	maxInvalid int
	maxWarning int
}

// Option configures a Validator.
type Option func(*Validator)

// WithSampleLimits overrides how many invalid and warning samples a report keeps.
func WithSampleLimits(invalid, warning int) Option {
	return func(v *Validator) {
		v.maxInvalid = invalid
		v.maxWarning = warning
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		validate:   validator.New(),
		maxInvalid: constants.MaxInvalidSamples,
		maxWarning: constants.MaxWarningSamples,
	}
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = New()

// Validate checks records with the default validator.
func Validate(records []catalogs.Exercise, minCount int) Outcome {
	return defaultValidator.Validate(records, minCount)
}

// Validate checks every record against the schema and the payload against minCount.
func (v *Validator) Validate(records []catalogs.Exercise, minCount int) Outcome {
	report := Report{
		Total:          len(records),
		MinCount:       minCount,
		BelowMinimum:   len(records) < minCount,
		InvalidSamples: []Sample{},
		WarningSamples: []Sample{},
	}
	valid := make([]catalogs.Exercise, 0, len(records))

	for i := range records {
		rec := records[i]
		if reasons := v.Check(&rec); len(reasons) > 0 {
			report.InvalidCount++
			if len(report.InvalidSamples) < v.maxInvalid {
				report.InvalidSamples = append(report.InvalidSamples, Sample{Index: i, Name: rec.Name, Reasons: reasons})
			}
			continue
		}
		report.ValidCount++
		valid = append(valid, rec)

		if warnings := Warnings(&rec); len(warnings) > 0 {
			report.WarningCount++
			if len(report.WarningSamples) < v.maxWarning {
				report.WarningSamples = append(report.WarningSamples, Sample{Index: i, Name: rec.Name, Reasons: warnings})
			}
		}
	}

	return Outcome{
		OK:         !report.BelowMinimum && report.InvalidCount == 0,
		Normalized: valid,
		Report:     report,
	}
}

// Check returns the human-readable schema violations of one record.
func (v *Validator) Check(ex *catalogs.Exercise) []string {
	err := v.validate.Struct(ex)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	reasons := make([]string, 0, len(verrs))
	seen := make(map[string]struct{}, len(verrs))
	for _, fe := range verrs {
		r := describe(fe)
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		reasons = append(reasons, r)
	}
	return reasons
}

// Warnings lists missing-but-optional metadata on a valid record.
func Warnings(ex *catalogs.Exercise) []string {
	var w []string
	if ex.Category == "" {
		w = append(w, "category is missing")
	}
	if ex.Pattern == "" {
		w = append(w, "movement pattern is missing")
	}
	if len(ex.SecondaryMuscles) == 0 {
		w = append(w, "secondary_muscles is empty")
	}
	if len(ex.Cautions) == 0 {
		w = append(w, "cautions is empty")
	}
	return w
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		if strings.Contains(field, "[") {
			return field + " is empty"
		}
		return field + " is required"
	case "min":
		return field + " must not be empty"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
