// Package policy declares, field by field, how an incoming catalog record may
// change a persisted exercise. The reconciler applies the table; nothing else
// decides merge semantics.
package policy

import (
	"slices"
	"strings"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/normalize"
	"github.com/agentstation/utc"
)

// Rule is the merge rule of one field.
type Rule string

const (
	// FillIfMissing copies the incoming value only when the existing one is empty.
	FillIfMissing Rule = "fill_if_missing"
	// NeverOverwrite keeps the existing value unconditionally.
	NeverOverwrite Rule = "never_overwrite"
	// PreferIncomingIfNewer copies the incoming value when its source timestamp is later.
	PreferIncomingIfNewer Rule = "prefer_incoming_if_newer"
)

// Kind is the value shape of a field.
type Kind int

// Field kinds.
const (
	KindText Kind = iota
	KindList
	KindTime
)

// Field binds a rule to one exercise attribute.
type Field struct {
	Name string
	Rule Rule
	Kind Kind

	getText func(*catalogs.Exercise) string
	setText func(*catalogs.Exercise, string)
	getList func(*catalogs.Exercise) []string
	setList func(*catalogs.Exercise, []string)
	getTime func(*catalogs.Exercise) utc.Time
	setTime func(*catalogs.Exercise, utc.Time)
}

// Missing reports whether the field carries no real value on ex.
// Placeholder-only lists are missing.
func (f Field) Missing(ex *catalogs.Exercise) bool {
	switch f.Kind {
	case KindList:
		return normalize.IsMissing(f.getList(ex))
	case KindTime:
		return f.getTime(ex).Time.IsZero()
	default:
		return strings.TrimSpace(f.getText(ex)) == ""
	}
}

// PlaceholderOnly reports whether a list field holds only placeholder text.
func (f Field) PlaceholderOnly(ex *catalogs.Exercise) bool {
	return f.Kind == KindList && normalize.PlaceholderOnly(f.getList(ex))
}

// Equal reports whether a and b hold the same value for the field.
func (f Field) Equal(a, b *catalogs.Exercise) bool {
	switch f.Kind {
	case KindList:
		return slices.Equal(f.getList(a), f.getList(b))
	case KindTime:
		return f.getTime(a).Time.Equal(f.getTime(b).Time)
	default:
		return f.getText(a) == f.getText(b)
	}
}

// Format renders the field value of ex for change reports.
func (f Field) Format(ex *catalogs.Exercise) string {
	switch f.Kind {
	case KindList:
		return "[" + strings.Join(f.getList(ex), ", ") + "]"
	case KindTime:
		t := f.getTime(ex)
		if t.Time.IsZero() {
			return ""
		}
		return t.Time.UTC().Format("2006-01-02T15:04:05Z")
	default:
		return f.getText(ex)
	}
}

// Copy sets the field of dst to the value on src.
func (f Field) Copy(dst, src *catalogs.Exercise) {
	switch f.Kind {
	case KindList:
		f.setList(dst, slices.Clone(f.getList(src)))
	case KindTime:
		f.setTime(dst, f.getTime(src))
	default:
		f.setText(dst, f.getText(src))
	}
}

// Clear empties a list field. Other kinds are left alone.
func (f Field) Clear(dst *catalogs.Exercise) {
	if f.Kind == KindList {
		f.setList(dst, []string{})
	}
}

// Apply merges incoming into merged, which starts as a copy of existing.
// With repair set, a placeholder-only list that incoming cannot replace is cleared.
func (f Field) Apply(merged, existing, incoming *catalogs.Exercise, repair bool) {
	switch f.Rule {
	case NeverOverwrite:
		return
	case PreferIncomingIfNewer:
		if f.Missing(incoming) {
			return
		}
		if f.Missing(existing) || incoming.SourceUpdatedAt.Time.After(existing.SourceUpdatedAt.Time) {
			f.Copy(merged, incoming)
		}
	default:
		if !f.Missing(existing) {
			return
		}
		if !f.Missing(incoming) {
			f.Copy(merged, incoming)
			return
		}
		if repair && f.PlaceholderOnly(existing) {
			f.Clear(merged)
		}
	}
}
