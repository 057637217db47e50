// Package differ detects field-level changes between two versions of an exercise.
package differ

import (
	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/policy"
)

// Differ handles change detection between exercises.
type Differ interface {
	// Exercise compares two versions of one exercise. It returns nil when nothing changed.
	Exercise(existing, updated *catalogs.Exercise) *ExerciseUpdate

	// Exercises compares persisted records against updated ones, matched by stable ID.
	Exercises(existing, updated []catalogs.Exercise) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	fields       policy.Table
	ignoreFields map[string]bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		fields:       policy.Default(),
		ignoreFields: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Exercise compares two versions of one exercise.
func (diff *differ) Exercise(existing, updated *catalogs.Exercise) *ExerciseUpdate {
	changes := []FieldChange{}
	for _, f := range diff.fields {
		if diff.ignoreFields[f.Name] || f.Equal(existing, updated) {
			continue
		}
		changes = append(changes, FieldChange{
			Path:     f.Name,
			OldValue: truncateString(f.Format(existing), 80),
			NewValue: truncateString(f.Format(updated), 80),
			Type:     changeType(f.Missing(existing), f.Missing(updated)),
		})
	}
	if len(changes) == 0 {
		return nil
	}
	return &ExerciseUpdate{
		StableID: existing.StableID,
		Name:     existing.Name,
		Changes:  changes,
	}
}

// Exercises compares two record sets matched by stable ID.
func (diff *differ) Exercises(existing, updated []catalogs.Exercise) *Changeset {
	cs := &Changeset{
		Added:   []catalogs.Exercise{},
		Updated: []ExerciseUpdate{},
	}
	byID := make(map[string]*catalogs.Exercise, len(existing))
	for i := range existing {
		byID[existing[i].StableID] = &existing[i]
	}
	for i := range updated {
		prev, ok := byID[updated[i].StableID]
		if !ok {
			cs.Added = append(cs.Added, updated[i])
			continue
		}
		if u := diff.Exercise(prev, &updated[i]); u != nil {
			cs.Updated = append(cs.Updated, *u)
		} else {
			cs.Unchanged++
		}
	}
	return cs
}

func changeType(wasMissing, isMissing bool) ChangeType {
	switch {
	case wasMissing && !isMissing:
		return ChangeTypeAdd
	case !wasMissing && isMissing:
		return ChangeTypeRemove
	default:
		return ChangeTypeUpdate
	}
}

func truncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
