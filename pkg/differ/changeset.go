package differ

import (
	"fmt"
	"strings"

	"github.com/agentstation/liftmap/pkg/catalogs"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a field went from empty to populated.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a field value changed.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a field was cleared.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     `json:"path" yaml:"path"`
	OldValue string     `json:"old_value" yaml:"old_value"`
	NewValue string     `json:"new_value" yaml:"new_value"`
	Type     ChangeType `json:"type" yaml:"type"`
}

// ExerciseUpdate lists the changed fields of one exercise.
type ExerciseUpdate struct {
	StableID string        `json:"stable_id" yaml:"stable_id"`
	Name     string        `json:"name" yaml:"name"`
	Changes  []FieldChange `json:"changes" yaml:"changes"`
}

// Paths returns the changed field names.
func (u *ExerciseUpdate) Paths() []string {
	out := make([]string, 0, len(u.Changes))
	for _, c := range u.Changes {
		out = append(out, c.Path)
	}
	return out
}

// Changeset is the difference between two record sets.
type Changeset struct {
	Added     []catalogs.Exercise `json:"added" yaml:"added"`
	Updated   []ExerciseUpdate    `json:"updated" yaml:"updated"`
	Unchanged int                 `json:"unchanged" yaml:"unchanged"`
}

// HasChanges returns true if anything was added or updated.
func (c *Changeset) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Updated) > 0
}

// String returns a short human-readable summary.
func (c *Changeset) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d added, %d updated, %d unchanged", len(c.Added), len(c.Updated), c.Unchanged)
	for _, u := range c.Updated {
		fmt.Fprintf(&b, "\n  ~ %s: %s", u.Name, strings.Join(u.Paths(), ", "))
	}
	return b.String()
}
