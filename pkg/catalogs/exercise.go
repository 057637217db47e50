// Package catalogs defines the exercise catalog entities shared by every
// stage of the reconciliation pipeline.
package catalogs

import (
	"slices"

	"github.com/agentstation/utc"
)

// Source tags the provenance of an exercise record.
type Source string

// Exercise provenance tags.
const (
	SourceCatalog Source = "catalog" // imported from an external catalog payload
	SourceStarter Source = "starter" // bundled bootstrap record
	SourceUser    Source = "user"    // authored or claimed by the user
)

// String returns the string representation of a Source.
func (s Source) String() string {
	return string(s)
}

// IsValid reports whether s is a known provenance tag.
func (s Source) IsValid() bool {
	switch s {
	case SourceCatalog, SourceStarter, SourceUser:
		return true
	}
	return false
}

// Exercise is a catalog entry.
type Exercise struct {
	// Identity
	ID       string `json:"id" yaml:"id"`               // Local primary key
	StableID string `json:"stable_id" yaml:"stable_id"` // Content-derived identity across re-imports
	Name     string `json:"name" yaml:"name" validate:"required"`
	Slug     string `json:"slug" yaml:"slug"`

	// Muscles and equipment
	PrimaryMuscles    []string `json:"primary_muscles" yaml:"primary_muscles" validate:"min=1,dive,required"`
	SecondaryMuscles  []string `json:"secondary_muscles" yaml:"secondary_muscles"`
	RequiredEquipment []string `json:"required_equipment" yaml:"required_equipment" validate:"min=1,dive,required"`
	OptionalEquipment []string `json:"optional_equipment" yaml:"optional_equipment"`

	// Content
	Instructions []string `json:"instructions" yaml:"instructions" validate:"min=1,dive,required"`
	Cautions     []string `json:"cautions" yaml:"cautions"` // Common mistakes
	Aliases      []string `json:"aliases" yaml:"aliases"`
	Media        []string `json:"media" yaml:"media"`

	// Classification
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Pattern  string `json:"pattern,omitempty" yaml:"pattern,omitempty"` // Movement pattern (squat, hinge, push...)
	Level    string `json:"level,omitempty" yaml:"level,omitempty"`
	Force    string `json:"force,omitempty" yaml:"force,omitempty"`
	Mechanic string `json:"mechanic,omitempty" yaml:"mechanic,omitempty"`

	// Provenance
	Source          Source   `json:"source" yaml:"source"`
	ExternalID      string   `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	SourceKey       string   `json:"source_key,omitempty" yaml:"source_key,omitempty"` // Payload source the record came from
	SourceUpdatedAt utc.Time `json:"source_updated_at" yaml:"source_updated_at"`

	// Derived links (stable IDs of other exercises)
	Progressions []string `json:"progressions" yaml:"progressions"`
	Regressions  []string `json:"regressions" yaml:"regressions"`

	// Timestamps for record keeping and auditing
	CreatedAt utc.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt utc.Time `json:"updated_at" yaml:"updated_at"`
}

// IsUserOwned reports whether automated passes must leave the record alone.
func (e *Exercise) IsUserOwned() bool {
	return e != nil && e.Source == SourceUser
}

// HasLinks reports whether either link list is populated.
func (e *Exercise) HasLinks() bool {
	return len(e.Progressions) > 0 || len(e.Regressions) > 0
}

// Equipment returns the union of required and optional equipment, required first.
func (e *Exercise) Equipment() []string {
	out := make([]string, 0, len(e.RequiredEquipment)+len(e.OptionalEquipment))
	out = append(out, e.RequiredEquipment...)
	for _, item := range e.OptionalEquipment {
		if !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

// Clone returns a deep copy of the exercise.
func (e *Exercise) Clone() *Exercise {
	if e == nil {
		return nil
	}
	c := *e
	c.PrimaryMuscles = cloneList(e.PrimaryMuscles)
	c.SecondaryMuscles = cloneList(e.SecondaryMuscles)
	c.RequiredEquipment = cloneList(e.RequiredEquipment)
	c.OptionalEquipment = cloneList(e.OptionalEquipment)
	c.Instructions = cloneList(e.Instructions)
	c.Cautions = cloneList(e.Cautions)
	c.Aliases = cloneList(e.Aliases)
	c.Media = cloneList(e.Media)
	c.Progressions = cloneList(e.Progressions)
	c.Regressions = cloneList(e.Regressions)
	return &c
}

// EnsureLists replaces nil list fields with empty lists.
func (e *Exercise) EnsureLists() {
	for _, l := range []*[]string{
		&e.PrimaryMuscles, &e.SecondaryMuscles,
		&e.RequiredEquipment, &e.OptionalEquipment,
		&e.Instructions, &e.Cautions, &e.Aliases, &e.Media,
		&e.Progressions, &e.Regressions,
	} {
		if *l == nil {
			*l = []string{}
		}
	}
}

func cloneList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
