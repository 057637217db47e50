package reconciler

import (
	"fmt"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/differ"
)

// Result is the write plan produced by Reconcile.
type Result struct {
	Inserts []catalogs.Exercise
	Updates []catalogs.Exercise
	Changes []differ.ExerciseUpdate
	Stats   Stats
	Repair  bool
}

// Stats counts reconcile outcomes.
type Stats struct {
	Total    int `json:"total" yaml:"total"`
	Inserted int `json:"inserted" yaml:"inserted"`
	Updated  int `json:"updated" yaml:"updated"`
	// Skipped counts unchanged and user-owned matches.
	Skipped   int            `json:"skipped" yaml:"skipped"`
	UserOwned int            `json:"user_owned" yaml:"user_owned"`
	Unmatched int            `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
	Swept     int            `json:"swept,omitempty" yaml:"swept,omitempty"`
	MatchedBy map[string]int `json:"matched_by,omitempty" yaml:"matched_by,omitempty"`
}

func newResult(repair bool) *Result {
	return &Result{
		Inserts: []catalogs.Exercise{},
		Updates: []catalogs.Exercise{},
		Changes: []differ.ExerciseUpdate{},
		Stats:   Stats{MatchedBy: map[string]int{}},
		Repair:  repair,
	}
}

// HasWrites reports whether the plan touches the store.
func (r *Result) HasWrites() bool {
	return len(r.Inserts) > 0 || len(r.Updates) > 0
}

// Summary returns a one-line description of the plan.
func (r *Result) Summary() string {
	s := fmt.Sprintf("%d inserted, %d updated, %d skipped (%d user-owned)",
		r.Stats.Inserted, r.Stats.Updated, r.Stats.Skipped, r.Stats.UserOwned)
	if r.Repair {
		s += fmt.Sprintf(", %d unmatched, %d swept", r.Stats.Unmatched, r.Stats.Swept)
	}
	return s
}
