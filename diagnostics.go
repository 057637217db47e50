package liftmap

import (
	"context"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/seedstate"
)

// Diagnoser reports the seed state and live catalog counts.
type Diagnoser interface {
	// SeedDiagnostics returns a read-only snapshot of the seed state.
	SeedDiagnostics(ctx context.Context) (*Diagnostics, error)
}

// Diagnostics is a snapshot of the seed state plus live catalog counts.
type Diagnostics struct {
	State          *seedstate.State `json:"state" yaml:"state"`
	CatalogVersion string           `json:"catalog_version" yaml:"catalog_version"` // Version this build expects
	ImportReason   string           `json:"import_reason,omitempty" yaml:"import_reason,omitempty"`

	ExerciseCount  int `json:"exercise_count" yaml:"exercise_count"`
	EquipmentCount int `json:"equipment_count" yaml:"equipment_count"`
	UserOwnedCount int `json:"user_owned_count" yaml:"user_owned_count"`
	StarterCount   int `json:"starter_count" yaml:"starter_count"`
	LinkedCount    int `json:"linked_count" yaml:"linked_count"`
}

// Current reports whether seeding would skip the full import.
func (d *Diagnostics) Current() bool {
	return d.ImportReason == ""
}

// SeedDiagnostics reads the seed state and counts the catalog. It never writes.
func (c *client) SeedDiagnostics(ctx context.Context) (*Diagnostics, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st := c.options.store

	state, err := loadState(ctx, st)
	if err != nil {
		return nil, err
	}

	d := &Diagnostics{
		State:          state,
		CatalogVersion: c.options.catalogVersion,
		ImportReason:   state.ImportReason(c.options.catalogVersion),
	}

	if d.ExerciseCount, err = st.CountExercises(ctx); err != nil {
		return nil, errors.WrapPersistence("count exercises", err)
	}
	if d.EquipmentCount, err = st.CountEquipment(ctx); err != nil {
		return nil, errors.WrapPersistence("count equipment", err)
	}

	exercises, err := st.ListExercises(ctx)
	if err != nil {
		return nil, errors.WrapPersistence("list exercises", err)
	}
	for i := range exercises {
		ex := &exercises[i]
		switch {
		case ex.IsUserOwned():
			d.UserOwnedCount++
		case ex.Source == catalogs.SourceStarter:
			d.StarterCount++
		}
		if ex.HasLinks() {
			d.LinkedCount++
		}
	}

	return d, nil
}
