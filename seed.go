package liftmap

import (
	"context"
	"fmt"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/constants"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/identity"
	"github.com/agentstation/liftmap/pkg/logging"
	"github.com/agentstation/liftmap/pkg/normalize"
	"github.com/agentstation/liftmap/pkg/reconciler"
	"github.com/agentstation/liftmap/pkg/seedstate"
	"github.com/agentstation/liftmap/pkg/validate"
)

// Seeder bootstraps the catalog on startup.
type Seeder interface {
	// SeedExercisesIfNeeded installs the starter catalog into an empty store
	// and runs a full import when one is warranted.
	SeedExercisesIfNeeded(ctx context.Context) (*Result, error)
}

// SeedExercisesIfNeeded makes sure the catalog is usable. An empty store
// first gets the bundled starter catalog so the app has something to show
// offline. A full import then runs, skipping unchanged payloads, when the
// catalog version changed, no content hash was recorded, or the last import
// did not succeed. Otherwise the run is recorded as skipped.
func (c *client) SeedExercisesIfNeeded(ctx context.Context) (*Result, error) {
	r := c.begin(ctx, OperationSeed, nil)
	logging.FromContext(r.ctx).Info().
		Str("catalog_version", c.options.catalogVersion).
		Msg("Checking whether the catalog needs seeding")

	// Step 1: Install the starter catalog into an empty store
	count, err := c.options.store.CountExercises(r.ctx)
	if err != nil {
		return c.fail(r, errors.WrapPersistence("count exercises", err)), nil
	}
	starter := 0
	if count == 0 && c.options.starter != nil {
		if starter, err = c.seedStarter(r); err != nil {
			if errors.KindOf(err) == errors.KindInternal {
				return c.abort(r, err)
			}
			outcome := c.failureOutcome(r, err)
			c.recordState(r.ctx, func(s *seedstate.State) { s.Apply(outcome) })
			return c.fail(r, err), nil
		}
	}

	// Step 2: Decide whether a full import is warranted
	state, err := loadState(r.ctx, c.options.store)
	if err != nil {
		if errors.KindOf(err) == errors.KindInternal {
			return c.abort(r, err)
		}
		return c.fail(r, err), nil
	}
	reason := state.ImportReason(c.options.catalogVersion)
	if reason == "" {
		const msg = "catalog is current"
		at := c.options.now()
		c.recordState(r.ctx, func(s *seedstate.State) {
			s.Record(seedstate.AuditEntry{At: at, Operation: OperationSeed.String(), Status: seedstate.StatusSkipped, Message: msg})
		})
		return c.finish(r, StatusSkipped, msg), nil
	}
	logging.FromContext(r.ctx).Info().Str("reason", reason).Msg("Full import warranted")

	// Step 3: Run the full import
	imported, err := c.ImportExercises(r.ctx, WithOnlyIfChanged(true))
	if err != nil {
		return c.abort(r, err)
	}
	c.adopt(r, imported)

	// Step 4: An unchanged payload still brings the catalog up to this version
	if imported.Status == StatusSkipped {
		version, at, msg := c.options.catalogVersion, c.options.now(), imported.Message
		c.recordState(r.ctx, func(s *seedstate.State) {
			s.CatalogVersion = version
			s.Record(seedstate.AuditEntry{
				At:          at,
				Operation:   OperationSeed.String(),
				Status:      seedstate.StatusSkipped,
				Message:     msg,
				Source:      imported.Source,
				ContentHash: imported.ContentHash,
			})
		})
	}

	message := imported.Message
	if starter > 0 {
		message = fmt.Sprintf("starter catalog installed (%d exercises); import %s: %s", starter, imported.Status, imported.Message)
	}
	if imported.Status == StatusError {
		return c.fail(r, imported.Err), nil
	}
	return c.finish(r, imported.Status, message), nil
}

// adopt copies the outcome of a nested import onto the seed run.
func (c *client) adopt(r *run, imported *Result) {
	res := r.result
	res.Stats = imported.Stats
	res.Validation = imported.Validation
	res.Source = imported.Source
	res.ContentHash = imported.ContentHash
	res.Warnings = append(res.Warnings, imported.Warnings...)
	res.LinkError = imported.LinkError
}

// seedStarter inserts the starter catalog and records STARTER_ONLY. It
// returns the number of exercises inserted.
func (c *client) seedStarter(r *run) (int, error) {
	payload, err := c.options.starter.Fetch(r.ctx)
	if err != nil {
		return 0, errors.NewSourceUnavailableError([]errors.SourceAttempt{{Source: c.options.starter.ID().String(), Err: err}})
	}

	records := make([]catalogs.Exercise, 0, payload.Len())
	for _, raw := range payload.Records {
		ex := normalize.FromResult(raw)
		ex.Source = catalogs.SourceStarter
		ex.SourceKey = constants.StarterSourceKey
		records = append(records, ex)
	}
	outcome := validate.Validate(records, 0)
	unique, _ := identity.Dedup(outcome.Normalized)

	w, err := c.persist(r, unique, false, func(s *seedstate.State, plan *reconciler.Result, written seedstate.RunStats) {
		stats := seedstate.RunStats{
			Fetched:   payload.Len(),
			Valid:     outcome.Report.ValidCount,
			Invalid:   outcome.Report.InvalidCount,
			Inserted:  plan.Stats.Inserted,
			Equipment: written.Equipment,
		}
		s.Apply(seedstate.Outcome{
			Operation: OperationSeed.String(),
			Status:    seedstate.StatusStarterOnly,
			Message:   fmt.Sprintf("starter catalog installed: %d exercises", plan.Stats.Inserted),
			Source:    payload.Source.String(),
			Stats:     &stats,
			At:        c.options.now(),
		})
	})
	if err != nil {
		return 0, err
	}

	logging.FromContext(r.ctx).Info().
		Int("exercises", w.plan.Stats.Inserted).
		Msg("Starter catalog installed")
	return w.plan.Stats.Inserted, nil
}
