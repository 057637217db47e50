package liftmap

import (
	"context"

	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/logging"
	"github.com/agentstation/liftmap/pkg/reconciler"
	"github.com/agentstation/liftmap/pkg/seedstate"
)

// Repairer fixes already persisted records in place.
type Repairer interface {
	// RepairSeededExercises backfills stored records from the catalog payload.
	RepairSeededExercises(ctx context.Context, opts ...RepairOption) (*Result, error)
}

// RepairOptions controls one repair run.
type RepairOptions struct {
	DryRun   bool                   // Project the repair without writing
	Force    bool                   // Repair even when this payload was already used for a repair
	Progress seedstate.ProgressFunc // Called on every stage change and persisted batch
}

// RepairOption configures a repair run.
type RepairOption func(*RepairOptions)

// WithRepairDryRun projects the repair without writing anything.
func WithRepairDryRun(enabled bool) RepairOption {
	return func(o *RepairOptions) {
		o.DryRun = enabled
	}
}

// WithForce repairs even when the payload hash matches the last repair.
func WithForce(enabled bool) RepairOption {
	return func(o *RepairOptions) {
		o.Force = enabled
	}
}

// WithRepairProgress reports stage changes and persisted batches to fn.
func WithRepairProgress(fn seedstate.ProgressFunc) RepairOption {
	return func(o *RepairOptions) {
		o.Progress = fn
	}
}

// NewRepairOptions applies opts to the default repair options.
func NewRepairOptions(opts ...RepairOption) *RepairOptions {
	o := &RepairOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RepairSeededExercises re-reads the catalog payload and merges it into the
// records already stored, matching by stable ID, then by source key and
// external ID, then by slug. Nothing is inserted. Matched and unmatched
// non-user records lose lists that hold only placeholder text, and missing
// fields are backfilled. User-owned records are never touched.
//
// Repairs leave the import status of the seed state alone; they write their
// own audit entries and remember the payload hash they last ran against.
func (c *client) RepairSeededExercises(ctx context.Context, opts ...RepairOption) (*Result, error) {
	// Step 1: Parse options
	options := NewRepairOptions(opts...)
	r := c.begin(ctx, OperationRepair, options.Progress)
	logging.FromContext(r.ctx).Info().
		Bool("dry_run", options.DryRun).
		Bool("force", options.Force).
		Msg("Starting exercise repair")

	// Step 2: Load the seed state
	state, err := loadState(r.ctx, c.options.store)
	if err != nil {
		if errors.KindOf(err) == errors.KindInternal {
			return c.abort(r, err)
		}
		return c.fail(r, err), nil
	}

	// Step 3: Fetch, normalize and hash the payload
	b, err := c.prepare(r, false)
	if err != nil {
		if !options.DryRun {
			c.recordRepairFailure(r, err)
		}
		return c.fail(r, err), nil
	}

	// Step 4: Skip a payload the catalog was already repaired against
	if !options.Force && state.LastRepairHash != "" && state.LastRepairHash == b.hash {
		return c.finish(r, StatusSkipped, "catalog already repaired against this payload"), nil
	}

	// Step 5: Project the repair on dry runs
	if options.DryRun {
		plan, err := c.plan(r.ctx, c.options.store, b.records, true)
		if err != nil {
			return c.fail(r, err), nil
		}
		project(&r.result.Stats, plan)
		return c.finish(r, StatusDryRun, "dry run: "+plan.Summary()), nil
	}

	// Step 6: Write the repaired records and the repair hash in one transaction
	r.advance(seedstate.StageImporting)
	w, err := c.persist(r, b.records, true, func(s *seedstate.State, plan *reconciler.Result, stats seedstate.RunStats) {
		s.LastRepairHash = b.hash
		s.Record(c.successOutcome(r, plan, stats).Entry())
	})
	if err != nil {
		c.recordRepairFailure(r, err)
		return c.fail(r, err), nil
	}

	c.reportCatalogSize(r.ctx, c.options.store)
	return c.finish(r, StatusSuccess, w.plan.Summary()), nil
}

func (c *client) recordRepairFailure(r *run, err error) {
	entry := c.failureOutcome(r, err).Entry()
	c.recordState(r.ctx, func(s *seedstate.State) { s.Record(entry) })
}
