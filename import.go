package liftmap

import (
	"context"

	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/logging"
	"github.com/agentstation/liftmap/pkg/reconciler"
	"github.com/agentstation/liftmap/pkg/seedstate"
	"github.com/agentstation/liftmap/pkg/store"
)

// Importer runs full catalog imports.
type Importer interface {
	// ImportExercises fetches the catalog payload and merges it into the store.
	ImportExercises(ctx context.Context, opts ...ImportOption) (*Result, error)
}

// ImportOptions controls one import.
type ImportOptions struct {
	DryRun        bool                   // Fetch, validate and project counts without writing
	OnlyIfChanged bool                   // Skip when the payload matches the last successful import
	Progress      seedstate.ProgressFunc // Called on every stage change and persisted batch
}

// ImportOption configures an import.
type ImportOption func(*ImportOptions)

// WithDryRun projects the import without writing anything.
func WithDryRun(enabled bool) ImportOption {
	return func(o *ImportOptions) {
		o.DryRun = enabled
	}
}

// WithOnlyIfChanged skips the import when the corpus hash is unchanged.
func WithOnlyIfChanged(enabled bool) ImportOption {
	return func(o *ImportOptions) {
		o.OnlyIfChanged = enabled
	}
}

// WithProgress reports stage changes and persisted batches to fn.
func WithProgress(fn seedstate.ProgressFunc) ImportOption {
	return func(o *ImportOptions) {
		o.Progress = fn
	}
}

// NewImportOptions applies opts to the default import options.
func NewImportOptions(opts ...ImportOption) *ImportOptions {
	o := &ImportOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ImportExercises fetches the catalog payload, validates and deduplicates
// it, and merges it into the store in one transaction. Source, validation
// and persistence failures come back as an error result and are recorded in
// the seed state; the catalog is left untouched. A successful import is
// followed by a fill-only link pass whose failure is recorded but does not
// undo the import.
func (c *client) ImportExercises(ctx context.Context, opts ...ImportOption) (*Result, error) {
	// Step 1: Parse options
	options := NewImportOptions(opts...)
	r := c.begin(ctx, OperationImport, options.Progress)
	logging.FromContext(r.ctx).Info().
		Bool("dry_run", options.DryRun).
		Bool("only_if_changed", options.OnlyIfChanged).
		Msg("Starting exercise import")

	// Step 2: Load the seed state
	state, err := loadState(r.ctx, c.options.store)
	if err != nil {
		if errors.KindOf(err) == errors.KindInternal {
			return c.abort(r, err)
		}
		return c.fail(r, err), nil
	}

	// Step 3: Fetch, normalize, validate and hash the payload
	b, err := c.prepare(r, true)
	if err != nil {
		if !options.DryRun {
			outcome := c.failureOutcome(r, err)
			c.recordState(r.ctx, func(s *seedstate.State) { s.Apply(outcome) })
		}
		return c.fail(r, err), nil
	}

	// Step 4: Skip a payload that was already imported
	if options.OnlyIfChanged && state.Unchanged(b.hash) {
		return c.finish(r, StatusSkipped, "payload unchanged since the last successful import"), nil
	}

	// Step 5: Project the plan on dry runs
	if options.DryRun {
		plan, err := c.plan(r.ctx, c.options.store, b.records, false)
		if err != nil {
			return c.fail(r, err), nil
		}
		project(&r.result.Stats, plan)
		return c.finish(r, StatusDryRun, "dry run: "+plan.Summary()), nil
	}

	// Step 6: Persist records, equipment and seed state in one transaction
	r.advance(seedstate.StageImporting)
	w, err := c.persist(r, b.records, false, func(s *seedstate.State, plan *reconciler.Result, stats seedstate.RunStats) {
		s.Apply(c.successOutcome(r, plan, stats))
		s.CatalogVersion = c.options.catalogVersion
	})
	if err != nil {
		outcome := c.failureOutcome(r, err)
		c.recordState(r.ctx, func(s *seedstate.State) { s.Apply(outcome) })
		return c.fail(r, err), nil
	}

	// Step 7: Fill empty progression and regression lists
	c.linkAfterImport(r)

	// Step 8: Report the catalog size
	c.reportCatalogSize(r.ctx, c.options.store)

	return c.finish(r, StatusSuccess, w.plan.Summary()), nil
}

// reportCatalogSize updates the catalog size gauge when metrics are enabled.
func (c *client) reportCatalogSize(ctx context.Context, rd store.Reader) {
	if c.options.metrics == nil {
		return
	}
	n, err := rd.CountExercises(ctx)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("Could not count exercises")
		return
	}
	c.options.metrics.CatalogSize(n)
}
