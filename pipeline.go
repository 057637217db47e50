package liftmap

import (
	"context"

	"github.com/google/uuid"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/constants"
	"github.com/agentstation/liftmap/pkg/equipment"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/identity"
	"github.com/agentstation/liftmap/pkg/logging"
	"github.com/agentstation/liftmap/pkg/normalize"
	"github.com/agentstation/liftmap/pkg/reconciler"
	"github.com/agentstation/liftmap/pkg/seedstate"
	"github.com/agentstation/liftmap/pkg/store"
	"github.com/agentstation/liftmap/pkg/validate"
)

// run tracks one operation from begin to finish.
type run struct {
	ctx     context.Context
	machine *seedstate.Machine
	result  *Result
}

// begin starts an operation: a run ID on the context logger, a fresh stage
// machine and an empty result.
func (c *client) begin(ctx context.Context, op Operation, progress seedstate.ProgressFunc) *run {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.options.logger != nil {
		ctx = logging.WithLogger(ctx, c.options.logger)
	}
	ctx = logging.WithRunID(ctx, uuid.NewString())
	ctx = logging.WithOperation(ctx, op.String())

	return &run{
		ctx:     ctx,
		machine: seedstate.NewMachine(progress),
		result: &Result{
			Operation: op,
			Warnings:  []string{},
			StartedAt: c.options.now().Time,
		},
	}
}

// advance moves the run to the next stage and tags the context logger.
func (r *run) advance(to seedstate.Stage) {
	if err := r.machine.Advance(to); err != nil {
		logging.FromContext(r.ctx).Error().Err(err).Msg("Stage transition rejected")
		return
	}
	r.ctx = logging.WithStage(r.ctx, to.String())
	logging.FromContext(r.ctx).Debug().Msg("Stage started")
}

// finish closes the run with status and reports it to metrics and hooks.
func (c *client) finish(r *run, status Status, message string) *Result {
	r.machine.Finish()

	res := r.result
	res.Status = status
	res.Message = message
	res.Stages = r.machine.History()
	res.FinishedAt = c.options.now().Time

	if rec := c.options.metrics; rec != nil {
		op := res.Operation.String()
		rec.Run(op, status.String(), res.Duration())
		if status == StatusSuccess {
			rec.Exercises(op, "inserted", res.Stats.Inserted)
			rec.Exercises(op, "updated", res.Stats.Updated)
			rec.Exercises(op, "skipped", res.Stats.Skipped)
			rec.Exercises(op, "linked", res.Stats.Linked)
		}
		if status == StatusError || status == StatusDryRun {
			rec.Exercises(op, "invalid", res.Stats.Invalid)
		}
	}

	logger := logging.FromContext(r.ctx)
	event := logger.Info()
	if status == StatusError {
		event = logger.Warn().Str("error_kind", string(res.ErrorKind))
	}
	event.Str("status", status.String()).
		Int("inserted", res.Stats.Inserted).
		Int("updated", res.Stats.Updated).
		Int("skipped", res.Stats.Skipped).
		Dur("duration", res.Duration()).
		Msg(message)

	c.triggerRunCompleted(res)
	return res
}

// fail closes the run with a categorized error.
func (c *client) fail(r *run, err error) *Result {
	r.result.Err = err
	r.result.ErrorKind = errors.KindOf(err)
	return c.finish(r, StatusError, err.Error())
}

// abort closes the run on an unexpected fault that the caller receives as an error.
func (c *client) abort(r *run, err error) (*Result, error) {
	c.fail(r, err)
	return nil, err
}

// loadState reads the seed state through rd.
func loadState(ctx context.Context, rd store.Reader) (*seedstate.State, error) {
	data, err := rd.Meta(ctx, constants.SeedStateKey)
	if err != nil {
		return nil, errors.WrapPersistence("read state", err)
	}
	return seedstate.Decode(data)
}

func saveState(ctx context.Context, w store.Writer, state *seedstate.State) error {
	data, err := state.Encode()
	if err != nil {
		return errors.WrapParse("json", constants.SeedStateKey, err)
	}
	return w.PutMeta(ctx, constants.SeedStateKey, data)
}

// recordState applies fn to the persisted seed state in a transaction of its own.
// Failure paths use it, so its own error is logged rather than returned.
func (c *client) recordState(ctx context.Context, fn func(*seedstate.State)) {
	err := c.options.store.Update(ctx, func(ctx context.Context, tx store.Tx) error {
		state, err := loadState(ctx, tx)
		if err != nil {
			return err
		}
		fn(state)
		return saveState(ctx, tx, state)
	})
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("Could not record seed state")
	}
}

// failureOutcome describes a failed run for the seed state. A rolled back
// transaction wrote nothing, so its write counters are zero.
func (c *client) failureOutcome(r *run, err error) seedstate.Outcome {
	stats := r.result.Stats
	if errors.KindOf(err) == errors.KindPersistenceFailed {
		stats.Inserted, stats.Updated, stats.Skipped = 0, 0, 0
		stats.UserOwned, stats.Unmatched, stats.Swept = 0, 0, 0
		stats.Equipment, stats.Batches = 0, 0
	}
	return seedstate.Outcome{
		Operation:   r.result.Operation.String(),
		Status:      seedstate.StatusFailure,
		Message:     err.Error(),
		Source:      r.result.Source,
		ContentHash: r.result.ContentHash,
		ErrorKind:   string(errors.KindOf(err)),
		Stats:       &stats,
		Validation:  r.result.Validation,
		At:          c.options.now(),
	}
}

// batch is a fetched payload after normalization, validation and dedup.
type batch struct {
	records []catalogs.Exercise
	hash    string
}

// prepare runs the fetching, normalizing, validating and hashing stages.
// With gate set an invalid payload fails the run and the stages are fetching,
// validating, hashing. Without it invalid records are dropped and the stages
// are fetching, normalizing, hashing.
func (c *client) prepare(r *run, gate bool) (*batch, error) {
	// fetch the payload through the source chain
	r.advance(seedstate.StageFetching)
	payload, err := c.chain.Fetch(r.ctx)
	if err != nil {
		return nil, err
	}
	r.result.Source = payload.Source.String()
	r.result.Warnings = append(r.result.Warnings, payload.Warnings...)
	r.result.Stats.Fetched = payload.Len()
	r.ctx = logging.WithSource(r.ctx, payload.Source.String())
	logging.FromContext(r.ctx).Info().
		Int("records", payload.Len()).
		Bool("cached", payload.Cached).
		Msg("Payload retrieved")

	// normalize every raw record into the canonical shape; gated imports
	// report this as part of validating
	if !gate {
		r.advance(seedstate.StageNormalizing)
	}
	records := make([]catalogs.Exercise, 0, payload.Len())
	for _, raw := range payload.Records {
		ex := normalize.FromResult(raw)
		ex.Source = catalogs.SourceCatalog
		ex.SourceKey = constants.CatalogSourceKey
		records = append(records, ex)
	}

	// validate against the schema and, when gated, the minimum size
	minCount := 0
	if gate {
		r.advance(seedstate.StageValidating)
		minCount = c.options.minCount
	}
	outcome := validate.Validate(records, minCount)
	r.result.Validation = &outcome.Report
	r.result.Stats.Valid = outcome.Report.ValidCount
	r.result.Stats.Invalid = outcome.Report.InvalidCount
	if gate {
		if err := outcome.Report.Err(); err != nil {
			return nil, err
		}
	} else if outcome.Report.InvalidCount > 0 {
		logging.FromContext(r.ctx).Warn().
			Int("invalid", outcome.Report.InvalidCount).
			Msg("Dropping invalid records")
	}

	// assign identities, collapse duplicates and hash the corpus
	r.advance(seedstate.StageHashing)
	unique, dedup := identity.Dedup(outcome.Normalized)
	r.result.Stats.Duplicates = dedup.Collapsed
	r.result.ContentHash = identity.CorpusHash(unique)
	logging.FromContext(r.ctx).Debug().
		Int("unique", dedup.Unique).
		Int("collapsed", dedup.Collapsed).
		Str("content_hash", r.result.ContentHash).
		Msg("Payload hashed")

	return &batch{records: unique, hash: r.result.ContentHash}, nil
}

// reconciler builds the merge reconciler for one run.
func (c *client) reconciler(repair bool) (reconciler.Reconciler, error) {
	return reconciler.New(
		reconciler.WithRepair(repair),
		reconciler.WithClock(c.options.now),
		reconciler.WithIDGenerator(c.options.newID),
	)
}

// candidates reads the stored records a batch can match. Imports only match
// by stable ID; repair runs also match by fallback keys and sweep, so they
// need the whole catalog.
func candidates(ctx context.Context, rd store.Reader, records []catalogs.Exercise, repair bool) ([]catalogs.Exercise, error) {
	if repair {
		return rd.ListExercises(ctx)
	}
	ids := make([]string, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].StableID)
	}
	return rd.ExercisesByStableIDs(ctx, ids)
}

// plan reconciles records against rd without writing.
func (c *client) plan(ctx context.Context, rd store.Reader, records []catalogs.Exercise, repair bool) (*reconciler.Result, error) {
	rec, err := c.reconciler(repair)
	if err != nil {
		return nil, err
	}
	existing, err := candidates(ctx, rd, records, repair)
	if err != nil {
		return nil, errors.WrapPersistence("read exercises", err)
	}
	return rec.Reconcile(reconciler.NewIndex(existing), records), nil
}

// written is what a committed transaction changed.
type written struct {
	plan     *reconciler.Result
	previous map[string]catalogs.Exercise
	stats    seedstate.RunStats
}

// persist reconciles records and writes the plan, the equipment it needs and
// the seed state in one transaction. commit updates the state before it is
// saved, given the stats the transaction would produce. Nothing is visible,
// the run's stats included, unless every step succeeds.
func (c *client) persist(r *run, records []catalogs.Exercise, repair bool, commit func(*seedstate.State, *reconciler.Result, seedstate.RunStats)) (*written, error) {
	rec, err := c.reconciler(repair)
	if err != nil {
		return nil, err
	}

	var out *written
	err = c.options.store.Update(r.ctx, func(ctx context.Context, tx store.Tx) error {
		out = nil

		state, err := loadState(ctx, tx)
		if err != nil {
			return err
		}

		existing, err := candidates(ctx, tx, records, repair)
		if err != nil {
			return err
		}
		plan := rec.Reconcile(reconciler.NewIndex(existing), records)
		previous := make(map[string]catalogs.Exercise, len(plan.Updates))
		for i := range existing {
			previous[existing[i].StableID] = existing[i]
		}

		// resolve equipment before the exercises that reference it
		known, err := tx.ListEquipment(ctx)
		if err != nil {
			return err
		}
		resolver := equipment.NewResolver(known)
		created := resolver.ResolveExercises(plan.Inserts)
		created = append(created, resolver.ResolveExercises(plan.Updates)...)
		if len(created) > 0 {
			if err := tx.InsertEquipment(ctx, created); err != nil {
				return err
			}
		}

		inserts := store.Batches(plan.Inserts, c.options.batchSize)
		updates := store.Batches(plan.Updates, c.options.batchSize)
		total := len(inserts) + len(updates)
		n := 0
		for _, chunk := range inserts {
			if err := tx.InsertExercises(ctx, chunk); err != nil {
				return err
			}
			n++
			r.machine.Batch(n, total)
		}
		for _, chunk := range updates {
			if err := tx.UpsertExercises(ctx, chunk); err != nil {
				return err
			}
			n++
			r.machine.Batch(n, total)
		}

		stats := r.result.Stats
		project(&stats, plan)
		stats.Equipment = len(created)
		stats.Batches = total

		commit(state, plan, stats)
		state.Stage = seedstate.StageDone
		if err := saveState(ctx, tx, state); err != nil {
			return err
		}

		out = &written{plan: plan, previous: previous, stats: stats}
		return nil
	})
	if err != nil {
		return nil, errors.WrapPersistence(r.result.Operation.String(), err)
	}
	r.result.Stats = out.stats

	logging.FromContext(r.ctx).Info().
		Int("batches", r.result.Stats.Batches).
		Int("equipment_created", r.result.Stats.Equipment).
		Msg("Transaction committed")

	c.triggerWrites(out.plan.Inserts, out.plan.Updates, out.previous)
	return out, nil
}

// project copies the counts of a plan into stats.
func project(stats *seedstate.RunStats, plan *reconciler.Result) {
	stats.Inserted = plan.Stats.Inserted
	stats.Updated = plan.Stats.Updated
	stats.Skipped = plan.Stats.Skipped
	stats.UserOwned = plan.Stats.UserOwned
	stats.Unmatched = plan.Stats.Unmatched
	stats.Swept = plan.Stats.Swept
}

// successOutcome describes a committed run with stats for the seed state.
func (c *client) successOutcome(r *run, plan *reconciler.Result, stats seedstate.RunStats) seedstate.Outcome {
	return seedstate.Outcome{
		Operation:   r.result.Operation.String(),
		Status:      seedstate.StatusSuccess,
		Message:     plan.Summary(),
		Source:      r.result.Source,
		ContentHash: r.result.ContentHash,
		Stats:       &stats,
		Validation:  r.result.Validation,
		At:          c.options.now(),
	}
}
