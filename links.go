package liftmap

import (
	"context"
	"fmt"
	"slices"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/linker"
	"github.com/agentstation/liftmap/pkg/logging"
	"github.com/agentstation/liftmap/pkg/seedstate"
	"github.com/agentstation/liftmap/pkg/store"
	"github.com/agentstation/utc"
)

// LinkRecomputer runs the relationship linker on its own.
type LinkRecomputer interface {
	// RecomputeExerciseLinks links the current catalog.
	RecomputeExerciseLinks(ctx context.Context, opts ...LinkOption) (*Result, error)
}

// LinkOptions controls one link run.
type LinkOptions struct {
	DryRun bool // Compute links without writing them
	Force  bool // Replace existing links instead of only filling empty lists
}

// LinkOption configures a link run.
type LinkOption func(*LinkOptions)

// WithLinkDryRun computes links without writing them.
func WithLinkDryRun(enabled bool) LinkOption {
	return func(o *LinkOptions) {
		o.DryRun = enabled
	}
}

// WithForceLinks replaces links that are already set.
func WithForceLinks(enabled bool) LinkOption {
	return func(o *LinkOptions) {
		o.Force = enabled
	}
}

// NewLinkOptions applies opts to the default link options.
func NewLinkOptions(opts ...LinkOption) *LinkOptions {
	o := &LinkOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RecomputeExerciseLinks runs the linker against the whole catalog. Without
// force only empty progression and regression lists are filled.
func (c *client) RecomputeExerciseLinks(ctx context.Context, opts ...LinkOption) (*Result, error) {
	options := NewLinkOptions(opts...)
	r := c.begin(ctx, OperationLinks, nil)
	logging.FromContext(r.ctx).Info().
		Bool("dry_run", options.DryRun).
		Bool("force", options.Force).
		Msg("Recomputing exercise links")

	res, err := c.link(r.ctx, *options, true)
	if err != nil {
		msg := err.Error()
		at := c.options.now()
		c.recordState(r.ctx, func(s *seedstate.State) {
			s.LastLinkError = msg
			s.LastLinkAt = at
			s.Record(seedstate.AuditEntry{
				At:        at,
				Operation: OperationLinks.String(),
				Status:    seedstate.StatusFailure,
				Message:   msg,
				ErrorKind: string(errors.KindLinkError),
			})
		})
		return c.fail(r, err), nil
	}

	r.result.Stats.Linked = res.Stats.Updated
	status := StatusSuccess
	if options.DryRun {
		status = StatusDryRun
	}
	return c.finish(r, status, linkSummary(res.Stats)), nil
}

// linkAfterImport runs the fill-only link pass that follows a committed
// import. Its failure is kept on the result and in the seed state only.
func (c *client) linkAfterImport(r *run) {
	res, err := c.link(r.ctx, LinkOptions{}, false)
	if err != nil {
		msg := err.Error()
		at := c.options.now()
		r.result.LinkError = msg
		logging.FromContext(r.ctx).Warn().Err(err).Msg("Linking failed after import")
		c.recordState(r.ctx, func(s *seedstate.State) {
			s.LastLinkError = msg
			s.LastLinkAt = at
		})
		return
	}
	r.result.Stats.Linked = res.Stats.Updated
}

// link computes link updates over the stored catalog and, unless dry-run,
// writes them with the link fields of the seed state. With audit set the
// run also gets its own audit entry.
func (c *client) link(ctx context.Context, options LinkOptions, audit bool) (*linker.Result, error) {
	linkerOpts := slices.Clone(c.options.linkerOptions)
	l := linker.New(append(linkerOpts, linker.WithForce(options.Force))...)

	if options.DryRun {
		exercises, err := c.options.store.ListExercises(ctx)
		if err != nil {
			return nil, errors.NewLinkError("read", err)
		}
		return l.Link(exercises), nil
	}

	var res *linker.Result
	err := c.options.store.Update(ctx, func(ctx context.Context, tx store.Tx) error {
		exercises, err := tx.ListExercises(ctx)
		if err != nil {
			return err
		}
		res = l.Link(exercises)

		now := c.options.now()
		changed := applyLinks(exercises, res.Updates, now)
		for _, chunk := range store.Batches(changed, c.options.batchSize) {
			if err := tx.UpsertExercises(ctx, chunk); err != nil {
				return err
			}
		}

		state, err := loadState(ctx, tx)
		if err != nil {
			return err
		}
		state.LastLinkError = ""
		state.LastLinkAt = now
		if audit {
			state.Record(seedstate.AuditEntry{
				At:        now,
				Operation: OperationLinks.String(),
				Status:    seedstate.StatusSuccess,
				Message:   linkSummary(res.Stats),
				Stats:     &seedstate.RunStats{Linked: res.Stats.Updated},
			})
		}
		return saveState(ctx, tx, state)
	})
	if err != nil {
		return nil, errors.NewLinkError("write", err)
	}

	logging.FromContext(ctx).Info().
		Int("eligible", res.Stats.Eligible).
		Int("updated", res.Stats.Updated).
		Int("already_linked", res.Stats.AlreadyLinked).
		Msg("Links computed")
	return res, nil
}

// applyLinks returns the exercises touched by updates with their new links.
func applyLinks(exercises []catalogs.Exercise, updates []linker.Update, now utc.Time) []catalogs.Exercise {
	byID := make(map[string]int, len(exercises))
	for i := range exercises {
		byID[exercises[i].StableID] = i
	}
	changed := make([]catalogs.Exercise, 0, len(updates))
	for _, u := range updates {
		i, ok := byID[u.StableID]
		if !ok {
			continue
		}
		ex := exercises[i]
		ex.Progressions = u.Progressions
		ex.Regressions = u.Regressions
		ex.UpdatedAt = now
		changed = append(changed, ex)
	}
	return changed
}

func linkSummary(s linker.Stats) string {
	return fmt.Sprintf("%d of %d eligible exercises linked (%d progressions, %d regressions, %d already linked)",
		s.Updated, s.Eligible, s.Progressions, s.Regressions, s.AlreadyLinked)
}
