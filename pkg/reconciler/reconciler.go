// Package reconciler merges incoming catalog records into the persisted
// exercise catalog.
//
// Merges follow the per-field rules of a policy.Table. A user-owned record is
// never changed: Merge reports it as skipped and hands back the stored value
// untouched. Repair mode widens matching to fallback keys, does not insert,
// and may clear lists that hold nothing but placeholder text.
package reconciler

import (
	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/differ"
	"github.com/agentstation/liftmap/pkg/policy"
	"github.com/agentstation/utc"
)

// Reconciler merges incoming exercises against existing ones.
type Reconciler interface {
	// Merge reconciles one stored record with one incoming record.
	Merge(existing, incoming *catalogs.Exercise) MergeResult

	// Reconcile plans inserts and updates for a batch of incoming records.
	Reconcile(existing *Index, incoming []catalogs.Exercise) *Result
}

// MergeResult is the outcome of merging one record.
type MergeResult struct {
	// Merged is the record to persist. It is the existing pointer when nothing changed.
	Merged *catalogs.Exercise
	// Changed is true iff any field differs from the existing record.
	Changed bool
	// Skipped is true when the existing record is user-owned.
	Skipped bool
	// Update lists the changed fields when Changed is set.
	Update *differ.ExerciseUpdate
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	table  policy.Table
	differ differ.Differ
	repair bool
	now    func() utc.Time
	newID  func() string
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		table:  options.table,
		differ: differ.New(differ.WithFields(options.table)),
		repair: options.repair,
		now:    options.now,
		newID:  options.newID,
	}, nil
}

// Merge reconciles one stored record with one incoming record.
func (r *reconciler) Merge(existing, incoming *catalogs.Exercise) MergeResult {
	if existing.IsUserOwned() {
		return MergeResult{Merged: existing, Skipped: true}
	}

	merged := existing.Clone()
	for _, f := range r.table {
		f.Apply(merged, existing, incoming, r.repair)
	}

	update := r.differ.Exercise(existing, merged)
	if update == nil {
		return MergeResult{Merged: existing}
	}
	merged.UpdatedAt = r.now()
	return MergeResult{Merged: merged, Changed: true, Update: update}
}

// Reconcile plans the writes needed to bring incoming into the catalog.
func (r *reconciler) Reconcile(existing *Index, incoming []catalogs.Exercise) *Result {
	result := newResult(r.repair)
	claimed := make(map[string]bool, len(incoming))

	for i := range incoming {
		in := &incoming[i]
		result.Stats.Total++

		prev, how := existing.Match(in, r.repair)
		if prev != nil && claimed[prev.StableID] {
			result.Stats.Skipped++
			continue
		}
		if prev == nil {
			if r.repair {
				result.Stats.Unmatched++
				continue
			}
			result.Inserts = append(result.Inserts, r.prepareInsert(in))
			result.Stats.Inserted++
			continue
		}

		claimed[prev.StableID] = true
		result.Stats.MatchedBy[string(how)]++
		r.apply(result, prev, in)
	}

	if r.repair {
		r.sweep(result, existing, claimed)
	}
	return result
}

func (r *reconciler) apply(result *Result, prev, in *catalogs.Exercise) {
	mr := r.Merge(prev, in)
	switch {
	case mr.Skipped:
		result.Stats.Skipped++
		result.Stats.UserOwned++
	case mr.Changed:
		result.Updates = append(result.Updates, *mr.Merged)
		result.Changes = append(result.Changes, *mr.Update)
		result.Stats.Updated++
	default:
		result.Stats.Skipped++
	}
}

// sweep clears placeholder-only lists on records the payload did not match.
func (r *reconciler) sweep(result *Result, existing *Index, claimed map[string]bool) {
	empty := &catalogs.Exercise{}
	for _, prev := range existing.All() {
		if claimed[prev.StableID] || prev.IsUserOwned() {
			continue
		}
		mr := r.Merge(prev, empty)
		if mr.Changed {
			result.Updates = append(result.Updates, *mr.Merged)
			result.Changes = append(result.Changes, *mr.Update)
			result.Stats.Swept++
		}
	}
}

func (r *reconciler) prepareInsert(in *catalogs.Exercise) catalogs.Exercise {
	rec := *in.Clone()
	now := r.now()
	if rec.ID == "" {
		rec.ID = r.newID()
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return rec
}
