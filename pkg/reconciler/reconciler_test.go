package reconciler

import (
	"testing"
	"time"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/identity"
	"github.com/agentstation/utc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = utc.New(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

func newTestReconciler(t *testing.T, opts ...Option) Reconciler {
	t.Helper()
	n := 0
	opts = append([]Option{
		WithClock(func() utc.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return "id-" + string(rune('0'+n)) }),
	}, opts...)
	r, err := New(opts...)
	require.NoError(t, err)
	return r
}

func benchPress() catalogs.Exercise {
	ex := catalogs.Exercise{
		ID:                "local-1",
		Name:              "Bench Press",
		Slug:              "bench-press",
		ExternalID:        "Bench_Press",
		PrimaryMuscles:    []string{"chest"},
		SecondaryMuscles:  []string{},
		RequiredEquipment: []string{"bench", "barbell"},
		OptionalEquipment: []string{},
		Instructions:      []string{"Lower the bar", "Press"},
		Cautions:          []string{},
		Aliases:           []string{},
		Media:             []string{},
		Category:          "upper",
		Pattern:           "push",
		Source:            catalogs.SourceCatalog,
		Progressions:      []string{},
		Regressions:       []string{},
	}
	ex.StableID = identity.StableID(&ex)
	return ex
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(WithPolicy(nil))
	assert.Error(t, err)
	_, err = New(WithClock(nil))
	assert.Error(t, err)
	_, err = New(WithIDGenerator(nil))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	r := newTestReconciler(t)

	t.Run("user owned records are immune", func(t *testing.T) {
		existing := benchPress()
		existing.Source = catalogs.SourceUser
		existing.Instructions = []string{}
		existing.Category = ""
		before := *existing.Clone()

		incoming := benchPress()
		incoming.Name = "Barbell Bench"
		incoming.Instructions = []string{"Totally different"}
		incoming.Cautions = []string{"Bounce"}

		mr := r.Merge(&existing, &incoming)
		assert.True(t, mr.Skipped)
		assert.False(t, mr.Changed)
		assert.Same(t, &existing, mr.Merged)
		assert.Empty(t, cmp.Diff(before, existing))
	})

	t.Run("reordered equipment is unchanged", func(t *testing.T) {
		existing := benchPress()
		existing.RequiredEquipment = []string{"bench", "barbell"}
		incoming := benchPress()
		incoming.RequiredEquipment = []string{"Barbell", "bench"}
		incoming.StableID = identity.StableID(&incoming)
		require.Equal(t, existing.StableID, incoming.StableID)

		mr := r.Merge(&existing, &incoming)
		assert.False(t, mr.Changed)
		assert.False(t, mr.Skipped)
		assert.Same(t, &existing, mr.Merged)
	})

	t.Run("fills missing fields only", func(t *testing.T) {
		existing := benchPress()
		existing.Cautions = []string{}
		existing.Instructions = []string{"My own cue"}
		incoming := benchPress()
		incoming.Cautions = []string{"Flared elbows"}
		incoming.Instructions = []string{"Catalog cue"}
		incoming.Name = "BENCH"

		mr := r.Merge(&existing, &incoming)
		require.True(t, mr.Changed)
		assert.Equal(t, []string{"Flared elbows"}, mr.Merged.Cautions)
		assert.Equal(t, []string{"My own cue"}, mr.Merged.Instructions)
		assert.Equal(t, "Bench Press", mr.Merged.Name)
		assert.Equal(t, []string{"cautions"}, mr.Update.Paths())
		assert.True(t, mr.Merged.UpdatedAt.Time.Equal(fixedNow.Time))
		assert.Empty(t, existing.Cautions, "existing record not mutated")
	})

	t.Run("links are never touched by merge", func(t *testing.T) {
		existing := benchPress()
		incoming := benchPress()
		incoming.Progressions = []string{"x"}
		mr := r.Merge(&existing, &incoming)
		assert.False(t, mr.Changed)
	})

	t.Run("placeholder content is replaced", func(t *testing.T) {
		existing := benchPress()
		existing.Instructions = []string{"Instructions coming soon"}
		incoming := benchPress()

		mr := r.Merge(&existing, &incoming)
		require.True(t, mr.Changed)
		assert.Equal(t, []string{"Lower the bar", "Press"}, mr.Merged.Instructions)
	})

	t.Run("placeholder content survives plain merge without replacement", func(t *testing.T) {
		existing := benchPress()
		existing.Cautions = []string{"TBD"}
		incoming := benchPress()

		mr := r.Merge(&existing, &incoming)
		assert.False(t, mr.Changed)
	})
}

func TestMergeRepair(t *testing.T) {
	r := newTestReconciler(t, WithRepair(true))

	existing := benchPress()
	existing.Cautions = []string{"TBD"}
	incoming := benchPress()

	mr := r.Merge(&existing, &incoming)
	require.True(t, mr.Changed)
	assert.Equal(t, []string{}, mr.Merged.Cautions)
	assert.Equal(t, []string{"TBD"}, existing.Cautions)
}

func TestReconcile(t *testing.T) {
	r := newTestReconciler(t)

	stored := benchPress()
	user := benchPress()
	user.Name = "My Press"
	user.Source = catalogs.SourceUser
	user.StableID = identity.StableID(&user)
	index := NewIndex([]catalogs.Exercise{stored, user})

	same := benchPress()
	userIncoming := user
	userIncoming.Source = catalogs.SourceCatalog
	userIncoming.Cautions = []string{"Catalog caution"}
	fresh := benchPress()
	fresh.ID = ""
	fresh.Name = "Incline Press"
	fresh.StableID = identity.StableID(&fresh)

	result := r.Reconcile(index, []catalogs.Exercise{same, userIncoming, fresh})
	assert.Equal(t, 3, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Inserted)
	assert.Equal(t, 0, result.Stats.Updated)
	assert.Equal(t, 2, result.Stats.Skipped)
	assert.Equal(t, 1, result.Stats.UserOwned)
	assert.Equal(t, 2, result.Stats.MatchedBy["stable_id"])
	assert.True(t, result.HasWrites())

	require.Len(t, result.Inserts, 1)
	ins := result.Inserts[0]
	assert.Equal(t, "id-1", ins.ID)
	assert.True(t, ins.CreatedAt.Time.Equal(fixedNow.Time))
	assert.Equal(t, "1 inserted, 0 updated, 2 skipped (1 user-owned)", result.Summary())
}

func TestReconcileRepair(t *testing.T) {
	r := newTestReconciler(t, WithRepair(true))

	// Stored under an older identity: matched by external ID.
	drifted := benchPress()
	drifted.StableID = "legacy-id"
	drifted.Instructions = []string{"Coming soon"}

	// Not in the payload: swept.
	orphan := benchPress()
	orphan.StableID = "orphan"
	orphan.ExternalID = ""
	orphan.Slug = "orphan"
	orphan.Cautions = []string{"N/A"}

	// Matched by slug.
	slugOnly := benchPress()
	slugOnly.StableID = "slug-only"
	slugOnly.ExternalID = ""
	slugOnly.Slug = "floor-press"
	slugOnly.Category = ""

	index := NewIndex([]catalogs.Exercise{drifted, orphan, slugOnly})

	incoming := benchPress()
	floor := benchPress()
	floor.ExternalID = ""
	floor.Name = "Floor Press"
	floor.Slug = "floor-press"
	floor.StableID = identity.StableID(&floor)
	unknown := benchPress()
	unknown.ExternalID = "Nope"
	unknown.Slug = "nope"
	unknown.Name = "Nope"
	unknown.StableID = identity.StableID(&unknown)

	result := r.Reconcile(index, []catalogs.Exercise{incoming, floor, unknown})
	assert.Empty(t, result.Inserts, "repair never inserts")
	assert.Equal(t, 1, result.Stats.Unmatched)
	assert.Equal(t, 1, result.Stats.MatchedBy["external_id"])
	assert.Equal(t, 1, result.Stats.MatchedBy["slug"])
	assert.Equal(t, 1, result.Stats.Swept)
	assert.Equal(t, 3, result.Stats.Updated+result.Stats.Swept)

	byID := map[string]catalogs.Exercise{}
	for _, u := range result.Updates {
		byID[u.StableID] = u
	}
	assert.Equal(t, []string{"Lower the bar", "Press"}, byID["legacy-id"].Instructions)
	assert.Equal(t, "upper", byID["slug-only"].Category)
	assert.Equal(t, []string{}, byID["orphan"].Cautions)
	assert.Contains(t, result.Summary(), "1 unmatched, 1 swept")
}

func TestIndex(t *testing.T) {
	a := benchPress()
	b := benchPress()
	b.StableID = "other"
	b.Slug = "bench-press"
	ix := NewIndex([]catalogs.Exercise{a, b})

	assert.Equal(t, 2, ix.Len())
	got, ok := ix.ByStableID(a.StableID)
	require.True(t, ok)
	assert.Equal(t, a.StableID, got.StableID)

	probe := catalogs.Exercise{StableID: "missing", Slug: "bench-press"}
	rec, how := ix.Match(&probe, false)
	assert.Nil(t, rec)
	assert.Equal(t, MatchNone, how)

	rec, how = ix.Match(&probe, true)
	require.NotNil(t, rec)
	assert.Equal(t, MatchSlug, how)
	assert.Equal(t, a.StableID, rec.StableID, "first record wins slug collisions")
}
