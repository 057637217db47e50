package policy_test

import (
	"testing"
	"time"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/policy"
	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(t *testing.T, name string) policy.Field {
	t.Helper()
	f, ok := policy.Default().Lookup(name)
	require.True(t, ok, name)
	return f
}

func TestDefaultRules(t *testing.T) {
	rules := policy.Default().Rules()
	assert.Equal(t, policy.NeverOverwrite, rules["name"])
	assert.Equal(t, policy.NeverOverwrite, rules["source"])
	assert.Equal(t, policy.NeverOverwrite, rules["progressions"])
	assert.Equal(t, policy.NeverOverwrite, rules["regressions"])
	assert.Equal(t, policy.PreferIncomingIfNewer, rules["source_updated_at"])
	assert.Equal(t, policy.FillIfMissing, rules["instructions"])
	assert.Equal(t, policy.FillIfMissing, rules["category"])

	_, ok := policy.Default().Lookup("nope")
	assert.False(t, ok)
}

func TestFillIfMissing(t *testing.T) {
	f := field(t, "instructions")

	tests := []struct {
		name     string
		existing []string
		incoming []string
		repair   bool
		want     []string
	}{
		{"fills empty", []string{}, []string{"Brace"}, false, []string{"Brace"}},
		{"keeps populated", []string{"Mine"}, []string{"Theirs"}, false, []string{"Mine"}},
		{"placeholder counts as missing", []string{"Coming soon"}, []string{"Brace"}, false, []string{"Brace"}},
		{"placeholder kept without repair", []string{"TBD"}, []string{}, false, []string{"TBD"}},
		{"placeholder cleared in repair", []string{"TBD"}, []string{}, true, []string{}},
		{"empty stays empty", []string{}, []string{}, true, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := &catalogs.Exercise{Instructions: tt.existing}
			incoming := &catalogs.Exercise{Instructions: tt.incoming}
			merged := existing.Clone()
			f.Apply(merged, existing, incoming, tt.repair)
			assert.Equal(t, tt.want, merged.Instructions)
		})
	}

	t.Run("text fields", func(t *testing.T) {
		cat := field(t, "category")
		existing := &catalogs.Exercise{Category: ""}
		merged := existing.Clone()
		cat.Apply(merged, existing, &catalogs.Exercise{Category: "lower"}, false)
		assert.Equal(t, "lower", merged.Category)

		existing = &catalogs.Exercise{Category: "legs"}
		merged = existing.Clone()
		cat.Apply(merged, existing, &catalogs.Exercise{Category: "lower"}, false)
		assert.Equal(t, "legs", merged.Category)
	})
}

func TestNeverOverwrite(t *testing.T) {
	f := field(t, "name")
	existing := &catalogs.Exercise{Name: ""}
	merged := existing.Clone()
	f.Apply(merged, existing, &catalogs.Exercise{Name: "Squat"}, true)
	assert.Empty(t, merged.Name)
}

func TestPreferIncomingIfNewer(t *testing.T) {
	f := field(t, "source_updated_at")
	older := utc.New(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := utc.New(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	existing := &catalogs.Exercise{SourceUpdatedAt: older}
	merged := existing.Clone()
	f.Apply(merged, existing, &catalogs.Exercise{SourceUpdatedAt: newer}, false)
	assert.True(t, merged.SourceUpdatedAt.Time.Equal(newer.Time))

	existing = &catalogs.Exercise{SourceUpdatedAt: newer}
	merged = existing.Clone()
	f.Apply(merged, existing, &catalogs.Exercise{SourceUpdatedAt: older}, false)
	assert.True(t, merged.SourceUpdatedAt.Time.Equal(newer.Time))

	existing = &catalogs.Exercise{SourceUpdatedAt: newer}
	merged = existing.Clone()
	f.Apply(merged, existing, &catalogs.Exercise{}, false)
	assert.True(t, merged.SourceUpdatedAt.Time.Equal(newer.Time), "zero incoming never wins")
}

func TestOverride(t *testing.T) {
	base := policy.Default()
	custom := base.Override("category", policy.NeverOverwrite)

	assert.Equal(t, policy.NeverOverwrite, custom.Rules()["category"])
	assert.Equal(t, policy.FillIfMissing, base.Rules()["category"], "original table untouched")
}

func TestFieldEqualAndFormat(t *testing.T) {
	f := field(t, "primary_muscles")
	a := &catalogs.Exercise{PrimaryMuscles: []string{"chest", "triceps"}}
	b := &catalogs.Exercise{PrimaryMuscles: []string{"triceps", "chest"}}
	assert.False(t, f.Equal(a, b))
	assert.True(t, f.Equal(a, a.Clone()))
	assert.Equal(t, "[chest, triceps]", f.Format(a))

	src := field(t, "source")
	assert.Equal(t, "user", src.Format(&catalogs.Exercise{Source: catalogs.SourceUser}))
}
