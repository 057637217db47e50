package linker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/linker"
)

func exercise(id, name, pattern, category string, muscles, equipment []string) catalogs.Exercise {
	return catalogs.Exercise{
		StableID:          id,
		Name:              name,
		Pattern:           pattern,
		Category:          category,
		PrimaryMuscles:    muscles,
		RequiredEquipment: equipment,
		Source:            catalogs.SourceCatalog,
		Progressions:      []string{},
		Regressions:       []string{},
	}
}

// testTable gives each test equipment an exact difficulty.
var testTable = map[string]float64{"easy": 1, "mid": 3, "hard": 5}

func squatFamily() []catalogs.Exercise {
	return []catalogs.Exercise{
		exercise("a", "Goblet Squat", "squat", "lower", []string{"quads", "glutes"}, []string{"mid"}),
		exercise("b", "Box Squat", "squat", "lower", []string{"quads"}, []string{"easy"}),
		exercise("c", "Front Squat", "squat", "lower", []string{"quads", "glutes"}, []string{"hard"}),
		exercise("d", "Bench Press", "push", "upper", []string{"chest"}, []string{"mid"}),
	}
}

func byID(updates []linker.Update) map[string]linker.Update {
	out := make(map[string]linker.Update, len(updates))
	for _, u := range updates {
		out[u.StableID] = u
	}
	return out
}

func TestLink(t *testing.T) {
	l := linker.New(linker.WithEquipmentDifficulty(testTable))
	res := l.Link(squatFamily())

	updates := byID(res.Updates)
	require.Len(t, updates, 3)

	a := updates["a"]
	assert.Equal(t, []string{"c"}, a.Progressions)
	assert.Equal(t, []string{"b"}, a.Regressions)

	// equal scores fall back to the closer difficulty
	assert.Equal(t, []string{"a", "c"}, updates["b"].Progressions)
	assert.Empty(t, updates["b"].Regressions)
	assert.Equal(t, []string{"a", "b"}, updates["c"].Regressions)

	_, linkedD := updates["d"]
	assert.False(t, linkedD)

	assert.Equal(t, 4, res.Stats.Eligible)
	assert.Equal(t, 3, res.Stats.Updated)
}

func TestLinkFillOnly(t *testing.T) {
	records := squatFamily()
	for i := range records {
		records[i].Progressions = []string{"existing"}
		records[i].Regressions = []string{"existing"}
	}

	t.Run("populated lists are kept", func(t *testing.T) {
		res := linker.New(linker.WithEquipmentDifficulty(testTable)).Link(records)
		assert.Empty(t, res.Updates)
		assert.Equal(t, 4, res.Stats.AlreadyLinked)
	})

	t.Run("force recomputes", func(t *testing.T) {
		res := linker.New(linker.WithEquipmentDifficulty(testTable), linker.WithForce(true)).Link(records)
		updates := byID(res.Updates)
		require.Contains(t, updates, "a")
		assert.Equal(t, []string{"c"}, updates["a"].Progressions)
		// d loses its stale links
		assert.Equal(t, []string{}, updates["d"].Progressions)
	})

	t.Run("only the empty list is filled", func(t *testing.T) {
		partial := squatFamily()
		partial[0].Progressions = []string{"manual"}
		res := linker.New(linker.WithEquipmentDifficulty(testTable)).Link(partial)
		a := byID(res.Updates)["a"]
		assert.Equal(t, []string{"manual"}, a.Progressions)
		assert.Equal(t, []string{"b"}, a.Regressions)
	})
}

func TestLinkSkipsUserAndUnidentified(t *testing.T) {
	records := squatFamily()
	records[1].Source = catalogs.SourceUser
	records[2].StableID = ""

	res := linker.New(linker.WithEquipmentDifficulty(testTable)).Link(records)
	assert.Equal(t, 2, res.Stats.Eligible)
	assert.Empty(t, res.Updates)
	assert.Equal(t, []string{}, records[1].Progressions)
}

func TestLinkTopK(t *testing.T) {
	table := map[string]float64{"e1": 1, "e2": 1.5, "e3": 2, "top": 4}
	records := []catalogs.Exercise{
		exercise("top", "Top", "hinge", "lower", []string{"hamstrings"}, []string{"top"}),
		exercise("r1", "Easy One", "hinge", "lower", []string{"hamstrings"}, []string{"e1"}),
		exercise("r2", "Easy Two", "hinge", "lower", []string{"hamstrings"}, []string{"e2"}),
		exercise("r3", "Easy Three", "hinge", "lower", []string{"hamstrings"}, []string{"e3"}),
	}

	res := linker.New(linker.WithEquipmentDifficulty(table), linker.WithTopK(2)).Link(records)
	top := byID(res.Updates)["top"]
	assert.Equal(t, []string{"r3", "r2"}, top.Regressions)
}

func TestDifficulty(t *testing.T) {
	l := linker.New()
	tests := []struct {
		name      string
		equipment []string
		want      float64
	}{
		{"Barbell Back Squat", []string{"barbell"}, 3.5},
		{"Assisted Pull-Up", []string{"pull-up bar", "band"}, 2},
		{"Push-Up", []string{"bodyweight"}, 1},
		{"Assisted Push-Up", []string{"bodyweight"}, 1},
		{"Single-Arm Dumbbell Row", []string{"dumbbell"}, 3.25},
		{"Plyometric Single-Leg Ring Dip", []string{"rings"}, 5},
		{"Smith Machine Squat", []string{"smith machine"}, 2},
		{"Sandbag Carry", []string{"sandbag"}, 2},
		{"Dead Bug", nil, 2},
		{"Narrow Grip Row", []string{"cable"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &catalogs.Exercise{Name: tt.name, RequiredEquipment: tt.equipment}
			assert.InDelta(t, tt.want, l.Difficulty(ex), 0.0001)
		})
	}
}

func TestSimilarity(t *testing.T) {
	base := exercise("a", "A", "squat", "lower", []string{"quads", "glutes", "adductors", "calves"}, []string{"barbell"})
	tests := []struct {
		name  string
		other catalogs.Exercise
		want  int
	}{
		{"identical caps muscles", base, 4 + 2 + 6 + 1},
		{"pattern only", exercise("b", "B", "squat", "", nil, nil), 4},
		{"empty pattern does not match", exercise("c", "C", "", "", nil, nil), 0},
		{"one muscle and equipment", exercise("d", "D", "hinge", "upper", []string{"glutes"}, []string{"barbell", "bench"}), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, linker.Similarity(&base, &tt.other))
		})
	}
}
