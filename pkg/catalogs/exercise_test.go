package catalogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseIsUserOwned(t *testing.T) {
	var nilEx *Exercise
	assert.False(t, nilEx.IsUserOwned())
	assert.True(t, (&Exercise{Source: SourceUser}).IsUserOwned())
	assert.False(t, (&Exercise{Source: SourceCatalog}).IsUserOwned())
	assert.False(t, (&Exercise{Source: SourceStarter}).IsUserOwned())
}

func TestSourceIsValid(t *testing.T) {
	assert.True(t, SourceCatalog.IsValid())
	assert.False(t, Source("scraped").IsValid())
}

func TestExerciseClone(t *testing.T) {
	orig := &Exercise{
		Name:           "Back Squat",
		PrimaryMuscles: []string{"quadriceps"},
		Instructions:   []string{"Brace", "Squat"},
	}
	c := orig.Clone()
	c.PrimaryMuscles[0] = "glutes"
	c.Instructions = append(c.Instructions, "Stand")

	assert.Equal(t, "quadriceps", orig.PrimaryMuscles[0])
	assert.Len(t, orig.Instructions, 2)
	assert.NotNil(t, c.Cautions, "nil lists become empty on clone")
}

func TestExerciseEquipment(t *testing.T) {
	ex := &Exercise{
		RequiredEquipment: []string{"barbell", "bench"},
		OptionalEquipment: []string{"bench", "chalk"},
	}
	assert.Equal(t, []string{"barbell", "bench", "chalk"}, ex.Equipment())
}

func TestExerciseEnsureLists(t *testing.T) {
	ex := &Exercise{}
	ex.EnsureLists()
	assert.NotNil(t, ex.PrimaryMuscles)
	assert.NotNil(t, ex.Regressions)
	assert.False(t, ex.HasLinks())
}

func TestEquipmentMatches(t *testing.T) {
	eq := &Equipment{ID: "dumbbell", Name: "dumbbell", Aliases: []string{"db", "dumbbells"}}
	assert.True(t, eq.Matches("db"))
	assert.True(t, eq.Matches("dumbbell"))
	assert.False(t, eq.Matches("barbell"))
}

func TestExercises(t *testing.T) {
	exs := NewExercises(WithExercisesCapacity(4))

	require.NoError(t, exs.Set(&Exercise{StableID: "b", Name: "B"}))
	require.NoError(t, exs.Add(&Exercise{StableID: "a", Name: "A"}))
	assert.Error(t, exs.Add(&Exercise{StableID: "a", Name: "dup"}))
	assert.Error(t, exs.Set(nil))
	assert.Error(t, exs.Set(&Exercise{Name: "no id"}))

	got, ok := exs.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, 2, exs.Len())

	list := exs.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].StableID)
}
