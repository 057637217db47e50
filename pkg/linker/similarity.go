package linker

import (
	"slices"

	"github.com/agentstation/liftmap/pkg/catalogs"
)

// Similarity weights.
const (
	patternWeight    = 4
	categoryWeight   = 2
	muscleWeight     = 2
	muscleCap        = 6
	equipmentWeight  = 1
	DefaultThreshold = 6
	DefaultTopK      = 3
)

// Similarity scores how related two exercises are.
func Similarity(a, b *catalogs.Exercise) int {
	score := 0
	if a.Pattern != "" && a.Pattern == b.Pattern {
		score += patternWeight
	}
	if a.Category != "" && a.Category == b.Category {
		score += categoryWeight
	}

	shared := 0
	for _, m := range a.PrimaryMuscles {
		if slices.Contains(b.PrimaryMuscles, m) {
			shared++
		}
	}
	score += min(shared*muscleWeight, muscleCap)

	for _, eq := range a.RequiredEquipment {
		if slices.Contains(b.RequiredEquipment, eq) {
			score += equipmentWeight
			break
		}
	}
	return score
}
