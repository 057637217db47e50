package linker

import (
	"strings"
	"unicode"

	"github.com/agentstation/liftmap/pkg/catalogs"
)

// Difficulty bounds.
const (
	MinDifficulty     = 1.0
	MaxDifficulty     = 5.0
	DefaultDifficulty = 2.0
)

// DefaultEquipmentDifficulty rates the equipment vocabulary produced by the normalizer.
func DefaultEquipmentDifficulty() map[string]float64 {
	return map[string]float64{
		"bodyweight":     1,
		"band":           1,
		"foam roller":    1,
		"stability ball": 1.5,
		"medicine ball":  2,
		"machine":        2,
		"cable":          2,
		"smith machine":  2.5,
		"dumbbell":       2.5,
		"kettlebell":     3,
		"ez curl bar":    3,
		"trap bar":       3,
		"pull-up bar":    3,
		"barbell":        3.5,
		"rings":          4,
	}
}

// keywordAdjustment shifts difficulty when any of its keywords starts a word of the name.
type keywordAdjustment struct {
	delta    float64
	keywords []string
}

var keywordAdjustments = []keywordAdjustment{
	{-1, []string{"assisted", "banded"}},
	{-0.5, []string{"machine", "smith"}},
	{0.75, []string{"unilateral", "single-leg", "single leg", "single-arm", "single arm", "one-arm", "one arm", "one-leg", "one leg"}},
	{0.75, []string{"tempo", "deficit", "plyometric", "plyo"}},
}

// Difficulty rates an exercise from 1 to 5: the hardest required equipment,
// adjusted by name keywords, clamped.
func (l *Linker) Difficulty(ex *catalogs.Exercise) float64 {
	score := l.defaultDifficulty
	if len(ex.RequiredEquipment) > 0 {
		score = 0
		for _, eq := range ex.RequiredEquipment {
			d, ok := l.equipment[strings.ToLower(eq)]
			if !ok {
				d = l.defaultDifficulty
			}
			score = max(score, d)
		}
	}

	name := wordPrefixes(ex.Name)
	for _, adj := range keywordAdjustments {
		for _, kw := range adj.keywords {
			if strings.Contains(name, " "+kw) {
				score += adj.delta
				break
			}
		}
	}
	return min(max(score, MinDifficulty), MaxDifficulty)
}

// wordPrefixes lower-cases s, turns punctuation other than hyphens into
// spaces and prefixes a space so " kw" matches at word starts.
func wordPrefixes(s string) string {
	return " " + strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
}
