package normalize

import (
	"strings"
	"unicode"
)

// equipmentAliases maps shorthand and plural spellings to canonical equipment names.
var equipmentAliases = map[string]string{
	"db":               "dumbbell",
	"dbs":              "dumbbell",
	"dumbbells":        "dumbbell",
	"bb":               "barbell",
	"barbells":         "barbell",
	"kb":               "kettlebell",
	"kbs":              "kettlebell",
	"kettlebells":      "kettlebell",
	"body weight":      "bodyweight",
	"body only":        "bodyweight",
	"none":             "bodyweight",
	"no equipment":     "bodyweight",
	"ez bar":           "ez curl bar",
	"ez-bar":           "ez curl bar",
	"e-z curl bar":     "ez curl bar",
	"bands":            "band",
	"resistance band":  "band",
	"resistance bands": "band",
	"cables":           "cable",
	"cable machine":    "cable",
	"smith":            "smith machine",
	"pull up bar":      "pull-up bar",
	"pullup bar":       "pull-up bar",
	"chin up bar":      "pull-up bar",
	"exercise ball":    "stability ball",
	"swiss ball":       "stability ball",
	"benches":          "bench",
	"flat bench":       "bench",
	"med ball":         "medicine ball",
	"foam roll":        "foam roller",
}

// muscleAliases maps gym shorthand to canonical muscle names.
var muscleAliases = map[string]string{
	"quads":      "quadriceps",
	"quad":       "quadriceps",
	"hams":       "hamstrings",
	"hamstring":  "hamstrings",
	"glute":      "glutes",
	"gluteus":    "glutes",
	"abs":        "abdominals",
	"core":       "abdominals",
	"pecs":       "chest",
	"pectorals":  "chest",
	"delts":      "shoulders",
	"deltoids":   "shoulders",
	"lat":        "lats",
	"latissimus": "lats",
	"trap":       "traps",
	"trapezius":  "traps",
	"bicep":      "biceps",
	"tricep":     "triceps",
	"calf":       "calves",
}

// patternKeywords infers a movement pattern from a name when the source has none.
// Order matters: the first matching rule wins.
var patternKeywords = []struct {
	pattern  string
	keywords []string
}{
	{"lunge", []string{"lunge", "split squat", "step-up", "step up"}},
	{"squat", []string{"squat", "leg press", "pistol", "wall sit"}},
	{"hinge", []string{"deadlift", "rdl", "good morning", "hip thrust", "swing", "glute bridge", "hyperextension"}},
	{"pull", []string{"row", "pull-up", "pullup", "chin-up", "chinup", "pulldown", "face pull"}},
	{"push", []string{"press", "push-up", "pushup", "dip", "fly", "flye"}},
	{"carry", []string{"carry", "farmer", "suitcase walk"}},
	{"core", []string{"plank", "crunch", "sit-up", "situp", "rollout", "dead bug", "leg raise", "hollow"}},
}

// CanonicalEquipment returns the canonical name of an equipment string.
func CanonicalEquipment(s string) string {
	key := foldToken(s)
	if canonical, ok := equipmentAliases[key]; ok {
		return canonical
	}
	return key
}

// CanonicalMuscle returns the canonical name of a muscle string.
func CanonicalMuscle(s string) string {
	key := foldToken(s)
	if canonical, ok := muscleAliases[key]; ok {
		return canonical
	}
	return key
}

// InferPattern guesses a movement pattern from an exercise name. Keywords
// match at the start of a word, so "narrow" never matches "row".
func InferPattern(name string) string {
	padded := " " + strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return unicode.ToLower(r)
		}
		return ' '
	}, name)
	for _, rule := range patternKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(padded, " "+kw) {
				return rule.pattern
			}
		}
	}
	return ""
}

// foldToken trims, lower-cases and collapses internal whitespace.
func foldToken(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
