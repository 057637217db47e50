package normalize

import (
	"strings"
	"unicode"
)

// placeholderPhrases are boilerplate lines some catalogs ship in place of
// authored instructions or cautions. Keys are in folded form.
var placeholderPhrases = map[string]struct{}{
	"no instructions available":             {},
	"no instructions provided":              {},
	"instructions coming soon":              {},
	"instructions not available":            {},
	"coming soon":                           {},
	"tbd":                                   {},
	"todo":                                  {},
	"na":                                    {},
	"none":                                  {},
	"placeholder":                           {},
	"see video":                             {},
	"see video for instructions":            {},
	"follow the instructions":               {},
	"perform the exercise with proper form": {},
	"perform the movement with proper form": {},
	"maintain proper form throughout":       {},
	"maintain proper form throughout the movement":         {},
	"maintain good form":                                   {},
	"use proper form":                                      {},
	"keep good form":                                       {},
	"avoid common mistakes":                                {},
	"no common mistakes listed":                            {},
	"no cautions":                                          {},
	"consult a professional before starting":               {},
	"consult a professional before starting this exercise": {},
}

// placeholderPrefixes match filler text regardless of what follows.
var placeholderPrefixes = []string{
	"lorem ipsum",
	"description coming soon",
	"instructions will be added",
}

// IsPlaceholder reports whether s is known boilerplate rather than authored content.
func IsPlaceholder(s string) bool {
	folded := foldPhrase(s)
	if folded == "" {
		return true
	}
	if _, ok := placeholderPhrases[folded]; ok {
		return true
	}
	for _, p := range placeholderPrefixes {
		if strings.HasPrefix(folded, p) {
			return true
		}
	}
	return false
}

// StripPlaceholders returns list without placeholder entries. The result is never nil.
func StripPlaceholders(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if !IsPlaceholder(s) {
			out = append(out, s)
		}
	}
	return out
}

// PlaceholderOnly reports whether list is non-empty and holds nothing but placeholders.
func PlaceholderOnly(list []string) bool {
	if len(list) == 0 {
		return false
	}
	for _, s := range list {
		if !IsPlaceholder(s) {
			return false
		}
	}
	return true
}

// IsMissing reports whether a list field carries no authored content.
func IsMissing(list []string) bool {
	return len(list) == 0 || PlaceholderOnly(list)
}

// foldPhrase lower-cases s, drops punctuation and collapses whitespace.
func foldPhrase(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			space = true
		}
	}
	return b.String()
}
