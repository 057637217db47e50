// Package normalize converts heterogeneous raw exercise records into the one
// canonical catalogs.Exercise shape used by every later pipeline stage.
//
// Nothing downstream of this package inspects raw field names. Each canonical
// field is read from a fixed priority list of aliases, strings are trimmed and
// case-folded where the field is a vocabulary term, list fields are
// de-duplicated in order, and known placeholder text is removed.
package normalize

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/utc"
	"github.com/gosimple/slug"
	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleCaser = cases.Title(language.English)

	// stepPrefix matches list numbering such as "1.", "2)" or "Step 3:".
	stepPrefix = regexp.MustCompile(`^(?i:step\s*)?\d+\s*[.):]\s*`)
)

// Normalize converts one raw JSON record into a canonical exercise.
// Input that is not a JSON object yields a record with every field defaulted.
func Normalize(raw []byte) catalogs.Exercise {
	if !gjson.ValidBytes(raw) {
		return Canonicalize(catalogs.Exercise{})
	}
	return FromResult(gjson.ParseBytes(raw))
}

// NormalizeAll normalizes every raw record, preserving order.
func NormalizeAll(raws [][]byte) []catalogs.Exercise {
	out := make([]catalogs.Exercise, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

// FromResult converts an already-parsed JSON value into a canonical exercise.
func FromResult(doc gjson.Result) catalogs.Exercise {
	if !doc.IsObject() {
		return Canonicalize(catalogs.Exercise{})
	}

	ex := catalogs.Exercise{
		Name:              first(doc, nameKeys).String(),
		Slug:              first(doc, slugKeys).String(),
		ExternalID:        first(doc, externalIDKeys).String(),
		PrimaryMuscles:    toList(first(doc, primaryMuscleKeys)),
		SecondaryMuscles:  toList(first(doc, secondaryMuscleKeys)),
		RequiredEquipment: toList(first(doc, requiredEquipmentKeys)),
		OptionalEquipment: toList(first(doc, optionalEquipmentKeys)),
		Instructions:      toSteps(first(doc, instructionKeys)),
		Cautions:          toSteps(first(doc, cautionKeys)),
		Aliases:           toList(first(doc, aliasKeys)),
		Media:             toList(first(doc, mediaKeys)),
		Category:          first(doc, categoryKeys).String(),
		Pattern:           first(doc, patternKeys).String(),
		Level:             first(doc, levelKeys).String(),
		Force:             first(doc, forceKeys).String(),
		Mechanic:          first(doc, mechanicKeys).String(),
		Source:            catalogs.Source(foldToken(first(doc, sourceKeys).String())),
		SourceUpdatedAt:   toTime(first(doc, updatedAtKeys)),
	}

	// An explicit null or empty equipment value means nothing is needed.
	if eq := first(doc, requiredEquipmentKeys); eq.Exists() && len(ex.RequiredEquipment) == 0 && !eq.IsObject() {
		ex.RequiredEquipment = []string{"bodyweight"}
	}

	return Canonicalize(ex)
}

// Canonicalize applies the canonical string, list and default rules to a
// typed record. It is idempotent.
func Canonicalize(ex catalogs.Exercise) catalogs.Exercise {
	ex.Name = displayName(ex.Name)
	if s := strings.TrimSpace(ex.Slug); s != "" {
		ex.Slug = slug.Make(s)
	} else {
		ex.Slug = slug.Make(ex.Name)
	}
	ex.ExternalID = strings.TrimSpace(ex.ExternalID)

	ex.PrimaryMuscles = canonicalList(ex.PrimaryMuscles, CanonicalMuscle)
	ex.SecondaryMuscles = canonicalList(ex.SecondaryMuscles, CanonicalMuscle)
	ex.SecondaryMuscles = slices.DeleteFunc(ex.SecondaryMuscles, func(m string) bool {
		return slices.Contains(ex.PrimaryMuscles, m)
	})
	ex.RequiredEquipment = canonicalList(ex.RequiredEquipment, CanonicalEquipment)
	ex.OptionalEquipment = canonicalList(ex.OptionalEquipment, CanonicalEquipment)
	ex.OptionalEquipment = slices.DeleteFunc(ex.OptionalEquipment, func(e string) bool {
		return slices.Contains(ex.RequiredEquipment, e)
	})

	ex.Instructions = StripPlaceholders(canonicalList(ex.Instructions, cleanStep))
	ex.Cautions = StripPlaceholders(canonicalList(ex.Cautions, cleanStep))
	ex.Aliases = canonicalList(ex.Aliases, collapse)
	ex.Aliases = slices.DeleteFunc(ex.Aliases, func(a string) bool {
		return strings.EqualFold(a, ex.Name)
	})
	ex.Media = canonicalList(ex.Media, strings.TrimSpace)

	ex.Category = foldToken(ex.Category)
	ex.Pattern = foldToken(ex.Pattern)
	if ex.Pattern == "" {
		ex.Pattern = InferPattern(ex.Name)
	}
	ex.Level = foldToken(ex.Level)
	ex.Force = foldToken(ex.Force)
	ex.Mechanic = foldToken(ex.Mechanic)

	if !ex.Source.IsValid() {
		ex.Source = catalogs.SourceCatalog
	}

	ex.EnsureLists()
	return ex
}

// first returns the value of the first alias present in doc.
func first(doc gjson.Result, keys []string) gjson.Result {
	for _, k := range keys {
		if v := doc.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// toList accepts a string, an array of strings, or an array of {"name": ...} objects.
func toList(v gjson.Result) []string {
	switch {
	case v.IsArray():
		var out []string
		for _, item := range v.Array() {
			switch {
			case item.IsObject():
				if name := item.Get("name"); name.Exists() {
					out = append(out, name.String())
				}
			case item.Type == gjson.String || item.Type == gjson.Number:
				out = append(out, item.String())
			}
		}
		return out
	case v.Type == gjson.String:
		if strings.Contains(v.Str, ",") {
			return strings.Split(v.Str, ",")
		}
		return []string{v.Str}
	default:
		return nil
	}
}

// toSteps is toList for prose fields: a single string is split on line breaks.
func toSteps(v gjson.Result) []string {
	if v.Type == gjson.String {
		return strings.FieldsFunc(v.Str, func(r rune) bool { return r == '\n' || r == '\r' })
	}
	return toList(v)
}

func toTime(v gjson.Result) utc.Time {
	switch v.Type {
	case gjson.Number:
		return utc.New(time.Unix(v.Int(), 0))
	case gjson.String:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateTime, time.DateOnly} {
			if t, err := time.Parse(layout, strings.TrimSpace(v.Str)); err == nil {
				return utc.New(t)
			}
		}
		if secs, err := strconv.ParseInt(v.Str, 10, 64); err == nil {
			return utc.New(time.Unix(secs, 0))
		}
	}
	return utc.Time{}
}

// canonicalList maps fn over list, dropping empty results and duplicates.
func canonicalList(list []string, fn func(string) string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		c := fn(item)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanStep(s string) string {
	return collapse(stepPrefix.ReplaceAllString(strings.TrimSpace(s), ""))
}

// displayName collapses whitespace and title-cases names shipped in a single case.
func displayName(s string) string {
	s = collapse(s)
	if s == "" {
		return s
	}
	if s == strings.ToLower(s) || s == strings.ToUpper(s) {
		return titleCaser.String(strings.ToLower(s))
	}
	return s
}
