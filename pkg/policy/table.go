package policy

import (
	"slices"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/utc"
)

// Table is an ordered set of field policies.
type Table []Field

// Default returns the standard exercise merge table. Catalog content is
// fill-if-missing; display name, provenance and derived links are never
// overwritten by a merge; the source timestamp tracks the newest payload.
func Default() Table {
	return Table{
		text("name", NeverOverwrite,
			func(e *catalogs.Exercise) string { return e.Name },
			func(e *catalogs.Exercise, v string) { e.Name = v }),
		text("slug", FillIfMissing,
			func(e *catalogs.Exercise) string { return e.Slug },
			func(e *catalogs.Exercise, v string) { e.Slug = v }),
		list("primary_muscles", FillIfMissing,
			func(e *catalogs.Exercise) []string { return e.PrimaryMuscles },
			func(e *catalogs.Exercise, v []string) { e.PrimaryMuscles = v }),
		list("secondary_muscles", FillIfMissing,
			func(e *catalogs.Exercise) []string { return e.SecondaryMuscles },
			func(e *catalogs.Exercise, v []string) { e.SecondaryMuscles = v }),
		list("required_equipment", FillIfMissing,
			func(e *catalogs.Exercise) []string { return e.RequiredEquipment },
			func(e *catalogs.Exercise, v []string) { e.RequiredEquipment = v }),
		list("optional_equipment", FillIfMissing,
			func(e *catalogs.Exercise) []string { return e.OptionalEquipment },
			func(e *catalogs.Exercise, v []string) { e.OptionalEquipment = v }),
		list("instructions", FillIfMissing,
			func(e *catalogs.Exercise) []string { return e.Instructions },
			func(e *catalogs.Exercise, v []string) { e.Instructions = v }),
		list("cautions", FillIfMissing,
			func(e *catalogs.Exercise) []string { return e.Cautions },
			func(e *catalogs.Exercise, v []string) { e.Cautions = v }),
		list("aliases", FillIfMissing,
			func(e *catalogs.Exercise) []string { return e.Aliases },
			func(e *catalogs.Exercise, v []string) { e.Aliases = v }),
		list("media", FillIfMissing,
			func(e *catalogs.Exercise) []string { return e.Media },
			func(e *catalogs.Exercise, v []string) { e.Media = v }),
		text("category", FillIfMissing,
			func(e *catalogs.Exercise) string { return e.Category },
			func(e *catalogs.Exercise, v string) { e.Category = v }),
		text("pattern", FillIfMissing,
			func(e *catalogs.Exercise) string { return e.Pattern },
			func(e *catalogs.Exercise, v string) { e.Pattern = v }),
		text("level", FillIfMissing,
			func(e *catalogs.Exercise) string { return e.Level },
			func(e *catalogs.Exercise, v string) { e.Level = v }),
		text("force", FillIfMissing,
			func(e *catalogs.Exercise) string { return e.Force },
			func(e *catalogs.Exercise, v string) { e.Force = v }),
		text("mechanic", FillIfMissing,
			func(e *catalogs.Exercise) string { return e.Mechanic },
			func(e *catalogs.Exercise, v string) { e.Mechanic = v }),
		text("external_id", FillIfMissing,
			func(e *catalogs.Exercise) string { return e.ExternalID },
			func(e *catalogs.Exercise, v string) { e.ExternalID = v }),
		text("source_key", FillIfMissing,
			func(e *catalogs.Exercise) string { return e.SourceKey },
			func(e *catalogs.Exercise, v string) { e.SourceKey = v }),
		text("source", NeverOverwrite,
			func(e *catalogs.Exercise) string { return string(e.Source) },
			func(e *catalogs.Exercise, v string) { e.Source = catalogs.Source(v) }),
		timeField("source_updated_at", PreferIncomingIfNewer,
			func(e *catalogs.Exercise) utc.Time { return e.SourceUpdatedAt },
			func(e *catalogs.Exercise, v utc.Time) { e.SourceUpdatedAt = v }),
		list("progressions", NeverOverwrite,
			func(e *catalogs.Exercise) []string { return e.Progressions },
			func(e *catalogs.Exercise, v []string) { e.Progressions = v }),
		list("regressions", NeverOverwrite,
			func(e *catalogs.Exercise) []string { return e.Regressions },
			func(e *catalogs.Exercise, v []string) { e.Regressions = v }),
	}
}

// Lookup returns the policy of the named field.
func (t Table) Lookup(name string) (Field, bool) {
	i := slices.IndexFunc(t, func(f Field) bool { return f.Name == name })
	if i < 0 {
		return Field{}, false
	}
	return t[i], true
}

// Override returns a copy of t with the named field set to rule.
// Unknown names are ignored.
func (t Table) Override(name string, rule Rule) Table {
	out := slices.Clone(t)
	for i := range out {
		if out[i].Name == name {
			out[i].Rule = rule
		}
	}
	return out
}

// Rules returns the field name to rule mapping, for display.
func (t Table) Rules() map[string]Rule {
	m := make(map[string]Rule, len(t))
	for _, f := range t {
		m[f.Name] = f.Rule
	}
	return m
}

func text(name string, rule Rule, get func(*catalogs.Exercise) string, set func(*catalogs.Exercise, string)) Field {
	return Field{Name: name, Rule: rule, Kind: KindText, getText: get, setText: set}
}

func list(name string, rule Rule, get func(*catalogs.Exercise) []string, set func(*catalogs.Exercise, []string)) Field {
	return Field{Name: name, Rule: rule, Kind: KindList, getList: get, setList: set}
}

func timeField(name string, rule Rule, get func(*catalogs.Exercise) utc.Time, set func(*catalogs.Exercise, utc.Time)) Field {
	return Field{Name: name, Rule: rule, Kind: KindTime, getTime: get, setTime: set}
}
