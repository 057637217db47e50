// Package equipment resolves equipment names used by exercises into
// EquipmentRecords, creating a record the first time an unknown name is seen.
//
// Lookup happens by canonical name, ID and alias before anything is created,
// so the same gear is never stored twice under different spellings.
package equipment

import (
	"slices"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/normalize"
)

// Equipment categories.
const (
	CategoryFreeWeight = "free weight"
	CategoryMachine    = "machine"
	CategoryBodyweight = "bodyweight"
	CategoryAccessory  = "accessory"
)

var categories = map[string]string{
	"barbell":        CategoryFreeWeight,
	"dumbbell":       CategoryFreeWeight,
	"kettlebell":     CategoryFreeWeight,
	"ez curl bar":    CategoryFreeWeight,
	"trap bar":       CategoryFreeWeight,
	"medicine ball":  CategoryFreeWeight,
	"machine":        CategoryMachine,
	"cable":          CategoryMachine,
	"smith machine":  CategoryMachine,
	"bodyweight":     CategoryBodyweight,
	"pull-up bar":    CategoryBodyweight,
	"rings":          CategoryBodyweight,
	"band":           CategoryAccessory,
	"bench":          CategoryAccessory,
	"foam roller":    CategoryAccessory,
	"stability ball": CategoryAccessory,
}

var titleCaser = cases.Title(language.English)

// Resolver maps equipment names to records. It is safe for concurrent use.
type Resolver struct {
	mu      sync.Mutex
	byKey   map[string]*catalogs.Equipment
	created []*catalogs.Equipment
}

// NewResolver creates a resolver seeded with already persisted equipment.
func NewResolver(existing []catalogs.Equipment) *Resolver {
	r := &Resolver{byKey: make(map[string]*catalogs.Equipment, len(existing)*2)}
	for i := range existing {
		r.index(existing[i].Clone())
	}
	return r
}

// Key returns the lookup key for an equipment name.
func Key(name string) string {
	return normalize.CanonicalEquipment(name)
}

// Resolve returns the record for name, creating it when no record matches.
// The boolean reports whether the record was created by this call.
// An empty name resolves to nil.
func (r *Resolver) Resolve(name string) (*catalogs.Equipment, bool) {
	key := Key(name)
	if key == "" {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if eq, ok := r.byKey[key]; ok {
		return eq, false
	}
	if eq, ok := r.byKey[slug.Make(key)]; ok {
		return eq, false
	}

	eq := &catalogs.Equipment{
		ID:       slug.Make(key),
		Name:     titleCaser.String(key),
		Category: categories[key],
		Aliases:  []string{},
	}
	if raw := strings.ToLower(strings.TrimSpace(name)); raw != key {
		eq.Aliases = append(eq.Aliases, raw)
	}
	r.index(eq)
	r.created = append(r.created, eq)
	return eq, true
}

// ResolveExercises resolves every required and optional equipment name of
// exercises and returns the records created along the way.
func (r *Resolver) ResolveExercises(exercises []catalogs.Exercise) []catalogs.Equipment {
	var created []catalogs.Equipment
	for i := range exercises {
		for _, name := range exercises[i].Equipment() {
			if eq, isNew := r.Resolve(name); isNew {
				created = append(created, *eq.Clone())
			}
		}
	}
	return created
}

// Created returns every record created since the resolver was built.
func (r *Resolver) Created() []catalogs.Equipment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalogs.Equipment, 0, len(r.created))
	for _, eq := range r.created {
		out = append(out, *eq.Clone())
	}
	return out
}

// Known returns every record the resolver knows about, sorted by ID.
func (r *Resolver) Known() []catalogs.Equipment {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(r.byKey))
	out := make([]catalogs.Equipment, 0, len(r.byKey))
	for _, eq := range r.byKey {
		if seen[eq.ID] {
			continue
		}
		seen[eq.ID] = true
		out = append(out, *eq.Clone())
	}
	slices.SortFunc(out, func(a, b catalogs.Equipment) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// index registers eq under its ID, canonical name and aliases. Existing keys
// keep their first owner. Callers hold mu or own r exclusively.
func (r *Resolver) index(eq *catalogs.Equipment) {
	keys := []string{eq.ID, Key(eq.Name)}
	for _, alias := range eq.Aliases {
		keys = append(keys, Key(alias))
	}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, taken := r.byKey[k]; !taken {
			r.byKey[k] = eq
		}
	}
}
