// Package identity computes content-derived exercise identities, picks the
// most complete record among duplicates, and hashes whole corpora for cheap
// change detection between import runs.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/normalize"
)

// StableID returns the durable identity of an exercise. It depends only on
// the external ID, the name, the required equipment set, the primary muscle
// set, the movement pattern and the category. Set fields are compared
// without regard to order, case or surrounding whitespace.
func StableID(ex *catalogs.Exercise) string {
	h := newHasher()
	h.str(strings.TrimSpace(ex.ExternalID))
	h.str(fold(ex.Name))
	h.set(ex.RequiredEquipment)
	h.set(ex.PrimaryMuscles)
	h.str(fold(ex.Pattern))
	h.str(fold(ex.Category))
	return h.sum()
}

// Assign sets the StableID of every record in place.
func Assign(records []catalogs.Exercise) {
	for i := range records {
		records[i].StableID = StableID(&records[i])
	}
}

// ContentHash hashes the catalog-owned content of an exercise. Local keys,
// timestamps, provenance and derived links are excluded.
func ContentHash(ex *catalogs.Exercise) string {
	h := newHasher()
	h.str(ex.StableID)
	h.str(ex.Name)
	h.str(ex.Slug)
	h.list(ex.PrimaryMuscles)
	h.list(ex.SecondaryMuscles)
	h.list(ex.RequiredEquipment)
	h.list(ex.OptionalEquipment)
	h.list(ex.Instructions)
	h.list(ex.Cautions)
	h.list(ex.Aliases)
	h.list(ex.Media)
	h.str(ex.Category)
	h.str(ex.Pattern)
	h.str(ex.Level)
	h.str(ex.Force)
	h.str(ex.Mechanic)
	h.str(ex.ExternalID)
	return h.sum()
}

// CorpusHash hashes a deduplicated record set. Records are ordered by
// StableID first, so input order does not matter.
func CorpusHash(records []catalogs.Exercise) string {
	type entry struct{ id, content string }
	entries := make([]entry, 0, len(records))
	for i := range records {
		entries = append(entries, entry{records[i].StableID, ContentHash(&records[i])})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].id != entries[j].id {
			return entries[i].id < entries[j].id
		}
		return entries[i].content < entries[j].content
	})

	h := newHasher()
	h.str(strconv.Itoa(len(entries)))
	for _, e := range entries {
		h.str(e.id)
		h.str(e.content)
	}
	return h.sum()
}

// Completeness weights for populated optional fields.
const (
	weightInstructions      = 3
	weightCautions          = 2
	weightAliases           = 1
	weightSecondaryMuscles  = 1
	weightMedia             = 1
	weightOptionalEquipment = 1
)

// Completeness scores how much optional content a record carries.
// Placeholder-only lists do not count as populated.
func Completeness(ex *catalogs.Exercise) int {
	score := 0
	add := func(list []string, weight int) {
		if !normalize.IsMissing(list) {
			score += weight
		}
	}
	add(ex.Instructions, weightInstructions)
	add(ex.Cautions, weightCautions)
	add(ex.Aliases, weightAliases)
	add(ex.SecondaryMuscles, weightSecondaryMuscles)
	add(ex.Media, weightMedia)
	add(ex.OptionalEquipment, weightOptionalEquipment)
	return score
}

// Stats describes a dedup pass.
type Stats struct {
	Input     int `json:"input" yaml:"input"`
	Unique    int `json:"unique" yaml:"unique"`
	Collapsed int `json:"collapsed" yaml:"collapsed"`
}

// Dedup assigns stable IDs and collapses records that share one. A later
// duplicate replaces the kept record only when its completeness score is
// strictly higher; on a tie the first-seen record stays. Output order is the
// order in which each identity was first seen.
func Dedup(records []catalogs.Exercise) ([]catalogs.Exercise, Stats) {
	out := make([]catalogs.Exercise, 0, len(records))
	index := make(map[string]int, len(records))
	scores := make([]int, 0, len(records))

	for _, rec := range records {
		rec.StableID = StableID(&rec)
		score := Completeness(&rec)
		if at, seen := index[rec.StableID]; seen {
			if score > scores[at] {
				out[at] = rec
				scores[at] = score
			}
			continue
		}
		index[rec.StableID] = len(out)
		out = append(out, rec)
		scores = append(scores, score)
	}

	return out, Stats{
		Input:     len(records),
		Unique:    len(out),
		Collapsed: len(records) - len(out),
	}
}

type hasher struct {
	h hash.Hash
}

func newHasher() *hasher {
	return &hasher{h: sha256.New()}
}

// str writes a length-prefixed string so adjacent fields cannot run together.
func (h *hasher) str(s string) {
	h.h.Write([]byte(strconv.Itoa(len(s))))
	h.h.Write([]byte{':'})
	h.h.Write([]byte(s))
}

func (h *hasher) list(items []string) {
	h.str(strconv.Itoa(len(items)))
	for _, s := range items {
		h.str(s)
	}
}

// set writes items folded, de-duplicated and sorted.
func (h *hasher) set(items []string) {
	folded := make([]string, 0, len(items))
	for _, s := range items {
		if f := fold(s); f != "" {
			folded = append(folded, f)
		}
	}
	slices.Sort(folded)
	h.list(slices.Compact(folded))
}

func (h *hasher) sum() string {
	return hex.EncodeToString(h.h.Sum(nil))
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
