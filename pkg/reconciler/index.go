package reconciler

import (
	"github.com/agentstation/liftmap/pkg/catalogs"
)

// MatchKind names the key that paired an incoming record with a stored one.
type MatchKind string

// Match kinds in priority order.
const (
	MatchNone       MatchKind = ""
	MatchStableID   MatchKind = "stable_id"
	MatchExternalID MatchKind = "external_id"
	MatchSlug       MatchKind = "slug"
)

// Index looks up stored exercises by identity and fallback keys.
type Index struct {
	all        []*catalogs.Exercise
	byStableID map[string]*catalogs.Exercise
	byExternal map[string]*catalogs.Exercise
	bySlug     map[string]*catalogs.Exercise
}

// NewIndex indexes records. On key collisions the first record wins.
func NewIndex(records []catalogs.Exercise) *Index {
	ix := &Index{
		all:        make([]*catalogs.Exercise, 0, len(records)),
		byStableID: make(map[string]*catalogs.Exercise, len(records)),
		byExternal: make(map[string]*catalogs.Exercise, len(records)),
		bySlug:     make(map[string]*catalogs.Exercise, len(records)),
	}
	for i := range records {
		rec := &records[i]
		ix.all = append(ix.all, rec)
		putFirst(ix.byStableID, rec.StableID, rec)
		if rec.ExternalID != "" {
			putFirst(ix.byExternal, externalKey(rec.SourceKey, rec.ExternalID), rec)
			putFirst(ix.byExternal, externalKey("", rec.ExternalID), rec)
		}
		putFirst(ix.bySlug, rec.Slug, rec)
	}
	return ix
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.all)
}

// All returns every indexed record in input order.
func (ix *Index) All() []*catalogs.Exercise {
	return ix.all
}

// ByStableID returns the record with the given stable ID.
func (ix *Index) ByStableID(id string) (*catalogs.Exercise, bool) {
	rec, ok := ix.byStableID[id]
	return rec, ok
}

// Match finds the stored counterpart of ex: by stable ID, then when
// fallback is set by source key and external ID, by external ID alone, and
// finally by slug.
func (ix *Index) Match(ex *catalogs.Exercise, fallback bool) (*catalogs.Exercise, MatchKind) {
	if rec, ok := ix.byStableID[ex.StableID]; ok && ex.StableID != "" {
		return rec, MatchStableID
	}
	if !fallback {
		return nil, MatchNone
	}
	if ex.ExternalID != "" {
		if rec, ok := ix.byExternal[externalKey(ex.SourceKey, ex.ExternalID)]; ok {
			return rec, MatchExternalID
		}
		if rec, ok := ix.byExternal[externalKey("", ex.ExternalID)]; ok {
			return rec, MatchExternalID
		}
	}
	if rec, ok := ix.bySlug[ex.Slug]; ok && ex.Slug != "" {
		return rec, MatchSlug
	}
	return nil, MatchNone
}

func externalKey(sourceKey, externalID string) string {
	return sourceKey + "\x00" + externalID
}

func putFirst(m map[string]*catalogs.Exercise, key string, rec *catalogs.Exercise) {
	if key == "" {
		return
	}
	if _, exists := m[key]; !exists {
		m[key] = rec
	}
}
