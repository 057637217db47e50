// Package sources retrieves raw exercise payloads.
//
// A Source returns one Payload: the raw exercise objects of a document plus
// any warnings raised while reading it. A Chain tries an ordered list of
// sources, retrying remote ones with exponential backoff, and returns the
// first payload that could be read.
//
// Example usage:
//
//	chain := sources.NewChain(
//	    []sources.Source{
//	        sources.NewHTTPSource(sources.PrimaryID, constants.PrimaryCatalogURL),
//	        sources.NewHTTPSource(sources.FallbackID, constants.FallbackCatalogURL),
//	        sources.NewEmbeddedSource(sources.EmbeddedID, embedded.Payload()),
//	    },
//	)
//	payload, err := chain.Fetch(ctx)
//	if err != nil {
//	    // every candidate failed; err is a *errors.SourceUnavailableError
//	}
package sources

import (
	"context"
	"time"

	"github.com/tidwall/gjson"
)

// ID identifies a source.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Well known source IDs.
const (
	PrimaryID  ID = "primary"
	FallbackID ID = "fallback"
	EmbeddedID ID = "embedded"
	FileID     ID = "file"
	StarterID  ID = "starter"
)

// Source produces a raw exercise payload.
type Source interface {
	// ID returns the identifier of this source.
	ID() ID

	// Fetch retrieves and parses the source document.
	Fetch(ctx context.Context) (*Payload, error)
}

// Remote is implemented by sources that go over the network. The chain
// retries only remote sources.
type Remote interface {
	Remote() bool
}

// IsRemote reports whether src should be retried.
func IsRemote(src Source) bool {
	r, ok := src.(Remote)
	return ok && r.Remote()
}

// Payload is a parsed source document.
type Payload struct {
	Source      ID             `json:"source"`
	Location    string         `json:"location,omitempty"`
	ContentType string         `json:"content_type,omitempty"`
	Records     []gjson.Result `json:"-"`
	Warnings    []string       `json:"warnings,omitempty"`
	FetchedAt   time.Time      `json:"fetched_at"`
	Cached      bool           `json:"cached,omitempty"`
}

// Len returns the number of raw records.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Records)
}

// Warn appends a warning.
func (p *Payload) Warn(msg string) {
	p.Warnings = append(p.Warnings, msg)
}
