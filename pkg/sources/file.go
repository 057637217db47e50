package sources

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/agentstation/liftmap/pkg/errors"
)

// FileSource reads a JSON or YAML document from disk.
type FileSource struct {
	id     ID
	path   string
	format Format
}

// NewFileSource creates a source for path. The format follows the extension.
func NewFileSource(id ID, path string) *FileSource {
	return &FileSource{id: id, path: path, format: FormatFromPath(path)}
}

// ID returns the source ID.
func (s *FileSource) ID() ID { return s.id }

// Fetch reads and parses the file.
func (s *FileSource) Fetch(ctx context.Context) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}
	records, warnings, err := Parse(body, s.format)
	if err != nil {
		if pe, ok := err.(*errors.ParseError); ok {
			pe.File = s.path
		}
		return nil, err
	}

	p := &Payload{Source: s.id, Location: s.path, Records: records, FetchedAt: time.Now()}
	for _, w := range warnings {
		p.Warn(fmt.Sprintf("%s: %s", s.id, w))
	}
	return p, nil
}

// EmbeddedSource serves a document compiled into the binary.
type EmbeddedSource struct {
	id     ID
	body   []byte
	format Format
}

// NewEmbeddedSource creates a source over a JSON document.
func NewEmbeddedSource(id ID, body []byte) *EmbeddedSource {
	return &EmbeddedSource{id: id, body: body, format: FormatJSON}
}

// NewEmbeddedYAMLSource creates a source over a YAML document.
func NewEmbeddedYAMLSource(id ID, body []byte) *EmbeddedSource {
	return &EmbeddedSource{id: id, body: body, format: FormatYAML}
}

// ID returns the source ID.
func (s *EmbeddedSource) ID() ID { return s.id }

// Fetch parses the embedded document.
func (s *EmbeddedSource) Fetch(ctx context.Context) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, warnings, err := Parse(s.body, s.format)
	if err != nil {
		return nil, err
	}
	p := &Payload{Source: s.id, Location: "embedded", Records: records, FetchedAt: time.Now()}
	for _, w := range warnings {
		p.Warn(fmt.Sprintf("%s: %s", s.id, w))
	}
	return p, nil
}
