package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/agentstation/liftmap/internal/cache"
	"github.com/agentstation/liftmap/pkg/constants"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/logging"
)

// HTTPSource fetches a JSON document over HTTP.
type HTTPSource struct {
	id     ID
	url    string
	client *resty.Client
	cache  *cache.Cache
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithClient uses a preconfigured resty client.
func WithClient(client *resty.Client) HTTPOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if timeout > 0 {
			s.client.SetTimeout(timeout)
		}
	}
}

// WithCache serves repeated fetches of the same URL from c until the entry expires.
func WithCache(c *cache.Cache) HTTPOption {
	return func(s *HTTPSource) {
		s.cache = c
	}
}

// NewHTTPSource creates a source for url.
func NewHTTPSource(id ID, url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		id:  id,
		url: url,
		client: resty.New().
			SetTimeout(constants.DefaultHTTPTimeout).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", constants.UserAgent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the source ID.
func (s *HTTPSource) ID() ID { return s.id }

// Remote reports true; HTTP sources are retried.
func (s *HTTPSource) Remote() bool { return true }

// URL returns the document URL.
func (s *HTTPSource) URL() string { return s.url }

// Fetch downloads and parses the document.
func (s *HTTPSource) Fetch(ctx context.Context) (*Payload, error) {
	logger := logging.FromContext(ctx)

	if s.cache != nil {
		if entry, ok := s.cache.Get(s.url); ok {
			logger.Debug().Str("url", s.url).Msg("Serving payload from cache")
			p, err := s.payload(entry.Body, entry.ContentType, entry.FetchedAt)
			if err == nil {
				p.Cached = true
			}
			return p, err
		}
	}

	resp, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, &errors.APIError{
			Source:   s.id.String(),
			Endpoint: s.url,
			Message:  "request failed",
			Err:      err,
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &errors.APIError{
			Source:     s.id.String(),
			StatusCode: resp.StatusCode(),
			Endpoint:   s.url,
			Message:    truncate(resp.String(), 200),
		}
	}

	contentType := resp.Header().Get("Content-Type")
	fetchedAt := time.Now()
	p, err := s.payload(resp.Body(), contentType, fetchedAt)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(s.url, cache.Entry{Body: resp.Body(), ContentType: contentType, FetchedAt: fetchedAt})
	}

	logger.Debug().
		Int("records", p.Len()).
		Dur("duration", resp.Time()).
		Msg("Fetched remote payload")
	return p, nil
}

func (s *HTTPSource) payload(body []byte, contentType string, fetchedAt time.Time) (*Payload, error) {
	records, warnings, err := Parse(body, FormatJSON)
	if err != nil {
		if pe, ok := err.(*errors.ParseError); ok {
			pe.File = s.url
		}
		return nil, err
	}
	p := &Payload{
		Source:      s.id,
		Location:    s.url,
		ContentType: contentType,
		Records:     records,
		FetchedAt:   fetchedAt,
	}
	if !strings.Contains(strings.ToLower(contentType), "json") {
		p.Warn(fmt.Sprintf("%s: unexpected content type %q", s.id, contentType))
	}
	for _, w := range warnings {
		p.Warn(fmt.Sprintf("%s: %s", s.id, w))
	}
	return p, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
