package liftmap

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/liftmap/internal/embedded"
	"github.com/agentstation/liftmap/internal/metrics"
	"github.com/agentstation/liftmap/pkg/constants"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/linker"
	"github.com/agentstation/liftmap/pkg/sources"
	"github.com/agentstation/liftmap/pkg/store"
	"github.com/agentstation/utc"
)

// options holds the client configuration.
type options struct {
	store          store.Store
	sources        []sources.Source
	policy         sources.Policy
	starter        sources.Source
	minCount       int
	batchSize      int
	catalogVersion string
	linkerOptions  []linker.Option
	metrics        *metrics.Recorder
	logger         *zerolog.Logger
	now            func() utc.Time
	newID          func() string
}

// Option configures a Client.
type Option func(*options) error

func defaults() *options {
	return &options{
		policy:         sources.DefaultPolicy(),
		starter:        sources.NewEmbeddedYAMLSource(sources.StarterID, embedded.Starter()),
		minCount:       constants.DefaultMinCount,
		batchSize:      constants.DefaultBatchSize,
		catalogVersion: constants.CatalogVersion,
		now:            utc.Now,
		newID:          uuid.NewString,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.store == nil {
		return nil, errors.NewConfigError("client", "a store is required", nil)
	}
	if o.sources == nil {
		o.sources = DefaultSources()
	}
	return o, nil
}

// DefaultSources returns the standard retrieval chain: the primary catalog
// document, its minified mirror, then the payload bundled with the binary.
func DefaultSources(opts ...sources.HTTPOption) []sources.Source {
	return []sources.Source{
		sources.NewHTTPSource(sources.PrimaryID, constants.PrimaryCatalogURL, opts...),
		sources.NewHTTPSource(sources.FallbackID, constants.FallbackCatalogURL, opts...),
		sources.NewEmbeddedSource(sources.EmbeddedID, embedded.Payload()),
	}
}

// WithStore sets the catalog store. It is required.
func WithStore(s store.Store) Option {
	return func(o *options) error {
		o.store = s
		return nil
	}
}

// WithSources replaces the retrieval chain. Sources are tried in order.
func WithSources(srcs ...sources.Source) Option {
	return func(o *options) error {
		if len(srcs) == 0 {
			return errors.NewConfigError("client", "at least one source is required", nil)
		}
		o.sources = srcs
		return nil
	}
}

// WithRetryPolicy sets the retry policy for remote sources.
func WithRetryPolicy(p sources.Policy) Option {
	return func(o *options) error {
		if p.Attempts < 1 {
			return &errors.ValidationError{Field: "Attempts", Value: p.Attempts, Message: "must be at least 1"}
		}
		o.policy = p
		return nil
	}
}

// WithStarter sets the source of the starter catalog.
func WithStarter(src sources.Source) Option {
	return func(o *options) error {
		o.starter = src
		return nil
	}
}

// WithMinCount sets the smallest payload the validation gate accepts.
func WithMinCount(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{Field: "MinCount", Value: n, Message: "must be non-negative"}
		}
		o.minCount = n
		return nil
	}
}

// WithBatchSize bounds the number of records written per batch.
func WithBatchSize(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{Field: "BatchSize", Value: n, Message: "must be positive"}
		}
		o.batchSize = n
		return nil
	}
}

// WithCatalogVersion overrides the catalog version seeding compares against.
func WithCatalogVersion(v string) Option {
	return func(o *options) error {
		o.catalogVersion = v
		return nil
	}
}

// WithLinkerOptions configures the relationship linker.
func WithLinkerOptions(opts ...linker.Option) Option {
	return func(o *options) error {
		o.linkerOptions = append(o.linkerOptions, opts...)
		return nil
	}
}

// WithMetrics records run metrics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) error {
		o.metrics = r
		return nil
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithClock sets the time source for record and audit timestamps.
func WithClock(now func() utc.Time) Option {
	return func(o *options) error {
		if now == nil {
			return errors.NewConfigError("client", "clock must not be nil", nil)
		}
		o.now = now
		return nil
	}
}

// WithIDGenerator sets the primary key generator for new exercises.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) error {
		if newID == nil {
			return errors.NewConfigError("client", "id generator must not be nil", nil)
		}
		o.newID = newID
		return nil
	}
}
