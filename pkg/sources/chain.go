package sources

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/agentstation/liftmap/pkg/constants"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/logging"
)

// Policy bounds the retries of one remote source.
type Policy struct {
	Attempts   int           // Tries per remote source, including the first
	Backoff    time.Duration // Wait before the second try; doubles after each retry
	MaxBackoff time.Duration // Cap on a single wait
}

// DefaultPolicy returns the retry policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:   constants.DefaultRetryAttempts,
		Backoff:    constants.RetryBackoff,
		MaxBackoff: constants.MaxRetryBackoff,
	}
}

func (p Policy) backoff() retry.Backoff {
	base := p.Backoff
	if base <= 0 {
		base = time.Millisecond
	}
	b := retry.NewExponential(base)
	if p.MaxBackoff > 0 {
		b = retry.WithCappedDuration(p.MaxBackoff, b)
	}
	attempts := max(p.Attempts, 1)
	return retry.WithMaxRetries(uint64(attempts-1), b) // #nosec G115 -- attempts is at least 1
}

// AttemptFunc observes every fetch attempt. err is nil on success.
type AttemptFunc func(id ID, attempt int, err error)

// Chain tries sources in order until one yields a payload.
type Chain struct {
	sources   []Source
	policy    Policy
	onAttempt AttemptFunc
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithPolicy sets the retry policy for remote sources.
func WithPolicy(p Policy) ChainOption {
	return func(c *Chain) {
		c.policy = p
	}
}

// WithAttemptObserver registers fn to be called after every attempt.
func WithAttemptObserver(fn AttemptFunc) ChainOption {
	return func(c *Chain) {
		c.onAttempt = fn
	}
}

// NewChain creates a chain over sources in priority order.
func NewChain(sources []Source, opts ...ChainOption) *Chain {
	c := &Chain{sources: sources, policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sources returns the candidates in priority order.
func (c *Chain) Sources() []Source {
	return c.sources
}

// Fetch returns the first payload any source produces. Remote sources are
// retried per the policy when the failure is transient; a permanent failure
// moves straight to the next candidate. Failures of earlier candidates are
// carried as payload warnings. When every candidate fails the error is a
// *errors.SourceUnavailableError listing each attempt.
func (c *Chain) Fetch(ctx context.Context) (*Payload, error) {
	var attempts []errors.SourceAttempt
	for _, src := range c.sources {
		payload, tries := c.fetch(ctx, src)
		if payload != nil {
			for _, a := range attempts {
				payload.Warn(fmt.Sprintf("%s unavailable: %v", a.Source, a.Err))
			}
			return payload, nil
		}
		attempts = append(attempts, tries...)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.NewSourceUnavailableError(attempts)
}

func (c *Chain) fetch(ctx context.Context, src Source) (*Payload, []errors.SourceAttempt) {
	ctx = logging.WithSource(ctx, src.ID().String())
	logger := logging.FromContext(ctx)

	var (
		payload  *Payload
		attempts []errors.SourceAttempt
		n        int
	)

	backoff := retry.WithMaxRetries(0, retry.NewConstant(time.Millisecond))
	if IsRemote(src) {
		backoff = c.policy.backoff()
	}

	_ = retry.Do(ctx, backoff, func(ctx context.Context) error {
		n++
		p, err := src.Fetch(ctx)
		if c.onAttempt != nil {
			c.onAttempt(src.ID(), n, err)
		}
		if err != nil {
			attempts = append(attempts, errors.SourceAttempt{Source: src.ID().String(), Err: err})
			logger.Warn().Err(err).Int("attempt", n).Msg("Source fetch failed")
			if Retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		payload = p
		return nil
	})
	if ctx.Err() != nil && payload == nil && len(attempts) == 0 {
		attempts = append(attempts, errors.SourceAttempt{Source: src.ID().String(), Err: ctx.Err()})
	}
	return payload, attempts
}

// Retryable reports whether a fetch error is transient: network failures,
// 5xx and 429 responses. Parse errors, other HTTP statuses and context
// cancellation are permanent.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var parseErr *errors.ParseError
	if stderrors.As(err, &parseErr) {
		return false
	}
	var ioErr *errors.IOError
	if stderrors.As(err, &ioErr) {
		return false
	}
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return apiErr.StatusCode >= http.StatusInternalServerError || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}
