package lavalink

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"jukebot/internal/resolver"
	"jukebot/pkg/types"
)

// RetryPolicy bounds the adapter's retries against a flaky node.
type RetryPolicy struct {
	// MaxAttempts including the first; defaulted when unset.
	MaxAttempts int
	// BaseDelay before the second attempt, doubling per retry.
	BaseDelay time.Duration
	// MaxDelay caps the doubling.
	MaxDelay time.Duration
}

// Defaults applied when corresponding RetryPolicy fields are unset.
const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 4 * time.Second
)

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	return p
}

// delay returns the backoff before attempt n (0-based second attempt = 0).
func (p RetryPolicy) delay(n int) time.Duration {
	d := p.BaseDelay << uint(n)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	return d
}

// AdapterConfig wires an Adapter.
type AdapterConfig struct {
	Client *Client
	Retry  RetryPolicy
	// RequestTimeout per node request; falls back to the client's budget.
	RequestTimeout time.Duration
	Logger         *zerolog.Logger
}

// Adapter resolves queries through a Lavalink node, retrying transient
// failures with bounded exponential backoff.
type Adapter struct {
	client     *Client
	retry      RetryPolicy
	reqTimeout time.Duration
	log        zerolog.Logger
}

// NewAdapter constructs the lavalink resolver backend.
func NewAdapter(cfg AdapterConfig) (*Adapter, error) {
	if cfg.Client == nil {
		return nil, errors.New("lavalink: client required")
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	reqTimeout := cfg.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = cfg.Client.RequestTimeout()
	}
	return &Adapter{
		client:     cfg.Client,
		retry:      cfg.Retry.withDefaults(),
		reqTimeout: reqTimeout,
		log:        log,
	}, nil
}

func (a *Adapter) ID() types.BackendID { return types.BackendLavalink }

// Resolve loads the query's tracks from the node and returns the selected
// one. Retryable failures are re-attempted until the policy or ctx runs
// out; the last failure is returned.
func (a *Adapter) Resolve(ctx context.Context, query string) (types.Track, error) {
	var lastErr error
	for attempt := 0; attempt < a.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			d := a.retry.delay(attempt - 1)
			a.log.Debug().Int("attempt", attempt+1).Dur("backoff", d).Msg("lavalink retry")
			timer := time.NewTimer(d)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return types.Track{}, lastErr
			}
		}
		loaded, err := a.loadOnce(ctx, query)
		if err == nil {
			return trackFromNode(loaded.Selected()), nil
		}
		lastErr = err
		if ctx.Err() != nil || !resolver.Retryable(err) {
			break
		}
	}
	return types.Track{}, lastErr
}

// loadOnce performs a single loadtracks call under the per-request budget.
// A blown budget converts to a retryable availability error as long as
// the caller's ctx is still alive.
func (a *Adapter) loadOnce(ctx context.Context, query string) (Loaded, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.reqTimeout)
	defer cancel()
	loaded, err := a.client.LoadTracks(reqCtx, query)
	if err != nil && ctx.Err() == nil && resolver.IsTimeout(err) {
		err = resolver.ErrBackendUnavailable(types.BackendLavalink,
			errors.New("node response exceeded the request budget"))
	}
	return loaded, err
}

// trackFromNode converts the node's track shape into the domain's.
func trackFromNode(t Track) types.Track {
	return types.Track{
		Identifier: t.Info.Identifier,
		Title:      t.Info.Title,
		Author:     t.Info.Author,
		DurationMS: t.Info.Length,
		URI:        t.Info.URI,
		Source:     t.Info.SourceName,
		ArtworkURL: t.Info.ArtworkURL,
		IsStream:   t.Info.IsStream,
		Encoded:    t.Encoded,
	}
}
