package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jukebot/pkg/types"
)

// DefaultHedgeDelay is the secondary launch delay config layers apply
// when nothing overrides it. Config.HedgeDelay is used verbatim so an
// explicit 0 keeps its meaning: launch both backends immediately.
const DefaultHedgeDelay = 1500 * time.Millisecond

// Defaults applied when corresponding Config fields are unset.
const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 15 * time.Minute

	// timeoutEpsilon pads the externally observable bound: Resolve
	// returns within Timeout + timeoutEpsilon even when both backends
	// ignore cancellation.
	timeoutEpsilon = 250 * time.Millisecond
)

// Backend resolves a normalized query into playable track metadata.
// Implementations must honor ctx as far as their transport allows;
// cancellation is advisory for subprocess-backed implementations, which
// may leak work after the race is decided.
type Backend interface {
	ID() types.BackendID
	Resolve(ctx context.Context, query string) (types.Track, error)
}

// Config encapsulates all tunables for Orchestrator construction.
// Callers build it explicitly; nothing here is read from the environment.
type Config struct {
	// Primary is launched first; the other registered backend becomes
	// the hedge. Defaults to lavalink when registered, else the first
	// backend given to New.
	Primary types.BackendID
	// HedgeDelay before the secondary launches. 0 launches both
	// immediately; config layers wanting the stock delay use
	// DefaultHedgeDelay.
	HedgeDelay time.Duration
	// Timeout bounds the whole resolution; defaulted when unset.
	Timeout time.Duration
	// CacheTTL bounds source-cache entries; 0 applies the default,
	// negative disables the cache.
	CacheTTL time.Duration
	// CacheStore persists cache entries across restarts (optional).
	CacheStore CacheStore
	// Events receives lifecycle events; nil drops them.
	Events EventPublisher
	// Logger is used for construction and cache-persistence warnings
	// only; nil is silent. The event stream is the observability surface.
	Logger *zerolog.Logger
	// Clock is a test seam; nil uses time.Now.
	Clock func() time.Time
}

// Orchestrator races a primary and a hedged secondary backend per call.
type Orchestrator struct {
	byID      map[types.BackendID]Backend
	order     []types.BackendID
	primaryID types.BackendID
	hedge     time.Duration
	timeout   time.Duration
	cacheTTL  time.Duration
	cache     *sourceCache
	store     CacheStore
	events    EventPublisher
	log       zerolog.Logger
	sink      OutcomeSink
	clock     func() time.Time
}

// New constructs an Orchestrator over the given backends. One or two
// distinct backends are supported; duplicate ids degrade to
// single-backend mode with a warning.
func New(cfg Config, sink OutcomeSink, backends ...Backend) (*Orchestrator, error) {
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	o := &Orchestrator{
		byID:   make(map[types.BackendID]Backend, len(backends)),
		hedge:  cfg.HedgeDelay,
		store:  cfg.CacheStore,
		events: cfg.Events,
		log:    log,
		sink:   sink,
		clock:  cfg.Clock,
	}
	if o.hedge < 0 {
		o.hedge = 0
	}
	if o.sink == nil {
		o.sink = noopSink{}
	}
	if o.events == nil {
		o.events = noopPublisher{}
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	for _, b := range backends {
		if b == nil {
			continue
		}
		if _, dup := o.byID[b.ID()]; dup {
			o.log.Warn().Str("backend", string(b.ID())).Msg("duplicate backend id, degrading to single-backend mode")
			continue
		}
		o.byID[b.ID()] = b
		o.order = append(o.order, b.ID())
	}
	if len(o.order) == 0 {
		return nil, fmt.Errorf("resolver: at least one backend required")
	}
	o.primaryID = cfg.Primary
	if o.primaryID == "" {
		if _, ok := o.byID[types.BackendLavalink]; ok {
			o.primaryID = types.BackendLavalink
		} else {
			o.primaryID = o.order[0]
		}
	}
	if _, ok := o.byID[o.primaryID]; !ok {
		return nil, fmt.Errorf("resolver: primary backend %q not registered", o.primaryID)
	}
	o.timeout = cfg.Timeout
	if o.timeout <= 0 {
		o.timeout = defaultTimeout
	}
	o.cacheTTL = cfg.CacheTTL
	if o.cacheTTL == 0 {
		o.cacheTTL = defaultCacheTTL
	}
	if o.cacheTTL > 0 {
		o.cache = newSourceCache(o.cacheTTL, o.clock)
		if o.store != nil {
			seed, err := o.store.LoadSourceCache()
			if err != nil {
				o.log.Warn().Err(err).Msg("source cache load failed")
			} else {
				o.cache.seed(seed)
			}
		}
	}
	return o, nil
}

// Option adjusts a single Resolve call, e.g. per-guild overrides.
type Option func(*callConfig)

type callConfig struct {
	primary    types.BackendID
	primarySet bool
	hedge      time.Duration
	timeout    time.Duration
}

// WithPrimary overrides the primary backend for one call. Unregistered
// ids are ignored. An explicit primary also disables cache pinning.
func WithPrimary(id types.BackendID) Option {
	return func(cc *callConfig) {
		if id != "" {
			cc.primary = id
			cc.primarySet = true
		}
	}
}

// WithHedgeDelay overrides the hedge delay for one call; negative values
// clamp to 0 (launch both immediately).
func WithHedgeDelay(d time.Duration) Option {
	return func(cc *callConfig) {
		if d < 0 {
			d = 0
		}
		cc.hedge = d
	}
}

// WithTimeout overrides the overall deadline for one call.
func WithTimeout(d time.Duration) Option {
	return func(cc *callConfig) {
		if d > 0 {
			cc.timeout = d
		}
	}
}

type attemptResult struct {
	id    types.BackendID
	track types.Track
	err   error
	took  time.Duration
}

type launchRec struct {
	id     types.BackendID
	offset time.Duration
}

// resolution carries one call's race state.
type resolution struct {
	o         *Orchestrator
	out       types.ResolutionOutcome
	start     time.Time
	query     string
	primary   Backend
	secondary Backend
	launches  []launchRec
	primRes   *attemptResult
	secRes    *attemptResult
}

// Resolve races the backends for rawQuery. The returned outcome is the
// same record delivered to the sink; on success Outcome.Track is set, on
// failure the error carries the taxonomy kind. Exactly one outcome is
// emitted per call, whatever the path.
func (o *Orchestrator) Resolve(ctx context.Context, rawQuery string, opts ...Option) (types.ResolutionOutcome, error) {
	cc := callConfig{primary: o.primaryID, hedge: o.hedge, timeout: o.timeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cc)
		}
	}
	if _, ok := o.byID[cc.primary]; !ok {
		cc.primary = o.primaryID
	}

	r := &resolution{o: o, start: o.clock()}
	r.out.ID = uuid.NewString()
	r.out.StartedAtUnixMS = r.start.UnixMilli()
	r.query = NormalizeQuery(rawQuery)
	r.out.Query = r.query

	// Published before the short-circuit checks so every call emits a
	// matched start/done pair.
	o.publish(Event{Name: EventResolveStart, RequestID: r.out.ID, Fields: map[string]any{
		"query":   r.query,
		"primary": string(cc.primary),
	}})

	if r.query == "" {
		return r.finish(ErrNoMatch("", rawQuery))
	}
	if err := ctx.Err(); err != nil {
		return r.finish(ErrTimeout("resolve", 0, err))
	}

	if o.cache != nil && !cc.primarySet {
		if winner, ok := o.cache.get(r.query); ok {
			if _, reg := o.byID[winner]; reg && winner != cc.primary {
				cc.primary = winner
				r.out.CachePinned = true
			}
		}
	}
	r.primary = o.byID[cc.primary]
	r.secondary = o.byID[cc.primary.Other()] // nil in single-backend mode

	return r.run(ctx, cc)
}

func (r *resolution) run(ctx context.Context, cc callConfig) (types.ResolutionOutcome, error) {
	raceCtx, cancelRace := context.WithTimeout(ctx, cc.timeout)
	defer cancelRace()
	primCtx, cancelPrim := context.WithCancel(raceCtx)
	defer cancelPrim()
	secCtx, cancelSec := context.WithCancel(raceCtx)
	defer cancelSec()

	primCh := r.launch(primCtx, r.primary)

	var secCh chan attemptResult
	var hedgeC <-chan time.Time
	if r.secondary != nil {
		if cc.hedge <= 0 {
			secCh = r.launchHedge(secCtx, "immediate")
		} else {
			hedgeTimer := time.NewTimer(cc.hedge)
			defer hedgeTimer.Stop()
			hedgeC = hedgeTimer.C
		}
	}

	for {
		// Collect results that are already queued, primary first, so
		// simultaneous successes settle in the primary's favor.
		if primCh != nil {
			select {
			case res := <-primCh:
				r.primRes = &res
				primCh = nil
			default:
			}
		}
		if secCh != nil {
			select {
			case res := <-secCh:
				r.secRes = &res
				secCh = nil
			default:
			}
		}

		if res, ok := r.pickWinner(); ok {
			if res.id == r.primary.ID() {
				cancelSec()
			} else {
				cancelPrim()
			}
			return r.win(*res)
		}
		// Fail fast: a failed primary launches the hedge ahead of its timer.
		if r.primRes != nil && r.secondary != nil && !r.out.HedgeLaunched {
			hedgeC = nil
			secCh = r.launchHedge(secCtx, "primary_failed")
		}
		if r.primRes != nil && (r.secondary == nil || r.secRes != nil) {
			return r.finish(r.bothFailed())
		}

		select {
		case res := <-primCh:
			r.primRes = &res
			primCh = nil
		case res := <-secCh:
			r.secRes = &res
			secCh = nil
		case <-hedgeC:
			hedgeC = nil
			secCh = r.launchHedge(secCtx, "timer")
		case <-raceCtx.Done():
			// One last non-blocking look: a success may have landed the
			// instant the deadline fired.
			if primCh != nil {
				select {
				case res := <-primCh:
					r.primRes = &res
					primCh = nil
				default:
				}
			}
			if secCh != nil {
				select {
				case res := <-secCh:
					r.secRes = &res
					secCh = nil
				default:
				}
			}
			if res, ok := r.pickWinner(); ok {
				if res.id == r.primary.ID() {
					cancelSec()
				} else {
					cancelPrim()
				}
				return r.win(*res)
			}
			elapsed := r.o.clock().Sub(r.start)
			return r.finish(ErrTimeout("resolve", elapsed, raceCtx.Err()))
		}
	}
}

// launch starts one backend attempt and returns its single-result channel.
func (r *resolution) launch(ctx context.Context, b Backend) chan attemptResult {
	offset := r.o.clock().Sub(r.start)
	r.launches = append(r.launches, launchRec{id: b.ID(), offset: offset})
	r.o.publish(Event{Name: EventBackendLaunch, RequestID: r.out.ID, Fields: map[string]any{
		"backend":   string(b.ID()),
		"offset_ms": offset.Milliseconds(),
	}})
	ch := make(chan attemptResult, 1)
	go func() {
		began := r.o.clock()
		track, err := b.Resolve(ctx, r.query)
		res := attemptResult{id: b.ID(), track: track, err: err, took: r.o.clock().Sub(began)}
		fields := map[string]any{"backend": string(b.ID()), "took_ms": res.took.Milliseconds()}
		if err != nil {
			fields["err"] = err.Error()
		}
		r.o.publish(Event{Name: EventBackendResult, RequestID: r.out.ID, Fields: fields})
		ch <- res
	}()
	return ch
}

func (r *resolution) launchHedge(ctx context.Context, reason string) chan attemptResult {
	r.out.HedgeLaunched = true
	r.o.publish(Event{Name: EventHedgeLaunch, RequestID: r.out.ID, Fields: map[string]any{
		"backend": string(r.secondary.ID()),
		"reason":  reason,
	}})
	return r.launch(ctx, r.secondary)
}

// pickWinner applies the tie rule: a successful primary wins even when
// the secondary also succeeded in the same round.
func (r *resolution) pickWinner() (*attemptResult, bool) {
	if r.primRes != nil && r.primRes.err == nil {
		return r.primRes, true
	}
	if r.secRes != nil && r.secRes.err == nil {
		return r.secRes, true
	}
	return nil, false
}

// bothFailed composes the terminal error once every launched backend has
// failed. The primary's classification wins.
func (r *resolution) bothFailed() error {
	if r.secRes == nil {
		return r.primRes.err
	}
	return fmt.Errorf("all backends failed: %w; %v", r.primRes.err, r.secRes.err)
}

func (r *resolution) win(res attemptResult) (types.ResolutionOutcome, error) {
	track := res.track
	track.ResolvedBy = res.id
	r.out.Winner = res.id
	r.out.Track = &track
	if r.secondary != nil && !r.out.HedgeLaunched {
		r.out.HedgeSuppressed = true
		r.o.publish(Event{Name: EventHedgeSuppressed, RequestID: r.out.ID, Fields: map[string]any{
			"winner": string(res.id),
		}})
	}
	if r.o.cache != nil {
		r.o.cache.put(r.query, res.id)
		if r.o.store != nil {
			if err := r.o.store.SaveSourceCacheEntry(r.query, res.id); err != nil {
				r.o.log.Warn().Err(err).Msg("source cache persist failed")
			}
		}
	}
	return r.finish(nil)
}

// finish stamps the outcome, emits it exactly once, and returns it
// alongside err.
func (r *resolution) finish(err error) (types.ResolutionOutcome, error) {
	now := r.o.clock()
	r.out.DurationMS = now.Sub(r.start).Milliseconds()
	if err != nil {
		r.out.ErrKind = KindOf(err)
		r.out.Err = err.Error()
	}
	r.out.Attempts = r.buildAttempts(now)
	r.o.publish(Event{Name: EventResolveDone, RequestID: r.out.ID, Fields: map[string]any{
		"winner":      string(r.out.Winner),
		"err_kind":    string(r.out.ErrKind),
		"duration_ms": r.out.DurationMS,
		"hedged":      r.out.HedgeLaunched,
	}})
	r.o.sink.Record(r.out)
	return r.out, err
}

func (r *resolution) buildAttempts(now time.Time) []types.BackendAttempt {
	atts := make([]types.BackendAttempt, 0, len(r.launches))
	for _, l := range r.launches {
		a := types.BackendAttempt{Backend: l.id, StartOffsetMS: l.offset.Milliseconds()}
		var res *attemptResult
		switch {
		case r.primRes != nil && r.primRes.id == l.id:
			res = r.primRes
		case r.secRes != nil && r.secRes.id == l.id:
			res = r.secRes
		}
		if res != nil {
			a.DurationMS = res.took.Milliseconds()
			if res.err != nil {
				a.Err = res.err.Error()
				a.ErrKind = KindOf(res.err)
			}
		} else {
			// abandoned: ran from launch until the race was decided
			d := now.Sub(r.start) - l.offset
			if d < 0 {
				d = 0
			}
			a.DurationMS = d.Milliseconds()
		}
		atts = append(atts, a)
	}
	return atts
}

// Status reports the effective configuration for /status.
func (o *Orchestrator) Status() types.ResolverStatus {
	st := types.ResolverStatus{
		Primary:      string(o.primaryID),
		HedgeDelayMS: o.hedge.Milliseconds(),
		TimeoutMS:    o.timeout.Milliseconds(),
	}
	if o.cache != nil {
		st.CacheTTLMS = o.cacheTTL.Milliseconds()
		st.CacheEntries = o.cache.len()
	}
	return st
}

// Backends lists the registered backend ids, primary first.
func (o *Orchestrator) Backends() []types.BackendID {
	ids := make([]types.BackendID, 0, len(o.order))
	ids = append(ids, o.primaryID)
	for _, id := range o.order {
		if id != o.primaryID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (o *Orchestrator) publish(e Event) { o.events.Publish(e) }
