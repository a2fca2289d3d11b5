// Package daemon assembles the runtime from one config.Config: store,
// backends, orchestrator, recorder, prober and queues, in that order,
// and serves as the portal's Service implementation.
package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"jukebot/internal/config"
	"jukebot/internal/diag"
	"jukebot/internal/extractor"
	"jukebot/internal/httpapi"
	"jukebot/internal/lavalink"
	"jukebot/internal/queue"
	"jukebot/internal/resolver"
	"jukebot/internal/store"
	"jukebot/pkg/types"
)

// serviceName reported on /status.
const serviceName = "jukebot"

// Options wires a Daemon.
type Options struct {
	Config config.Config
	Logger *zerolog.Logger
	// Version baked at build time, echoed on /status.
	Version string
}

// Daemon owns the component graph. It keeps no goroutines of its own;
// lifecycle work happens inside the components.
type Daemon struct {
	cfg     config.Config
	log     zerolog.Logger
	version string
	started time.Time

	store      *store.Store
	client     *lavalink.Client
	supervisor *lavalink.Supervisor
	orch       *resolver.Orchestrator
	recorder   *diag.Recorder
	prober     *diag.Prober
	queues     *queue.Manager

	mu            sync.Mutex
	discordStatus func() types.DiscordStatus
}

// New builds the daemon. Defaults are applied and the config validated
// here, so callers can hand over whatever Load+FromEnv produced. A store
// that fails to open is logged and skipped; the daemon runs stateless.
func New(opts Options) (*Daemon, error) {
	cfg := opts.Config.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("daemon: config: %w", err)
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	d := &Daemon{cfg: cfg, log: log, version: opts.Version, started: time.Now()}

	if cfg.StoreEnabled() {
		st, err := store.Open(cfg.StorePath, &log)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.StorePath).Msg("store open failed, running stateless")
		} else {
			d.store = st
		}
	}

	d.client = lavalink.NewClient(lavalink.ClientConfig{
		BaseURL:  cfg.Lavalink.BaseURL(),
		Password: cfg.Lavalink.Password,
	})
	lava, err := lavalink.NewAdapter(lavalink.AdapterConfig{
		Client: d.client,
		Retry: lavalink.RetryPolicy{
			MaxAttempts: cfg.Lavalink.Retry.MaxAttempts,
			BaseDelay:   ms(cfg.Lavalink.Retry.BaseDelayMS),
			MaxDelay:    ms(cfg.Lavalink.Retry.MaxDelayMS),
		},
		Logger: &log,
	})
	if err != nil {
		d.closeOpened()
		return nil, fmt.Errorf("daemon: lavalink backend: %w", err)
	}
	ytdlp := extractor.New(extractor.Config{
		BinaryPath:  cfg.Extractor.YTDLPPath,
		Slots:       cfg.Extractor.Workers,
		CookiesFile: cfg.Extractor.CookieFile,
		Logger:      &log,
	})

	d.recorder = diag.NewRecorder(0)
	var cacheStore resolver.CacheStore
	if d.store != nil {
		cacheStore = d.store
	}
	orch, err := resolver.New(resolver.Config{
		Primary:    types.BackendID(cfg.Resolver.Primary),
		HedgeDelay: cfg.Resolver.HedgeDelay(),
		Timeout:    cfg.Resolver.Timeout(),
		CacheTTL:   cfg.Resolver.CacheTTL(),
		CacheStore: cacheStore,
		Events: resolver.MultiPublisher(
			resolver.LogPublisher{Log: log},
			httpapi.InflightPublisher{},
		),
		Logger: &log,
	}, resolver.MultiSink(d.recorder, httpapi.MetricsSink{}), lava, ytdlp)
	if err != nil {
		d.closeOpened()
		return nil, fmt.Errorf("daemon: resolver: %w", err)
	}
	d.orch = orch

	if cfg.Lavalink.Autostart {
		d.supervisor = lavalink.NewSupervisor(lavalink.SpawnConfig{
			JarDir:       cfg.Lavalink.JarDir,
			Host:         cfg.Lavalink.Host,
			Port:         cfg.Lavalink.Port,
			Password:     cfg.Lavalink.Password,
			ReadyTimeout: cfg.Lavalink.ReadyTimeout(),
		}, log)
	}

	d.queues = queue.NewManager(0)
	d.prober = diag.NewProber(diag.ProberConfig{
		Client:      d.client,
		YTDLPBinary: cfg.Extractor.YTDLPPath,
		CookieFile:  cfg.Extractor.CookieFile,
		Logger:      &log,
	})
	return d, nil
}

// Start launches the supervised node when autostart is configured and
// blocks until it answers, its ready timeout elapses, or ctx is done.
func (d *Daemon) Start(ctx context.Context) error {
	if d.supervisor == nil {
		return nil
	}
	baseURL, err := d.supervisor.Start(ctx)
	if err != nil {
		return fmt.Errorf("daemon: node autostart: %w", err)
	}
	d.log.Info().Str("node", baseURL).Msg("local node ready")
	return nil
}

// Close stops the supervised node and closes the store. First error wins.
func (d *Daemon) Close() error {
	var firstErr error
	if d.supervisor != nil {
		if err := d.supervisor.Stop(); err != nil {
			firstErr = err
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Resolve runs one hedged resolution. Surfaces that carry per-call
// options (guild overrides) go through Orchestrator instead.
func (d *Daemon) Resolve(ctx context.Context, query string) (types.ResolutionOutcome, error) {
	return d.orch.Resolve(ctx, query)
}

// Recent proxies the outcome recorder, newest first.
func (d *Daemon) Recent(n int) []types.ResolutionOutcome { return d.recorder.Recent(n) }

// Summary aggregates the recorder window.
func (d *Daemon) Summary() types.ResolutionSummary { return d.recorder.Summary() }

// Diagnostics runs the environment prober.
func (d *Daemon) Diagnostics(ctx context.Context) types.DiagnosticsReport {
	return d.prober.Run(ctx)
}

// Ready reports whether resolutions can be served. Without a supervisor
// construction is enough; with one, the node must have come up.
func (d *Daemon) Ready() bool {
	if d.supervisor != nil {
		return d.supervisor.Status().State == lavalink.StateReady
	}
	return true
}

// Status assembles the /status payload.
func (d *Daemon) Status() types.StatusResponse {
	now := time.Now()
	st := types.StatusResponse{
		Service:        serviceName,
		Version:        d.version,
		UptimeSeconds:  int64(now.Sub(d.started).Seconds()),
		ServerTimeUnix: now.Unix(),
		Resolver:       d.orch.Status(),
		Backends:       d.backends(),
		Summary:        d.recorder.Summary(),
	}
	if d.supervisor != nil {
		sup := d.supervisor.Status()
		st.Supervisor = &sup
	}
	d.mu.Lock()
	fn := d.discordStatus
	d.mu.Unlock()
	if fn != nil {
		ds := fn()
		st.Discord = &ds
	}
	return st
}

func (d *Daemon) backends() []types.BackendStatus {
	out := make([]types.BackendStatus, 0, 2)
	for _, id := range d.orch.Backends() {
		switch id {
		case types.BackendLavalink:
			out = append(out, types.BackendStatus{
				ID:     string(id),
				Kind:   "rest",
				Detail: d.client.BaseURL(),
			})
		case types.BackendYTDLP:
			bin := d.cfg.Extractor.YTDLPPath
			if bin == "" {
				bin = "yt-dlp"
			}
			out = append(out, types.BackendStatus{
				ID:     string(id),
				Kind:   "subprocess",
				Detail: bin,
			})
		}
	}
	return out
}

// Orchestrator exposes the resolver for surfaces that pass per-call
// options.
func (d *Daemon) Orchestrator() *resolver.Orchestrator { return d.orch }

// Queues returns the per-guild track queues.
func (d *Daemon) Queues() *queue.Manager { return d.queues }

// Store returns the settings store; nil when persistence is off.
func (d *Daemon) Store() *store.Store { return d.store }

// Prober returns the environment prober.
func (d *Daemon) Prober() *diag.Prober { return d.prober }

// SetDiscordStatus registers the gateway snapshot shown on /status.
func (d *Daemon) SetDiscordStatus(fn func() types.DiscordStatus) {
	d.mu.Lock()
	d.discordStatus = fn
	d.mu.Unlock()
}

func (d *Daemon) closeOpened() {
	if d.store != nil {
		_ = d.store.Close()
	}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
