package diag

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jukebot/internal/extractor"
	"jukebot/internal/lavalink"
	"jukebot/pkg/types"
)

// defaultProbeBudget bounds each external check.
const defaultProbeBudget = 5 * time.Second

// youtubePluginName is the node plugin that keeps YouTube resolution
// working after lavaplayer dropped its built-in support.
const youtubePluginName = "dev.lavalink.youtube"

// ProberConfig wires the environment probe.
type ProberConfig struct {
	// Client for the node; nil skips node checks.
	Client *lavalink.Client
	// YTDLPBinary to probe; empty uses the configured default.
	YTDLPBinary string
	// CookieFile to stat for age reporting (optional).
	CookieFile string
	// Budget per external check; defaulted when unset.
	Budget time.Duration
	Logger *zerolog.Logger
}

// Prober runs on-demand environment diagnostics: node reachability and
// plugin inventory, yt-dlp presence, cookie freshness.
type Prober struct {
	client  *lavalink.Client
	ytdlp   string
	cookies string
	budget  time.Duration
	log     zerolog.Logger
}

// NewProber constructs a Prober.
func NewProber(cfg ProberConfig) *Prober {
	budget := cfg.Budget
	if budget <= 0 {
		budget = defaultProbeBudget
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Prober{
		client:  cfg.Client,
		ytdlp:   cfg.YTDLPBinary,
		cookies: cfg.CookieFile,
		budget:  budget,
		log:     log,
	}
}

// Run executes all checks and returns the report. Individual check
// failures land in the report, not in an error.
func (p *Prober) Run(ctx context.Context) types.DiagnosticsReport {
	report := types.DiagnosticsReport{CheckedAtUnix: time.Now().Unix()}
	p.probeNode(ctx, &report)
	p.probeYTDLP(ctx, &report)
	p.probeCookies(&report)
	report.Healthy = report.NodeReachable || report.YTDLPPresent
	p.log.Debug().Bool("healthy", report.Healthy).Msg("diagnostics probe done")
	return report
}

func (p *Prober) probeNode(ctx context.Context, report *types.DiagnosticsReport) {
	if p.client == nil {
		report.NodeError = "node not configured"
		return
	}
	nodeCtx, cancel := context.WithTimeout(ctx, p.budget)
	defer cancel()

	started := time.Now()
	version, err := p.client.Version(nodeCtx)
	if err != nil {
		report.NodeError = err.Error()
		return
	}
	report.NodeReachable = true
	report.NodeVersion = version
	report.NodeLatencyMS = time.Since(started).Milliseconds()

	if info, err := p.client.NodeInfo(nodeCtx); err == nil {
		for _, plugin := range info.Plugins {
			report.Plugins = append(report.Plugins, types.PluginInfo{Name: plugin.Name, Version: plugin.Version})
			if plugin.Name == youtubePluginName || strings.Contains(strings.ToLower(plugin.Name), "youtube") {
				report.YouTubePlugin = plugin.Name + "@" + plugin.Version
			}
		}
	}
	if stats, err := p.client.NodeStats(nodeCtx); err == nil {
		report.NodePlayers = stats.Players
		report.NodeUptimeMS = stats.UptimeMS
	}
}

func (p *Prober) probeYTDLP(ctx context.Context, report *types.DiagnosticsReport) {
	probeCtx, cancel := context.WithTimeout(ctx, p.budget)
	defer cancel()
	version, err := extractor.Version(probeCtx, p.ytdlp)
	if err != nil {
		report.YTDLPError = err.Error()
		return
	}
	report.YTDLPPresent = true
	report.YTDLPVersion = version
}

func (p *Prober) probeCookies(report *types.DiagnosticsReport) {
	if p.cookies == "" {
		return
	}
	report.CookieFile = p.cookies
	info, err := os.Stat(p.cookies)
	if err != nil {
		report.CookieAgeSeconds = -1
		return
	}
	report.CookieAgeSeconds = int64(time.Since(info.ModTime()).Seconds())
}
