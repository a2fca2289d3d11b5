package types

// ResolveRequest is the payload for POST /v1/resolve.
type ResolveRequest struct {
	// Query to resolve: a URL or free-text search.
	// example: never gonna give you up
	Query string `json:"query" example:"never gonna give you up"`
}

// ResolveResponse wraps the outcome of an ad-hoc resolution probe.
type ResolveResponse struct {
	// Full outcome record, including the resolved track on success.
	Outcome ResolutionOutcome `json:"outcome"`
}

// RecentResponse is returned by GET /v1/resolutions/recent.
type RecentResponse struct {
	// Outcomes newest first.
	Outcomes []ResolutionOutcome `json:"outcomes"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: no tracks matched the query
	Error string `json:"error" example:"no tracks matched the query"`
	// Failure classification, when the error came out of a resolution.
	// example: no_match
	Kind string `json:"kind,omitempty" example:"no_match"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
	// Request id from the middleware chain, for log correlation.
	RequestID string `json:"request_id,omitempty"`
}

// ResolutionSummary aggregates the recorder's current window.
type ResolutionSummary struct {
	// Number of outcomes in the window.
	// example: 50
	Count int `json:"count" example:"50"`
	// Ring capacity.
	// example: 50
	Capacity int `json:"capacity" example:"50"`
	// Successful resolutions in the window.
	// example: 44
	Successes int `json:"successes" example:"44"`
	// Failed resolutions in the window.
	// example: 6
	Failures int `json:"failures" example:"6"`
	// Successes / Count; 0 when the window is empty.
	// example: 0.88
	SuccessRate float64 `json:"success_rate" example:"0.88"`
	// Wins per backend id.
	WinsByBackend map[string]int `json:"wins_by_backend"`
	// Failures per error kind.
	FailuresByKind map[string]int `json:"failures_by_kind"`
	// Resolutions where the secondary was launched.
	// example: 9
	HedgeLaunches int `json:"hedge_launches" example:"9"`
	// Resolutions where the primary won before the hedge timer fired.
	// example: 41
	HedgeSuppressions int `json:"hedge_suppressions" example:"41"`
	// Mean total duration across the window, milliseconds.
	// example: 340
	AvgDurationMS int64 `json:"avg_duration_ms" example:"340"`
	// 95th percentile total duration, milliseconds.
	// example: 2100
	P95DurationMS int64 `json:"p95_duration_ms" example:"2100"`
	// Mean winning-attempt latency per backend id, milliseconds.
	AvgWinnerLatencyMS map[string]int64 `json:"avg_winner_latency_ms"`
	// Backend id of the most recent win by a launched hedge.
	// example: ytdlp
	LastHedgeWinner string `json:"last_hedge_winner,omitempty" example:"ytdlp"`
	// Unix ms timestamps bounding the window; 0 when empty.
	OldestUnixMS int64 `json:"oldest_unix_ms"`
	NewestUnixMS int64 `json:"newest_unix_ms"`
}

// BackendStatus describes one backend's configuration on /status.
type BackendStatus struct {
	// Backend id.
	// example: lavalink
	ID string `json:"id" example:"lavalink"`
	// Transport kind: rest or subprocess.
	// example: rest
	Kind string `json:"kind" example:"rest"`
	// Human-oriented endpoint/binary detail, secrets redacted.
	// example: http://127.0.0.1:2333
	Detail string `json:"detail,omitempty" example:"http://127.0.0.1:2333"`
}

// SupervisorStatus reports the local node supervisor, when enabled.
type SupervisorStatus struct {
	// Lifecycle state: stopped, starting, ready, failed.
	// example: ready
	State string `json:"state" example:"ready"`
	// Process id of the spawned node.
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// Port the node listens on.
	// example: 2333
	Port int `json:"port,omitempty" example:"2333"`
	// Jar the node was started from.
	Jar string `json:"jar,omitempty"`
	// Last error observed (early exit tail, probe failure).
	LastError string `json:"last_error,omitempty"`
}

// ResolverStatus echoes the effective resolver configuration.
type ResolverStatus struct {
	// Primary backend id.
	// example: lavalink
	Primary string `json:"primary" example:"lavalink"`
	// Hedge delay in milliseconds.
	// example: 1500
	HedgeDelayMS int64 `json:"hedge_delay_ms" example:"1500"`
	// Overall resolution timeout in milliseconds.
	// example: 10000
	TimeoutMS int64 `json:"timeout_ms" example:"10000"`
	// Source-cache TTL in milliseconds; 0 when disabled.
	// example: 900000
	CacheTTLMS int64 `json:"cache_ttl_ms" example:"900000"`
	// Live source-cache entries.
	// example: 12
	CacheEntries int `json:"cache_entries" example:"12"`
}

// DiscordStatus reports the gateway surface, when enabled.
type DiscordStatus struct {
	// True once the session reported Ready.
	Connected bool `json:"connected"`
	// Guilds visible to the session.
	// example: 3
	Guilds int `json:"guilds" example:"3"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Service name.
	// example: jukebot
	Service string `json:"service" example:"jukebot"`
	// Build version.
	// example: v0.3.0
	Version string `json:"version,omitempty" example:"v0.3.0"`
	// Uptime of the daemon in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Effective resolver configuration.
	Resolver ResolverStatus `json:"resolver"`
	// Configured backends.
	Backends []BackendStatus `json:"backends"`
	// Local node supervisor, when autostart is enabled.
	Supervisor *SupervisorStatus `json:"supervisor,omitempty"`
	// Discord gateway, when a token is configured.
	Discord *DiscordStatus `json:"discord,omitempty"`
	// Aggregate over the recent-outcome window.
	Summary ResolutionSummary `json:"summary"`
}

// PluginInfo is one plugin reported by the Lavalink node.
type PluginInfo struct {
	// Plugin name.
	// example: dev.lavalink.youtube
	Name string `json:"name" example:"dev.lavalink.youtube"`
	// Plugin version.
	// example: 1.13.5
	Version string `json:"version" example:"1.13.5"`
}

// DiagnosticsReport is the stack health probe result (portal
// GET /v1/diagnostics and the /ytcheck command).
type DiagnosticsReport struct {
	// True when the node answered the version probe.
	NodeReachable bool `json:"node_reachable"`
	// Node version string.
	// example: 4.0.8
	NodeVersion string `json:"node_version,omitempty" example:"4.0.8"`
	// Version probe round trip in milliseconds.
	// example: 12
	NodeLatencyMS int64 `json:"node_latency_ms,omitempty" example:"12"`
	// Plugins reported by the node.
	Plugins []PluginInfo `json:"plugins,omitempty"`
	// YouTube source plugin and version, when present.
	// example: dev.lavalink.youtube@1.13.5
	YouTubePlugin string `json:"youtube_plugin,omitempty" example:"dev.lavalink.youtube@1.13.5"`
	// Active players on the node.
	NodePlayers int `json:"node_players,omitempty"`
	// Node uptime in milliseconds.
	NodeUptimeMS int64 `json:"node_uptime_ms,omitempty"`
	// Probe failure detail, when the node was unreachable.
	NodeError string `json:"node_error,omitempty"`
	// True when the yt-dlp binary answered the version probe.
	YTDLPPresent bool `json:"ytdlp_present"`
	// yt-dlp version string.
	// example: 2025.06.09
	YTDLPVersion string `json:"ytdlp_version,omitempty" example:"2025.06.09"`
	// Probe failure detail, when yt-dlp was absent or broken.
	YTDLPError string `json:"ytdlp_error,omitempty"`
	// Configured cookies file, when any.
	CookieFile string `json:"cookie_file,omitempty"`
	// Age of the cookies file in seconds; -1 when the configured file
	// is missing.
	CookieAgeSeconds int64 `json:"cookie_age_seconds,omitempty"`
	// True when at least one backend is usable.
	Healthy bool `json:"healthy"`
	// Probe time in unix seconds.
	CheckedAtUnix int64 `json:"checked_at_unix"`
}

// LogTailResponse is returned by GET /v1/logs/tail.
type LogTailResponse struct {
	// Most recent log lines, oldest first.
	Lines []string `json:"lines"`
}
