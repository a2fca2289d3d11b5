package config

import (
	"fmt"
	"strings"
	"time"

	"jukebot/internal/resolver"
	"jukebot/pkg/types"
)

// Strategy names accepted in config files and JUKEBOT_STRATEGY.
// They desugar to primary/hedge settings in ApplyDefaults; explicit
// primary or hedge_delay_ms values always win over the strategy.
const (
	StrategyLavalinkFirst = "lavalink_first"
	StrategyFallbackFirst = "fallback_first"
	StrategyParallel      = "parallel"
)

// StoreDisabled as StorePath runs the bot without persistence.
const StoreDisabled = "off"

// Defaults applied by ApplyDefaults. Component-level tunables (retry
// policy, worker counts, timeouts) stay zero here and are defaulted by
// the component constructors instead.
const (
	DefaultHTTPAddr     = ":8090"
	DefaultStorePath    = "jukebot.db"
	DefaultLavalinkHost = "127.0.0.1"
	DefaultLavalinkPort = 2333
	DefaultLogLevel     = "info"
)

// Config holds runtime parameters for the bot.
// Zero values mean "unspecified"; ApplyDefaults fills the wiring-level
// ones and the component constructors default the rest.
type Config struct {
	Discord   DiscordConfig   `json:"discord" yaml:"discord" toml:"discord"`
	Resolver  ResolverConfig  `json:"resolver" yaml:"resolver" toml:"resolver"`
	Lavalink  LavalinkConfig  `json:"lavalink" yaml:"lavalink" toml:"lavalink"`
	Extractor ExtractorConfig `json:"extractor" yaml:"extractor" toml:"extractor"`
	HTTP      HTTPConfig      `json:"http" yaml:"http" toml:"http"`
	Log       LogConfig       `json:"log" yaml:"log" toml:"log"`
	StorePath string          `json:"store_path" yaml:"store_path" toml:"store_path"`
}

type DiscordConfig struct {
	Token   string `json:"token" yaml:"token" toml:"token"`
	GuildID string `json:"guild_id" yaml:"guild_id" toml:"guild_id"`
}

// Enabled reports whether a Discord session should be started.
func (d DiscordConfig) Enabled() bool { return d.Token != "" }

type ResolverConfig struct {
	Primary  string `json:"primary" yaml:"primary" toml:"primary"`
	Strategy string `json:"strategy" yaml:"strategy" toml:"strategy"`
	// Pointer so an explicit 0 (launch both backends at once) survives
	// decoding; nil means "use the stock delay".
	HedgeDelayMS *int `json:"hedge_delay_ms" yaml:"hedge_delay_ms" toml:"hedge_delay_ms"`
	TimeoutMS    int  `json:"timeout_ms" yaml:"timeout_ms" toml:"timeout_ms"`
	CacheTTLMS   int  `json:"cache_ttl_ms" yaml:"cache_ttl_ms" toml:"cache_ttl_ms"`
}

// HedgeDelay returns the configured hedge launch delay, falling back to
// the resolver's stock delay when unset.
func (r ResolverConfig) HedgeDelay() time.Duration {
	if r.HedgeDelayMS == nil {
		return resolver.DefaultHedgeDelay
	}
	return time.Duration(*r.HedgeDelayMS) * time.Millisecond
}

func (r ResolverConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

func (r ResolverConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLMS) * time.Millisecond
}

type LavalinkConfig struct {
	Host           string      `json:"host" yaml:"host" toml:"host"`
	Port           int         `json:"port" yaml:"port" toml:"port"`
	Password       string      `json:"password" yaml:"password" toml:"password"`
	SSL            bool        `json:"ssl" yaml:"ssl" toml:"ssl"`
	Autostart      bool        `json:"autostart" yaml:"autostart" toml:"autostart"`
	JarDir         string      `json:"jar_dir" yaml:"jar_dir" toml:"jar_dir"`
	ReadyTimeoutMS int         `json:"ready_timeout_ms" yaml:"ready_timeout_ms" toml:"ready_timeout_ms"`
	Retry          RetryConfig `json:"retry" yaml:"retry" toml:"retry"`
}

type RetryConfig struct {
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts"`
	BaseDelayMS int `json:"base_delay_ms" yaml:"base_delay_ms" toml:"base_delay_ms"`
	MaxDelayMS  int `json:"max_delay_ms" yaml:"max_delay_ms" toml:"max_delay_ms"`
}

// BaseURL builds the node REST base from host/port/ssl.
func (l LavalinkConfig) BaseURL() string {
	scheme := "http"
	if l.SSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, l.Host, l.Port)
}

func (l LavalinkConfig) ReadyTimeout() time.Duration {
	return time.Duration(l.ReadyTimeoutMS) * time.Millisecond
}

type ExtractorConfig struct {
	YTDLPPath  string `json:"ytdlp_path" yaml:"ytdlp_path" toml:"ytdlp_path"`
	Workers    int    `json:"workers" yaml:"workers" toml:"workers"`
	CookieFile string `json:"cookie_file" yaml:"cookie_file" toml:"cookie_file"`
}

type HTTPConfig struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty" toml:"pretty"`
}

// StoreEnabled reports whether a persistence file should be opened.
func (c Config) StoreEnabled() bool {
	return c.StorePath != "" && c.StorePath != StoreDisabled
}

// ApplyDefaults desugars the strategy and fills wiring-level defaults.
// Explicit primary/hedge settings win over the strategy.
func (c Config) ApplyDefaults() Config {
	out := c
	switch strings.ToLower(out.Resolver.Strategy) {
	case StrategyLavalinkFirst:
		if out.Resolver.Primary == "" {
			out.Resolver.Primary = string(types.BackendLavalink)
		}
	case StrategyFallbackFirst:
		if out.Resolver.Primary == "" {
			out.Resolver.Primary = string(types.BackendYTDLP)
		}
	case StrategyParallel:
		if out.Resolver.HedgeDelayMS == nil {
			zero := 0
			out.Resolver.HedgeDelayMS = &zero
		}
	}
	if out.HTTP.Addr == "" {
		out.HTTP.Addr = DefaultHTTPAddr
	}
	if out.StorePath == "" {
		out.StorePath = DefaultStorePath
	}
	if out.Lavalink.Host == "" {
		out.Lavalink.Host = DefaultLavalinkHost
	}
	if out.Lavalink.Port == 0 {
		out.Lavalink.Port = DefaultLavalinkPort
	}
	if out.Log.Level == "" {
		out.Log.Level = DefaultLogLevel
	}
	out.StorePath = expandHome(out.StorePath)
	out.Lavalink.JarDir = expandHome(out.Lavalink.JarDir)
	out.Extractor.YTDLPPath = expandHome(out.Extractor.YTDLPPath)
	out.Extractor.CookieFile = expandHome(out.Extractor.CookieFile)
	return out
}

// Validate rejects values no component can accept. Call after
// ApplyDefaults.
func (c Config) Validate() error {
	switch strings.ToLower(c.Resolver.Strategy) {
	case "", StrategyLavalinkFirst, StrategyFallbackFirst, StrategyParallel:
	default:
		return fmt.Errorf("unknown strategy %q (want %s|%s|%s)", c.Resolver.Strategy, StrategyLavalinkFirst, StrategyFallbackFirst, StrategyParallel)
	}
	if p := c.Resolver.Primary; p != "" && !types.BackendID(p).Valid() {
		return fmt.Errorf("unknown primary backend %q", p)
	}
	if c.Resolver.HedgeDelayMS != nil && *c.Resolver.HedgeDelayMS < 0 {
		return fmt.Errorf("hedge_delay_ms must be >= 0")
	}
	if c.Resolver.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms must be >= 0")
	}
	if c.Lavalink.Port < 0 || c.Lavalink.Port > 65535 {
		return fmt.Errorf("lavalink port %d out of range", c.Lavalink.Port)
	}
	if c.Extractor.Workers < 0 {
		return fmt.Errorf("ytdlp workers must be >= 0")
	}
	return nil
}

// Redacted returns a copy safe to echo on status surfaces: secrets are
// masked, everything else passes through.
func (c Config) Redacted() Config {
	out := c
	if out.Discord.Token != "" {
		out.Discord.Token = "***"
	}
	if out.Lavalink.Password != "" {
		out.Lavalink.Password = "***"
	}
	return out
}
