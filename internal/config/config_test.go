package config

import (
	"strings"
	"testing"
	"time"

	"jukebot/internal/resolver"
)

func TestApplyDefaults_Wiring(t *testing.T) {
	cfg := Config{}.ApplyDefaults()
	if cfg.HTTP.Addr != DefaultHTTPAddr {
		t.Fatalf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.StorePath != DefaultStorePath {
		t.Fatalf("store = %q", cfg.StorePath)
	}
	if cfg.Lavalink.Host != DefaultLavalinkHost || cfg.Lavalink.Port != DefaultLavalinkPort {
		t.Fatalf("lavalink = %+v", cfg.Lavalink)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Fatalf("level = %q", cfg.Log.Level)
	}
	if cfg.Resolver.Primary != "" || cfg.Resolver.HedgeDelayMS != nil {
		t.Fatalf("no strategy should leave resolver knobs alone: %+v", cfg.Resolver)
	}
}

func TestApplyDefaults_StrategyDesugar(t *testing.T) {
	cases := []struct {
		name        string
		in          Config
		wantPrimary string
		wantHedge   *int
	}{
		{name: "lavalink_first sets primary", in: func() Config {
			var c Config
			c.Resolver.Strategy = StrategyLavalinkFirst
			return c
		}(), wantPrimary: "lavalink"},
		{name: "fallback_first sets primary", in: func() Config {
			var c Config
			c.Resolver.Strategy = StrategyFallbackFirst
			return c
		}(), wantPrimary: "ytdlp"},
		{name: "explicit primary wins over strategy", in: func() Config {
			var c Config
			c.Resolver.Strategy = StrategyFallbackFirst
			c.Resolver.Primary = "lavalink"
			return c
		}(), wantPrimary: "lavalink"},
		{name: "parallel zeroes hedge delay", in: func() Config {
			var c Config
			c.Resolver.Strategy = StrategyParallel
			return c
		}(), wantHedge: intPtr(0)},
		{name: "explicit hedge wins over parallel", in: func() Config {
			var c Config
			c.Resolver.Strategy = StrategyParallel
			c.Resolver.HedgeDelayMS = intPtr(3000)
			return c
		}(), wantHedge: intPtr(3000)},
		{name: "strategy is case-insensitive", in: func() Config {
			var c Config
			c.Resolver.Strategy = "LAVALINK_FIRST"
			return c
		}(), wantPrimary: "lavalink"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.ApplyDefaults()
			if got.Resolver.Primary != tc.wantPrimary {
				t.Fatalf("primary = %q, want %q", got.Resolver.Primary, tc.wantPrimary)
			}
			switch {
			case tc.wantHedge == nil && got.Resolver.HedgeDelayMS != nil:
				t.Fatalf("hedge = %d, want nil", *got.Resolver.HedgeDelayMS)
			case tc.wantHedge != nil && (got.Resolver.HedgeDelayMS == nil || *got.Resolver.HedgeDelayMS != *tc.wantHedge):
				t.Fatalf("hedge = %+v, want %d", got.Resolver.HedgeDelayMS, *tc.wantHedge)
			}
		})
	}
}

func intPtr(n int) *int { return &n }

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "zero config is fine", mutate: func(c *Config) {}},
		{name: "bad strategy", mutate: func(c *Config) { c.Resolver.Strategy = "race" }, wantErr: "unknown strategy"},
		{name: "bad primary", mutate: func(c *Config) { c.Resolver.Primary = "soundcloud" }, wantErr: "unknown primary"},
		{name: "negative hedge", mutate: func(c *Config) { c.Resolver.HedgeDelayMS = intPtr(-1) }, wantErr: "hedge_delay_ms"},
		{name: "negative timeout", mutate: func(c *Config) { c.Resolver.TimeoutMS = -5 }, wantErr: "timeout_ms"},
		{name: "port out of range", mutate: func(c *Config) { c.Lavalink.Port = 70000 }, wantErr: "out of range"},
		{name: "negative workers", mutate: func(c *Config) { c.Extractor.Workers = -2 }, wantErr: "workers"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Config
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestResolverConfig_Durations(t *testing.T) {
	var r ResolverConfig
	if r.HedgeDelay() != resolver.DefaultHedgeDelay {
		t.Fatalf("unset hedge = %s", r.HedgeDelay())
	}
	r.HedgeDelayMS = intPtr(0)
	if r.HedgeDelay() != 0 {
		t.Fatalf("explicit zero hedge = %s", r.HedgeDelay())
	}
	r.TimeoutMS = 8000
	r.CacheTTLMS = -1
	if r.Timeout() != 8*time.Second {
		t.Fatalf("timeout = %s", r.Timeout())
	}
	if r.CacheTTL() >= 0 {
		t.Fatalf("negative ttl should stay negative: %s", r.CacheTTL())
	}
}

func TestLavalinkConfig_BaseURL(t *testing.T) {
	l := LavalinkConfig{Host: "127.0.0.1", Port: 2333}
	if got := l.BaseURL(); got != "http://127.0.0.1:2333" {
		t.Fatalf("base url = %q", got)
	}
	l.SSL = true
	l.Host = "node.example.com"
	l.Port = 443
	if got := l.BaseURL(); got != "https://node.example.com:443" {
		t.Fatalf("ssl base url = %q", got)
	}
}

func TestRedacted(t *testing.T) {
	var c Config
	c.Discord.Token = "secret-token"
	c.Lavalink.Password = "youshallnotpass"
	c.Lavalink.Host = "127.0.0.1"

	r := c.Redacted()
	if r.Discord.Token != "***" || r.Lavalink.Password != "***" {
		t.Fatalf("secrets not masked: %+v", r)
	}
	if r.Lavalink.Host != "127.0.0.1" {
		t.Fatalf("non-secret fields must pass through")
	}
	if c.Discord.Token != "secret-token" {
		t.Fatalf("original must be untouched")
	}

	if e := (Config{}).Redacted(); e.Discord.Token != "" || e.Lavalink.Password != "" {
		t.Fatalf("empty secrets stay empty: %+v", e)
	}
}

func TestStoreEnabled(t *testing.T) {
	var c Config
	if c.StoreEnabled() {
		t.Fatalf("empty path should disable the store until defaulted")
	}
	c.StorePath = StoreDisabled
	if c.StoreEnabled() {
		t.Fatalf("off should disable the store")
	}
	c.StorePath = "jukebot.db"
	if !c.StoreEnabled() {
		t.Fatalf("path should enable the store")
	}
}

func TestDiscordConfig_Enabled(t *testing.T) {
	if (DiscordConfig{}).Enabled() {
		t.Fatalf("no token should disable discord")
	}
	if !(DiscordConfig{Token: "x"}).Enabled() {
		t.Fatalf("token should enable discord")
	}
}
