package config

import (
	"testing"
)

func TestFromEnv_OverlaysFileValues(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("JUKEBOT_PRIMARY", "ytdlp")
	t.Setenv("JUKEBOT_HEDGE_DELAY_MS", "0")
	t.Setenv("JUKEBOT_TIMEOUT_MS", "4000")
	t.Setenv("JUKEBOT_HTTP_ADDR", ":7001")
	t.Setenv("JUKEBOT_STORE_PATH", "off")
	t.Setenv("LAVALINK_HOST", "node.internal")
	t.Setenv("LAVALINK_PORT", "2555")
	t.Setenv("LAVALINK_PASSWORD", "env-pw")
	t.Setenv("LAVALINK_SSL", "yes")
	t.Setenv("LAVALINK_AUTOSTART", "1")
	t.Setenv("YTDLP_PATH", "/opt/yt-dlp")
	t.Setenv("YTDLP_WORKERS", "8")
	t.Setenv("YT_COOKIES_FILE", "/secrets/cookies.txt")

	in := Config{}
	in.Discord.Token = "file-token"
	in.Lavalink.Port = 2333
	hedge := 3000
	in.Resolver.HedgeDelayMS = &hedge

	cfg := FromEnv(in)
	if cfg.Discord.Token != "env-token" {
		t.Fatalf("env should win over file: %q", cfg.Discord.Token)
	}
	if cfg.Resolver.Primary != "ytdlp" || cfg.Resolver.TimeoutMS != 4000 {
		t.Fatalf("resolver overlay: %+v", cfg.Resolver)
	}
	if cfg.Resolver.HedgeDelayMS == nil || *cfg.Resolver.HedgeDelayMS != 0 {
		t.Fatalf("explicit env zero should replace the file value")
	}
	if cfg.HTTP.Addr != ":7001" || cfg.StorePath != "off" {
		t.Fatalf("http/store overlay: %+v", cfg)
	}
	if cfg.Lavalink.Host != "node.internal" || cfg.Lavalink.Port != 2555 || cfg.Lavalink.Password != "env-pw" {
		t.Fatalf("lavalink overlay: %+v", cfg.Lavalink)
	}
	if !cfg.Lavalink.SSL || !cfg.Lavalink.Autostart {
		t.Fatalf("bool overlay: %+v", cfg.Lavalink)
	}
	if cfg.Extractor.YTDLPPath != "/opt/yt-dlp" || cfg.Extractor.Workers != 8 || cfg.Extractor.CookieFile != "/secrets/cookies.txt" {
		t.Fatalf("extractor overlay: %+v", cfg.Extractor)
	}
}

func TestFromEnv_UnsetLeavesFileValues(t *testing.T) {
	// Keep the host environment out of the assertion.
	for _, key := range []string{"DISCORD_TOKEN", "LAVALINK_PORT", "LAVALINK_SSL", "JUKEBOT_HEDGE_DELAY_MS"} {
		t.Setenv(key, "")
	}

	in := Config{}
	in.Discord.Token = "file-token"
	in.Lavalink.Port = 2444
	in.Lavalink.SSL = true

	cfg := FromEnv(in)
	if cfg.Discord.Token != "file-token" || cfg.Lavalink.Port != 2444 || !cfg.Lavalink.SSL {
		t.Fatalf("unset env must not clobber: %+v", cfg)
	}
	if cfg.Resolver.HedgeDelayMS != nil {
		t.Fatalf("hedge delay should stay nil without env")
	}
}

func TestFromEnv_MalformedNumbersIgnored(t *testing.T) {
	t.Setenv("LAVALINK_PORT", "not-a-port")
	t.Setenv("JUKEBOT_HEDGE_DELAY_MS", "soon")

	in := Config{}
	in.Lavalink.Port = 2333
	cfg := FromEnv(in)
	if cfg.Lavalink.Port != 2333 {
		t.Fatalf("malformed int should keep previous value, got %d", cfg.Lavalink.Port)
	}
	if cfg.Resolver.HedgeDelayMS != nil {
		t.Fatalf("malformed hedge delay should stay nil")
	}
}

func TestEnvBool_Forms(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes"} {
		t.Setenv("LAVALINK_SSL", v)
		if cfg := FromEnv(Config{}); !cfg.Lavalink.SSL {
			t.Fatalf("%q should parse as true", v)
		}
	}
	t.Setenv("LAVALINK_SSL", "0")
	if cfg := FromEnv(Config{}); cfg.Lavalink.SSL {
		t.Fatalf("0 should parse as false")
	}
}
