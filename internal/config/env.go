package config

import (
	"fmt"
	"os"
	"strings"
)

// FromEnv overlays environment variables onto cfg and returns the
// result. Unset variables leave the field alone; malformed numeric or
// boolean values are ignored the same way. Nothing outside this file
// reads the environment after startup.
func FromEnv(cfg Config) Config {
	out := cfg

	out.Discord.Token = envStr("DISCORD_TOKEN", out.Discord.Token)
	out.Discord.GuildID = envStr("DISCORD_GUILD_ID", out.Discord.GuildID)

	out.Resolver.Primary = envStr("JUKEBOT_PRIMARY", out.Resolver.Primary)
	out.Resolver.Strategy = envStr("JUKEBOT_STRATEGY", out.Resolver.Strategy)
	if v := os.Getenv("JUKEBOT_HEDGE_DELAY_MS"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			out.Resolver.HedgeDelayMS = &n
		}
	}
	out.Resolver.TimeoutMS = envInt("JUKEBOT_TIMEOUT_MS", out.Resolver.TimeoutMS)
	out.HTTP.Addr = envStr("JUKEBOT_HTTP_ADDR", out.HTTP.Addr)
	out.StorePath = envStr("JUKEBOT_STORE_PATH", out.StorePath)
	out.Log.Level = envStr("JUKEBOT_LOG_LEVEL", out.Log.Level)

	out.Lavalink.Host = envStr("LAVALINK_HOST", out.Lavalink.Host)
	out.Lavalink.Port = envInt("LAVALINK_PORT", out.Lavalink.Port)
	out.Lavalink.Password = envStr("LAVALINK_PASSWORD", out.Lavalink.Password)
	out.Lavalink.SSL = envBool("LAVALINK_SSL", out.Lavalink.SSL)
	out.Lavalink.Autostart = envBool("LAVALINK_AUTOSTART", out.Lavalink.Autostart)
	out.Lavalink.JarDir = envStr("LAVALINK_JAR_DIR", out.Lavalink.JarDir)

	out.Extractor.YTDLPPath = envStr("YTDLP_PATH", out.Extractor.YTDLPPath)
	out.Extractor.Workers = envInt("YTDLP_WORKERS", out.Extractor.Workers)
	out.Extractor.CookieFile = envStr("YT_COOKIES_FILE", out.Extractor.CookieFile)

	return out
}

// Env helpers
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, err := fmt.Sscanf(v, "%d", &n)
		if err == nil {
			return n
		}
	}
	return def
}
