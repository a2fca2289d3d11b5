package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"jukebot/internal/config"
	"jukebot/internal/daemon"
	"jukebot/internal/httpapi"
)

// fakeNode stands in for a Lavalink v4 node. byIdentifier maps a
// loadtracks identifier to its canned response body; everything else
// loads empty.
func fakeNode(t *testing.T, byIdentifier map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "4.0.8")
	})
	mux.HandleFunc("/v4/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"version":{"semver":"4.0.8"},"jvm":"21.0.3","lavaplayer":"2.2.1","sourceManagers":["youtube","http"],"plugins":[{"name":"youtube-plugin","version":"1.13.5"}]}`)
	})
	mux.HandleFunc("/v4/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"players":0,"playingPlayers":0,"uptime":60000}`)
	})
	mux.HandleFunc("/v4/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		body, ok := byIdentifier[r.URL.Query().Get("identifier")]
		if !ok {
			body = `{"loadType":"empty","data":null}`
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const rickSearch = `{"loadType":"search","data":[{"encoded":"QAAAjQIAJE5ldmVy","info":{"identifier":"dQw4w9WgXcQ","isSeekable":true,"author":"Rick Astley","length":212000,"isStream":false,"title":"Never Gonna Give You Up","uri":"https://www.youtube.com/watch?v=dQw4w9WgXcQ","sourceName":"youtube","artworkUrl":"https://img.example/x.jpg"}}]}`

// fakeYTDLP writes an executable stand-in for yt-dlp and returns its path.
func fakeYTDLP(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake yt-dlp: %v", err)
	}
	return path
}

const ytdlpVideoScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "2025.06.09"
  exit 0
fi
cat <<'JSON'
{
  "id": "abc123",
  "title": "Direct Hit",
  "uploader": "Someone",
  "duration": 10.5,
  "webpage_url": "https://www.youtube.com/watch?v=abc123",
  "url": "https://edge.example/direct",
  "extractor": "Youtube"
}
JSON
`

const ytdlpEmptyScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "2025.06.09"
  exit 0
fi
cat <<'JSON'
{"_type": "playlist", "id": "ytsearch", "entries": []}
JSON
`

// newPortal builds a daemon plus its operator API on stock fast-fail
// settings: dead node, missing extractor, no persistence, no cache.
// Tests override through mutate.
func newPortal(t *testing.T, mutate func(*config.Config)) (*daemon.Daemon, *httptest.Server) {
	t.Helper()
	hedge := 30
	cfg := config.Config{
		StorePath: config.StoreDisabled,
		Resolver: config.ResolverConfig{
			HedgeDelayMS: &hedge,
			TimeoutMS:    5000,
			CacheTTLMS:   -1,
		},
		Lavalink: config.LavalinkConfig{
			Host:  "127.0.0.1",
			Port:  1,
			Retry: config.RetryConfig{MaxAttempts: 1, BaseDelayMS: 1, MaxDelayMS: 1},
		},
		Extractor: config.ExtractorConfig{
			YTDLPPath: filepath.Join(t.TempDir(), "missing-yt-dlp"),
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	log := zerolog.Nop()
	d, err := daemon.New(daemon.Options{Config: cfg, Logger: &log, Version: "e2e"})
	if err != nil {
		t.Fatalf("daemon: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	srv := httptest.NewServer(httpapi.NewMux(httpapi.Options{Service: d}))
	t.Cleanup(srv.Close)
	return d, srv
}

func nodeHostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return u.Hostname(), port
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
