package e2e

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jukebot/internal/config"
	"jukebot/pkg/types"
)

func TestE2E_PrimaryWins(t *testing.T) {
	node := fakeNode(t, map[string]string{"ytsearch:song": rickSearch})
	host, port := nodeHostPort(t, node.URL)
	_, portal := newPortal(t, func(c *config.Config) {
		c.Lavalink.Host, c.Lavalink.Port = host, port
		// Hedge far enough out that a healthy node always beats it.
		hedge := 60000
		c.Resolver.HedgeDelayMS = &hedge
	})

	resp, body := httpPostJSON(t, portal.URL+"/v1/resolve", []byte(`{"query":"song"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var rr types.ResolveResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	o := rr.Outcome
	if o.Winner != types.BackendLavalink {
		t.Fatalf("winner = %q", o.Winner)
	}
	if o.Track == nil || o.Track.Title != "Never Gonna Give You Up" {
		t.Fatalf("track = %+v", o.Track)
	}
	if o.Track.Encoded == "" {
		t.Fatalf("winner track lost the node token")
	}
	if o.HedgeLaunched {
		t.Fatalf("hedge launched against a healthy node")
	}
	if len(o.Attempts) != 1 || o.Attempts[0].Backend != types.BackendLavalink {
		t.Fatalf("attempts = %+v", o.Attempts)
	}
	if o.Query != "ytsearch:song" {
		t.Fatalf("query = %q", o.Query)
	}

	resp, body = httpGet(t, portal.URL+"/v1/resolutions/recent")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recent status = %d", resp.StatusCode)
	}
	var recent types.RecentResponse
	if err := json.Unmarshal(body, &recent); err != nil {
		t.Fatalf("decode recent: %v", err)
	}
	if len(recent.Outcomes) != 1 || recent.Outcomes[0].ID != o.ID {
		t.Fatalf("recent = %+v", recent.Outcomes)
	}
}

func TestE2E_FallbackWinsWhenNodeIsDown(t *testing.T) {
	script := fakeYTDLP(t, ytdlpVideoScript)
	_, portal := newPortal(t, func(c *config.Config) {
		c.Extractor.YTDLPPath = script
		zero := 0
		c.Resolver.HedgeDelayMS = &zero
	})

	resp, body := httpPostJSON(t, portal.URL+"/v1/resolve",
		[]byte(`{"query":"https://www.youtube.com/watch?v=abc123"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var rr types.ResolveResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	o := rr.Outcome
	if o.Winner != types.BackendYTDLP {
		t.Fatalf("winner = %q, attempts %+v", o.Winner, o.Attempts)
	}
	if !o.HedgeLaunched {
		t.Fatalf("hedge never launched")
	}
	if o.Track == nil || o.Track.Title != "Direct Hit" {
		t.Fatalf("track = %+v", o.Track)
	}
	if len(o.Attempts) != 2 {
		t.Fatalf("attempts = %+v", o.Attempts)
	}
	if o.Attempts[0].Backend != types.BackendLavalink || o.Attempts[0].ErrKind != types.ErrorKindBackendUnavailable {
		t.Fatalf("primary attempt = %+v", o.Attempts[0])
	}
}

func TestE2E_NoMatchMapsTo404(t *testing.T) {
	node := fakeNode(t, nil)
	host, port := nodeHostPort(t, node.URL)
	script := fakeYTDLP(t, ytdlpEmptyScript)
	_, portal := newPortal(t, func(c *config.Config) {
		c.Lavalink.Host, c.Lavalink.Port = host, port
		c.Extractor.YTDLPPath = script
		zero := 0
		c.Resolver.HedgeDelayMS = &zero
	})

	resp, body := httpPostJSON(t, portal.URL+"/v1/resolve", []byte(`{"query":"nothing matches this"}`))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var apiErr types.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if apiErr.Kind != string(types.ErrorKindNoMatch) || apiErr.Code != http.StatusNotFound {
		t.Fatalf("error = %+v", apiErr)
	}
	if apiErr.RequestID == "" {
		t.Fatalf("missing request id")
	}
}

func TestE2E_CachePinsRepeatQueries(t *testing.T) {
	script := fakeYTDLP(t, ytdlpVideoScript)
	_, portal := newPortal(t, func(c *config.Config) {
		c.Extractor.YTDLPPath = script
		zero := 0
		c.Resolver.HedgeDelayMS = &zero
		c.Resolver.CacheTTLMS = 60000
	})

	payload := []byte(`{"query":"https://www.youtube.com/watch?v=abc123"}`)
	resp, body := httpPostJSON(t, portal.URL+"/v1/resolve", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first status = %d, body %s", resp.StatusCode, body)
	}
	var first types.ResolveResponse
	if err := json.Unmarshal(body, &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Outcome.CachePinned {
		t.Fatalf("first resolution cannot be cache pinned")
	}

	resp, body = httpPostJSON(t, portal.URL+"/v1/resolve", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second status = %d, body %s", resp.StatusCode, body)
	}
	var second types.ResolveResponse
	if err := json.Unmarshal(body, &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	o := second.Outcome
	if !o.CachePinned {
		t.Fatalf("second resolution not pinned: %+v", o)
	}
	if len(o.Attempts) == 0 || o.Attempts[0].Backend != types.BackendYTDLP {
		t.Fatalf("pinned primary = %+v", o.Attempts)
	}
}

func TestE2E_StatusAndDiagnostics(t *testing.T) {
	node := fakeNode(t, nil)
	host, port := nodeHostPort(t, node.URL)
	script := fakeYTDLP(t, ytdlpVideoScript)
	cookies := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(cookies, []byte("# Netscape HTTP Cookie File\n"), 0o600); err != nil {
		t.Fatalf("write cookies: %v", err)
	}
	_, portal := newPortal(t, func(c *config.Config) {
		c.Lavalink.Host, c.Lavalink.Port = host, port
		c.Extractor.YTDLPPath = script
		c.Extractor.CookieFile = cookies
	})

	resp, _ := httpGet(t, portal.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d", resp.StatusCode)
	}
	resp, body := httpGet(t, portal.URL+"/readyz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "ready") {
		t.Fatalf("readyz = %d %s", resp.StatusCode, body)
	}

	resp, body = httpGet(t, portal.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Service != "jukebot" || len(st.Backends) != 2 {
		t.Fatalf("status = %+v", st)
	}

	resp, body = httpGet(t, portal.URL+"/v1/diagnostics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("diagnostics = %d", resp.StatusCode)
	}
	var rep types.DiagnosticsReport
	if err := json.Unmarshal(body, &rep); err != nil {
		t.Fatalf("decode diagnostics: %v", err)
	}
	if !rep.NodeReachable || rep.NodeVersion != "4.0.8" {
		t.Fatalf("node report = %+v", rep)
	}
	if rep.YouTubePlugin != "youtube-plugin@1.13.5" {
		t.Fatalf("plugin = %q", rep.YouTubePlugin)
	}
	if !rep.YTDLPPresent || rep.YTDLPVersion != "2025.06.09" {
		t.Fatalf("ytdlp report = %+v", rep)
	}
	if rep.CookieFile == "" || rep.CookieAgeSeconds < 0 {
		t.Fatalf("cookie report = %+v", rep)
	}
}

func TestE2E_MetricsExposeResolutions(t *testing.T) {
	script := fakeYTDLP(t, ytdlpVideoScript)
	_, portal := newPortal(t, func(c *config.Config) {
		c.Extractor.YTDLPPath = script
		zero := 0
		c.Resolver.HedgeDelayMS = &zero
	})

	httpPostJSON(t, portal.URL+"/v1/resolve", []byte(`{"query":"https://www.youtube.com/watch?v=abc123"}`))
	resp, body := httpGet(t, portal.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics = %d", resp.StatusCode)
	}
	page := string(body)
	for _, want := range []string{"jukebot_resolutions_total", "jukebot_http_requests_total", "jukebot_resolutions_inflight"} {
		if !strings.Contains(page, want) {
			t.Fatalf("metrics page missing %s", want)
		}
	}
}
