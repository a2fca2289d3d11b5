package blackbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"jukebot/pkg/types"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) (int, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil { t.Fatalf("listen: %v", err) }
	addr := ln.Addr().String()
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil { t.Fatalf("split: %v", err) }
	cleanup := func(){ _ = ln.Close() }
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return port, cleanup
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok { t.Fatal("runtime.Caller failed") }
	// this file: <root>/tests/blackbox/blackbox_test.go
	bbDir := filepath.Dir(thisFile)
	root := filepath.Dir(filepath.Dir(bbDir))
	return root
}

func buildBinary(t *testing.T) string {
	t.Helper()
	root := projectRootFromThisFile(t)
	outDir := t.TempDir()
	binPath := filepath.Join(outDir, "jukebot")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/jukebot")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

const searchHit = `{"loadType":"search","data":[{"encoded":"QAAAjQIAJE5ldmVy","info":{"identifier":"dQw4w9WgXcQ","isSeekable":true,"author":"Rick Astley","length":212000,"isStream":false,"title":"Never Gonna Give You Up","uri":"https://www.youtube.com/watch?v=dQw4w9WgXcQ","sourceName":"youtube"}}]}`

// fakeNode serves the two node routes the daemon touches out of band.
func fakeNode(t *testing.T, byIdentifier map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("4.0.8"))
	})
	mux.HandleFunc("/v4/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		body, ok := byIdentifier[r.URL.Query().Get("identifier")]
		if !ok { body = `{"loadType":"empty","data":null}` }
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const emptyYTDLPScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "2025.06.09"
  exit 0
fi
cat <<'JSON'
{"_type": "playlist", "id": "ytsearch", "entries": []}
JSON
`

func writeYTDLPStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write yt-dlp stub: %v", err)
	}
	return path
}

// daemonEnv assembles the environment for a spawned binary: store off, no
// node autostart, pointed at the fake node.
func daemonEnv(t *testing.T, node *httptest.Server, extra ...string) []string {
	t.Helper()
	u, err := url.Parse(node.URL)
	if err != nil { t.Fatalf("parse node url: %v", err) }
	env := append(os.Environ(),
		"JUKEBOT_STORE_PATH=off",
		"JUKEBOT_LOG_LEVEL=warn",
		"LAVALINK_AUTOSTART=0",
		"LAVALINK_HOST="+u.Hostname(),
		"LAVALINK_PORT="+u.Port(),
	)
	return append(env, extra...)
}

type serverProc struct {
	cmd  *exec.Cmd
	base string // http base URL, e.g. http://127.0.0.1:18080
}

func startServer(t *testing.T, bin string, env []string, port int) *serverProc {
	t.Helper()
	addr := fmt.Sprintf(":%d", port)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := exec.Command(bin, "run", "--addr", addr)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	// Wait for healthz
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK { break }
		}
		if time.Now().After(deadline) {
			_ = cmd.Process.Kill()
			t.Fatalf("server did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
	sp := &serverProc{cmd: cmd, base: base}
	t.Cleanup(func(){ _ = cmd.Process.Kill() })
	return sp
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil { t.Fatalf("new req: %v", err) }
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do: %v", err) }
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func postJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil { t.Fatalf("new req: %v", err) }
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do: %v", err) }
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func TestBlackbox_ResolveFlow(t *testing.T) {
	bin := buildBinary(t)
	node := fakeNode(t, map[string]string{"ytsearch:never gonna give you up": searchHit})
	port, release := findFreePort(t)
	release()
	// Hedge far enough out that the node always answers first.
	env := daemonEnv(t, node, "JUKEBOT_HEDGE_DELAY_MS=60000")
	sp := startServer(t, bin, env, port)

	// /healthz
	resp, body := get(t, sp.base+"/healthz")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/healthz %d %s", resp.StatusCode, string(body)) }

	// /readyz: no supervisor, so the daemon is ready as soon as it is up.
	resp, body = get(t, sp.base+"/readyz")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/readyz %d %s", resp.StatusCode, string(body)) }

	// /status
	resp, body = get(t, sp.base+"/status")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/status %d %s", resp.StatusCode, string(body)) }
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") { t.Fatalf("/status content-type=%s", ct) }
	var status types.StatusResponse
	if err := json.Unmarshal(body, &status); err != nil { t.Fatalf("/status json: %v body=%s", err, string(body)) }
	if status.Service != "jukebot" { t.Fatalf("service=%q", status.Service) }
	if len(status.Backends) != 2 { t.Fatalf("expected 2 backends, got %d", len(status.Backends)) }

	// /v1/resolve: free text goes through search normalization on the way in.
	resp, body = postJSON(t, sp.base+"/v1/resolve", []byte(`{"query":"never gonna give you up"}`))
	if resp.StatusCode != http.StatusOK { t.Fatalf("/v1/resolve %d %s", resp.StatusCode, string(body)) }
	var rr types.ResolveResponse
	if err := json.Unmarshal(body, &rr); err != nil { t.Fatalf("/v1/resolve json: %v body=%s", err, string(body)) }
	if rr.Outcome.Winner != types.BackendLavalink { t.Fatalf("winner=%q", rr.Outcome.Winner) }
	if rr.Outcome.Track == nil || rr.Outcome.Track.Title != "Never Gonna Give You Up" { t.Fatalf("track=%+v", rr.Outcome.Track) }
	if rr.Outcome.HedgeLaunched { t.Fatalf("hedge launched on a healthy node") }

	// /v1/resolutions/recent surfaces the outcome just produced.
	resp, body = get(t, sp.base+"/v1/resolutions/recent")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/recent %d %s", resp.StatusCode, string(body)) }
	var recent types.RecentResponse
	if err := json.Unmarshal(body, &recent); err != nil { t.Fatalf("/recent json: %v body=%s", err, string(body)) }
	if len(recent.Outcomes) != 1 || recent.Outcomes[0].ID != rr.Outcome.ID {
		t.Fatalf("recent=%+v want id %s", recent.Outcomes, rr.Outcome.ID)
	}
}

func TestBlackbox_Resolve_NoMatch_404(t *testing.T) {
	bin := buildBinary(t)
	node := fakeNode(t, nil)
	stub := writeYTDLPStub(t, emptyYTDLPScript)
	port, release := findFreePort(t)
	release()
	env := daemonEnv(t, node, "JUKEBOT_HEDGE_DELAY_MS=0", "YTDLP_PATH="+stub)
	sp := startServer(t, bin, env, port)

	resp, body := postJSON(t, sp.base+"/v1/resolve", []byte(`{"query":"no such song anywhere"}`))
	if resp.StatusCode != http.StatusNotFound { t.Fatalf("expected 404, got %d, body=%s", resp.StatusCode, string(body)) }
	var er types.ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil { t.Fatalf("error json: %v body=%s", err, string(body)) }
	if er.Kind != "no_match" || er.Code != http.StatusNotFound { t.Fatalf("error=%+v", er) }
}

func TestBlackbox_ResolveCommand_JSON(t *testing.T) {
	bin := buildBinary(t)
	node := fakeNode(t, map[string]string{"ytsearch:never gonna give you up": searchHit})

	cmd := exec.Command(bin, "resolve", "never gonna give you up", "--json")
	cmd.Env = daemonEnv(t, node, "JUKEBOT_HEDGE_DELAY_MS=60000")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("resolve: %v\nstderr: %s", err, stderr.String())
	}
	var outcome types.ResolutionOutcome
	if err := json.Unmarshal(stdout.Bytes(), &outcome); err != nil {
		t.Fatalf("outcome json: %v out=%s", err, stdout.String())
	}
	if outcome.Winner != types.BackendLavalink { t.Fatalf("winner=%q", outcome.Winner) }
	if outcome.Track == nil || outcome.Track.Title != "Never Gonna Give You Up" { t.Fatalf("track=%+v", outcome.Track) }
}

func TestBlackbox_VersionCommand(t *testing.T) {
	bin := buildBinary(t)
	out, err := exec.Command(bin, "version").CombinedOutput()
	if err != nil { t.Fatalf("version: %v\n%s", err, string(out)) }
	if !strings.Contains(string(out), "jukebot") { t.Fatalf("unexpected version output: %q", string(out)) }
}
