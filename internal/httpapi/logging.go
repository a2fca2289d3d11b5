package httpapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// DefaultLogRingLines bounds the in-memory tail served on /v1/logs/tail.
const DefaultLogRingLines = 500

// LogRing is an io.Writer keeping the last N complete log lines. The
// root logger tees into it alongside stderr so the portal can serve a
// tail without touching files.
type LogRing struct {
	mu    sync.Mutex
	lines []string
	part  []byte
	max   int
}

// NewLogRing constructs a ring; maxLines <= 0 applies the default.
func NewLogRing(maxLines int) *LogRing {
	if maxLines <= 0 {
		maxLines = DefaultLogRingLines
	}
	return &LogRing{max: maxLines}
}

// Write splits p into lines. zerolog emits one line per event, but a
// writer must not rely on that.
func (lr *LogRing) Write(p []byte) (int, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	for _, b := range p {
		if b != '\n' {
			lr.part = append(lr.part, b)
			continue
		}
		line := strings.TrimRight(string(lr.part), "\r")
		lr.part = lr.part[:0]
		if line == "" {
			continue
		}
		lr.lines = append(lr.lines, line)
		if len(lr.lines) > lr.max {
			lr.lines = lr.lines[len(lr.lines)-lr.max:]
		}
	}
	return len(p), nil
}

// Tail returns up to n of the most recent lines, oldest first. n <= 0
// returns all buffered lines.
func (lr *LogRing) Tail(n int) []string {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if n <= 0 || n > len(lr.lines) {
		n = len(lr.lines)
	}
	out := make([]string, n)
	copy(out, lr.lines[len(lr.lines)-n:])
	return out
}

// Len reports how many lines are buffered.
func (lr *LogRing) Len() int {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return len(lr.lines)
}

// RequestLogger logs one structured line per request. Probe and scrape
// paths log at debug so a watchdog does not flood the ring.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)

			ev := log.Info()
			switch r.URL.Path {
			case "/healthz", "/readyz", "/metrics":
				ev = log.Debug()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sr.status).
				Dur("dur", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
