package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"jukebot/pkg/types"
)

// defaultMaxBodyBytes bounds JSON request bodies.
const defaultMaxBodyBytes int64 = 1 << 20

// Defaults for the unbounded-looking query params.
const (
	defaultRecentN = 20
	defaultTailN   = 100
)

// Service defines the methods the portal needs from the daemon.
type Service interface {
	Resolve(ctx context.Context, query string) (types.ResolutionOutcome, error)
	Status() types.StatusResponse
	Recent(n int) []types.ResolutionOutcome
	Summary() types.ResolutionSummary
	Diagnostics(ctx context.Context) types.DiagnosticsReport
	Ready() bool
}

// Options wires the mux. Only Service is required; everything else has
// a working zero value.
type Options struct {
	Service Service
	// Logger feeds the request log; nil disables it.
	Logger *zerolog.Logger
	// LogRing backs /v1/logs/tail; the route serves an empty tail
	// without one.
	LogRing *LogRing
	// BaseContext cancels in-flight resolutions on shutdown; nil means
	// Background.
	BaseContext context.Context
	// MaxBodyBytes bounds JSON bodies; <= 0 applies the 1 MiB default.
	MaxBodyBytes int64
}

// NewMux builds the operator portal router.
func NewMux(opts Options) http.Handler {
	svc := opts.Service
	base := opts.BaseContext
	if base == nil {
		base = context.Background()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	ring := opts.LogRing

	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Permissive CORS: the portal is a local ops surface.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/v1/resolutions/recent", func(w http.ResponseWriter, r *http.Request) {
		n, ok := queryInt(w, r, "n", defaultRecentN)
		if !ok {
			return
		}
		outcomes := svc.Recent(n)
		if outcomes == nil {
			outcomes = []types.ResolutionOutcome{}
		}
		writeJSON(w, http.StatusOK, types.RecentResponse{Outcomes: outcomes})
	})

	r.Get("/v1/resolutions/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Summary())
	})

	r.Post("/v1/resolve", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeError(w, r, http.StatusUnsupportedMediaType, kindValidation, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		var req types.ResolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, kindValidation, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			writeError(w, r, http.StatusBadRequest, kindValidation, "query is required")
			return
		}

		// Join daemon base context with the request context so shutdown
		// cancels the race too.
		ctx, cancel := joinContexts(base, r.Context())
		defer cancel()
		outcome, err := svc.Resolve(ctx, req.Query)
		if err != nil {
			// Client went away or the daemon is shutting down.
			if r.Context().Err() != nil || base.Err() != nil {
				return
			}
			writeResolveError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, types.ResolveResponse{Outcome: outcome})
	})

	r.Get("/v1/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Diagnostics(r.Context()))
	})

	r.Get("/v1/logs/tail", func(w http.ResponseWriter, r *http.Request) {
		n, ok := queryInt(w, r, "n", defaultTailN)
		if !ok {
			return
		}
		lines := []string{}
		if ring != nil {
			lines = ring.Tail(n)
		}
		writeJSON(w, http.StatusOK, types.LogTailResponse{Lines: lines})
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Swagger UI, only with -tags=swagger.
	MountSwagger(r)

	return r
}

// queryInt parses an optional non-negative integer query param. On a
// bad value it writes the 400 and reports !ok.
func queryInt(w http.ResponseWriter, r *http.Request, key string, def int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		writeError(w, r, http.StatusBadRequest, kindValidation, key+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
