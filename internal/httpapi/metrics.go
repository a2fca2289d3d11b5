package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"jukebot/internal/resolver"
	"jukebot/pkg/types"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jukebot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jukebot",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jukebot",
			Name:      "resolutions_total",
			Help:      "Completed resolutions by winning backend and result",
		},
		[]string{"backend", "result"},
	)

	resolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jukebot",
			Name:      "resolution_duration_seconds",
			Help:      "Wall time of whole resolutions by winning backend",
			Buckets:   []float64{.05, .1, .25, .5, 1, 1.5, 2.5, 5, 10, 15},
		},
		[]string{"backend"},
	)

	hedgeLaunchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jukebot",
			Name:      "hedge_launches_total",
			Help:      "Resolutions where the secondary backend was launched",
		},
	)

	hedgeSuppressionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jukebot",
			Name:      "hedge_suppressions_total",
			Help:      "Resolutions decided before the hedge timer fired",
		},
	)

	resolutionsInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jukebot",
			Name:      "resolutions_inflight",
			Help:      "Resolutions currently racing",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		resolutionsTotal,
		resolutionDuration,
		hedgeLaunchesTotal,
		hedgeSuppressionsTotal,
		resolutionsInflight,
	)
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware instruments requests for Prometheus.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routePatternOrPath(r)
		method := r.Method

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		statusLabel := itoa(sr.status)
		dur := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(route, method, statusLabel).Inc()
		httpRequestDuration.WithLabelValues(route, method, statusLabel).Observe(dur)
	})
}

// routePatternOrPath returns the chi route pattern if available, otherwise
// falls back to URL path. This avoids high-cardinality label values.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// MetricsSink bridges resolution outcomes into the Prometheus counters.
// Register it next to the recorder via resolver.MultiSink.
type MetricsSink struct{}

func (MetricsSink) Record(o types.ResolutionOutcome) {
	result := "success"
	backend := string(o.Winner)
	if o.Failed() {
		result = string(o.ErrKind)
		backend = "none"
	}
	resolutionsTotal.WithLabelValues(backend, result).Inc()
	resolutionDuration.WithLabelValues(backend).Observe(float64(o.DurationMS) / 1000)
	if o.HedgeLaunched {
		hedgeLaunchesTotal.Inc()
	}
	if o.HedgeSuppressed {
		hedgeSuppressionsTotal.Inc()
	}
}

// InflightPublisher tracks racing resolutions on a gauge. Start events
// increment; done events decrement. The orchestrator emits exactly one
// of each per call, including short-circuited ones.
type InflightPublisher struct{}

func (InflightPublisher) Publish(e resolver.Event) {
	switch e.Name {
	case resolver.EventResolveStart:
		resolutionsInflight.Inc()
	case resolver.EventResolveDone:
		resolutionsInflight.Dec()
	}
}

// fast integer to ascii for small set of status codes
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
