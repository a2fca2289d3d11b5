package lavalink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"jukebot/internal/resolver"
	"jukebot/pkg/types"
)

const searchBody = `{
	"loadType": "search",
	"data": [{"encoded": "tok", "info": {
		"identifier": "abc", "title": "hit", "author": "someone",
		"length": 1000, "uri": "https://x", "sourceName": "youtube"
	}}]
}`

func newTestAdapter(t *testing.T, handler http.Handler, retry RetryPolicy) *Adapter {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	a, err := NewAdapter(AdapterConfig{
		Client: NewClient(ClientConfig{BaseURL: ts.URL}),
		Retry:  retry,
	})
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	return a
}

func TestAdapter_RetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(searchBody))
	})
	a := newTestAdapter(t, mux, RetryPolicy{MaxAttempts: 3, BaseDelay: 5 * time.Millisecond, MaxDelay: 20 * time.Millisecond})

	tr, err := a.Resolve(context.Background(), "ytsearch:hit")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tr.Title != "hit" || tr.Encoded != "tok" || tr.DurationMS != 1000 {
		t.Fatalf("unexpected track: %+v", tr)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("requests = %d, want 3", got)
	}
}

func TestAdapter_ExhaustsAttempts(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	a := newTestAdapter(t, mux, RetryPolicy{MaxAttempts: 3, BaseDelay: 5 * time.Millisecond, MaxDelay: 20 * time.Millisecond})

	_, err := a.Resolve(context.Background(), "ytsearch:hit")
	if !resolver.IsBackendUnavailable(err) {
		t.Fatalf("expected unavailable after exhausting retries, got %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("requests = %d, want 3", got)
	}
}

func TestAdapter_NonRetryableStopsImmediately(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad password", http.StatusUnauthorized)
	})
	a := newTestAdapter(t, mux, RetryPolicy{MaxAttempts: 3, BaseDelay: 5 * time.Millisecond})

	_, err := a.Resolve(context.Background(), "ytsearch:hit")
	if !resolver.IsBackendUnavailable(err) || resolver.Retryable(err) {
		t.Fatalf("expected permanent unavailable, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("requests = %d, want 1", got)
	}
}

func TestAdapter_NoMatchNotRetried(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"loadType": "empty", "data": null}`))
	})
	a := newTestAdapter(t, mux, RetryPolicy{MaxAttempts: 3, BaseDelay: 5 * time.Millisecond})

	_, err := a.Resolve(context.Background(), "ytsearch:nothing")
	if !resolver.IsNoMatch(err) {
		t.Fatalf("expected no-match, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("requests = %d, want 1", got)
	}
}

func TestAdapter_ContextCancelStopsBackoff(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	a := newTestAdapter(t, mux, RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 4 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := a.Resolve(ctx, "ytsearch:hit")
	if err == nil {
		t.Fatalf("expected failure")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("backoff ignored cancellation: %v", elapsed)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("requests = %d, want 1", got)
	}
	// the underlying failure is surfaced, not the bare context error
	if !resolver.IsBackendUnavailable(err) {
		t.Fatalf("expected the last attempt's error, got %v", err)
	}
}

func TestAdapter_RequestBudgetRetryable(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(searchBody))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	a, err := NewAdapter(AdapterConfig{
		Client:         NewClient(ClientConfig{BaseURL: ts.URL}),
		Retry:          RetryPolicy{MaxAttempts: 2, BaseDelay: 5 * time.Millisecond},
		RequestTimeout: 30 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	_, rerr := a.Resolve(context.Background(), "ytsearch:slow")
	if !resolver.IsBackendUnavailable(rerr) {
		t.Fatalf("blown request budget should classify unavailable, got %v", rerr)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("requests = %d, want 2 (budget failures retry)", got)
	}
}

func TestRetryPolicy_DelayProgression(t *testing.T) {
	p := RetryPolicy{BaseDelay: 100 * time.Millisecond, MaxDelay: 250 * time.Millisecond, MaxAttempts: 5}
	for i, want := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond} {
		if got := p.delay(i); got != want {
			t.Fatalf("delay(%d) = %v, want %v", i, got, want)
		}
	}
	// shifted past overflow the delay still caps
	if got := p.delay(62); got != p.MaxDelay {
		t.Fatalf("overflow delay = %v, want cap", got)
	}

	d := RetryPolicy{}.withDefaults()
	if d.MaxAttempts != 3 || d.BaseDelay != 500*time.Millisecond || d.MaxDelay != 4*time.Second {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}

func TestAdapter_ID(t *testing.T) {
	a := newTestAdapter(t, http.NewServeMux(), RetryPolicy{})
	if a.ID() != types.BackendLavalink {
		t.Fatalf("ID = %q", a.ID())
	}
}
