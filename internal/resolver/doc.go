// Package resolver races two track-resolution backends with a hedged
// launch policy and emits exactly one outcome record per call. It is
// structured into small files by concern:
//
//   - resolver.go: Orchestrator, Config, per-call race loop.
//   - errors.go: error taxonomy and helpers (KindOf, Retryable).
//   - events.go: lifecycle event names, EventPublisher.
//   - eventpub_log.go / eventpub_memory.go: zerolog and in-memory publishers.
//   - normalize.go: query normalization shared by both backends.
//   - cache.go: source cache (query -> last winning backend).
//   - sink.go: OutcomeSink plumbing (noop, fan-out).
//
// External packages should construct backends (internal/lavalink,
// internal/extractor), pass them to New, and treat the outcome record as
// the API for diagnostics and metrics.
package resolver
