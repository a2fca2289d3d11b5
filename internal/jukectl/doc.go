// Package jukectl implements the operator CLI: node readiness checks,
// canary resolutions against a running daemon, extractor probes and
// effective-config printing. Output goes to stdout; this is console
// tooling, not a service.
package jukectl
