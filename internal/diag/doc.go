// Package diag keeps resolution diagnostics: a bounded in-memory ring
// of recent outcomes with aggregate summaries (recorder.go), and an
// on-demand environment probe covering the node, yt-dlp, and cookies
// (probe.go). Nothing here persists; a restart starts clean.
package diag
