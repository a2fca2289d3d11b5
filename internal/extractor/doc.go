// Package extractor resolves queries through a local yt-dlp subprocess.
//
// Files:
// - extractor.go: resolver backend with a bounded worker-slot pool and
//   yt-dlp JSON extraction via goutubedl
// - version.go: yt-dlp presence/version probe
package extractor
