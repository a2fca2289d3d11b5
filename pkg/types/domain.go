package types

// BackendID identifies a resolution backend.
type BackendID string

const (
	// BackendLavalink resolves through a Lavalink node's REST API.
	BackendLavalink BackendID = "lavalink"
	// BackendYTDLP resolves through a local yt-dlp subprocess.
	BackendYTDLP BackendID = "ytdlp"
)

// Valid reports whether id names a known backend.
func (id BackendID) Valid() bool {
	return id == BackendLavalink || id == BackendYTDLP
}

// Other returns the counterpart backend. The resolver races exactly two
// backends, so the secondary is always "the other one".
func (id BackendID) Other() BackendID {
	if id == BackendLavalink {
		return BackendYTDLP
	}
	return BackendLavalink
}

// ErrorKind classifies a resolution failure.
type ErrorKind string

const (
	// ErrorKindNone marks a successful resolution.
	ErrorKindNone ErrorKind = ""
	// ErrorKindBackendUnavailable: the backend could not be reached or
	// refused service (node down, auth rejected, worker pool saturated).
	ErrorKindBackendUnavailable ErrorKind = "backend_unavailable"
	// ErrorKindNoMatch: the query was handled but produced zero results.
	ErrorKindNoMatch ErrorKind = "no_match"
	// ErrorKindExtractionFailed: the backend was reached but extraction
	// errored (throttling, age gate, broken extractor).
	ErrorKindExtractionFailed ErrorKind = "extraction_failed"
	// ErrorKindTimeout: a per-attempt or overall deadline elapsed.
	ErrorKindTimeout ErrorKind = "timeout"
)

// Track is the playable metadata a backend resolves a query into.
type Track struct {
	// Stable identifier within the source (video id, etc).
	// example: dQw4w9WgXcQ
	Identifier string `json:"identifier,omitempty" example:"dQw4w9WgXcQ"`
	// Track title.
	// example: Never Gonna Give You Up
	Title string `json:"title" example:"Never Gonna Give You Up"`
	// Uploader or artist.
	// example: Rick Astley
	Author string `json:"author,omitempty" example:"Rick Astley"`
	// Duration in milliseconds; 0 for live streams.
	// example: 212000
	DurationMS int64 `json:"duration_ms" example:"212000"`
	// Canonical page URL.
	// example: https://www.youtube.com/watch?v=dQw4w9WgXcQ
	URI string `json:"uri" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
	// Direct stream URL when the backend exposes one (yt-dlp does,
	// Lavalink keeps it node-side).
	StreamURL string `json:"stream_url,omitempty"`
	// Source name reported by the backend (youtube, soundcloud, ...).
	// example: youtube
	Source string `json:"source,omitempty" example:"youtube"`
	// Thumbnail/artwork URL.
	ArtworkURL string `json:"artwork_url,omitempty"`
	// True for live streams.
	IsStream bool `json:"is_stream,omitempty"`
	// Backend that produced this track.
	// example: lavalink
	ResolvedBy BackendID `json:"resolved_by,omitempty" example:"lavalink"`
	// Opaque Lavalink track token, required to play through the node.
	Encoded string `json:"encoded,omitempty"`
}

// BackendAttempt records one backend's participation in a resolution.
type BackendAttempt struct {
	// Backend that was launched.
	// example: lavalink
	Backend BackendID `json:"backend" example:"lavalink"`
	// Launch offset from the start of the resolution, in milliseconds.
	// 0 for the primary; the hedge delay (or the primary's fail time)
	// for the secondary.
	// example: 1500
	StartOffsetMS int64 `json:"start_offset_ms" example:"1500"`
	// Wall time the attempt ran for, in milliseconds.
	// example: 240
	DurationMS int64 `json:"duration_ms" example:"240"`
	// Failure message, empty on success or when the attempt was
	// abandoned after the race was decided.
	Err string `json:"err,omitempty"`
	// Failure classification.
	ErrKind ErrorKind `json:"err_kind,omitempty"`
}

// ResolutionOutcome is the single record emitted per resolver call.
type ResolutionOutcome struct {
	// Request id (UUID).
	// example: 8f14e45f-ceea-4672-a2d5-6ad4f87124c0
	ID string `json:"id" example:"8f14e45f-ceea-4672-a2d5-6ad4f87124c0"`
	// Normalized query the backends received.
	// example: ytsearch:never gonna give you up
	Query string `json:"query" example:"ytsearch:never gonna give you up"`
	// Winning backend; empty when the resolution failed.
	// example: lavalink
	Winner BackendID `json:"winner,omitempty" example:"lavalink"`
	// Resolved track; nil when the resolution failed.
	Track *Track `json:"track,omitempty"`
	// Per-backend attempts, primary first. Only launched backends appear.
	Attempts []BackendAttempt `json:"attempts"`
	// True when the secondary was launched at all.
	HedgeLaunched bool `json:"hedge_launched"`
	// True when the primary won before the hedge timer fired, so the
	// secondary was never launched.
	HedgeSuppressed bool `json:"hedge_suppressed"`
	// True when the source cache promoted a previous winner to primary
	// for this call.
	CachePinned bool `json:"cache_pinned,omitempty"`
	// Total resolution wall time in milliseconds.
	// example: 240
	DurationMS int64 `json:"duration_ms" example:"240"`
	// Failure classification; empty on success.
	ErrKind ErrorKind `json:"err_kind,omitempty"`
	// Failure message; empty on success.
	Err string `json:"err,omitempty"`
	// Start of the resolution in unix milliseconds.
	StartedAtUnixMS int64 `json:"started_at_unix_ms"`
}

// Failed reports whether the resolution ended in an error.
func (o ResolutionOutcome) Failed() bool { return o.ErrKind != ErrorKindNone }
