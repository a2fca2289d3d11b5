package extractor

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wader/goutubedl"

	"jukebot/internal/resolver"
	"jukebot/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultSlots       = 2
	defaultAcquireWait = 500 * time.Millisecond
	defaultExtractWait = 8 * time.Second
)

// Config wires the yt-dlp backend.
type Config struct {
	// BinaryPath of yt-dlp; empty keeps the goutubedl default ("yt-dlp"
	// from PATH). Set once at construction, it is process-global.
	BinaryPath string
	// Slots bounds concurrent extractions; defaulted when unset.
	Slots int
	// AcquireWait bounds the wait for a free slot; 0 applies the default,
	// negative fails immediately when saturated.
	AcquireWait time.Duration
	// ExtractTimeout is the per-extraction budget; defaulted when unset.
	ExtractTimeout time.Duration
	// CookiesFile is forwarded to yt-dlp for age-gated content (optional).
	CookiesFile string
	Logger      *zerolog.Logger
}

// Adapter resolves queries by running yt-dlp and parsing its JSON dump.
// Cancellation is best effort: the subprocess is signalled through ctx
// but a decided race may leave an extraction running to completion.
type Adapter struct {
	slots      chan struct{}
	wait       time.Duration
	extractTmo time.Duration
	cookies    string
	log        zerolog.Logger
}

// New constructs the yt-dlp resolver backend.
func New(cfg Config) *Adapter {
	if cfg.BinaryPath != "" {
		goutubedl.Path = cfg.BinaryPath
	}
	slots := cfg.Slots
	if slots <= 0 {
		slots = defaultSlots
	}
	wait := cfg.AcquireWait
	if wait == 0 {
		wait = defaultAcquireWait
	}
	extractTmo := cfg.ExtractTimeout
	if extractTmo <= 0 {
		extractTmo = defaultExtractWait
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Adapter{
		slots:      make(chan struct{}, slots),
		wait:       wait,
		extractTmo: extractTmo,
		cookies:    cfg.CookiesFile,
		log:        log,
	}
}

func (a *Adapter) ID() types.BackendID { return types.BackendYTDLP }

// Slots returns the pool size, for /status.
func (a *Adapter) Slots() int { return cap(a.slots) }

// Resolve extracts the query's metadata. Saturated slots surface as a
// backend-unavailable failure so the race can settle on the other side.
func (a *Adapter) Resolve(ctx context.Context, query string) (types.Track, error) {
	release, err := a.acquire(ctx)
	if err != nil {
		return types.Track{}, err
	}
	defer release()

	extCtx, cancel := context.WithTimeout(ctx, a.extractTmo)
	defer cancel()
	opts := goutubedl.Options{Type: goutubedl.TypeAny}
	if a.cookies != "" {
		opts.Cookies = a.cookies
	}
	started := time.Now()
	result, err := goutubedl.New(extCtx, query, opts)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return types.Track{}, resolver.ErrTimeout("extract", time.Since(started), cerr)
		}
		if extCtx.Err() != nil {
			return types.Track{}, resolver.ErrTimeout("extract", time.Since(started), extCtx.Err())
		}
		return types.Track{}, classify(err)
	}

	info := result.Info
	if info.Type == "playlist" || len(info.Entries) > 0 {
		if len(info.Entries) == 0 {
			return types.Track{}, resolver.ErrNoMatch(types.BackendYTDLP, query)
		}
		info = info.Entries[0]
	}
	if info.ID == "" && info.Title == "" {
		return types.Track{}, resolver.ErrNoMatch(types.BackendYTDLP, query)
	}
	a.log.Debug().Str("id", info.ID).Dur("took", time.Since(started)).Msg("ytdlp extracted")
	return trackFromInfo(info), nil
}

// acquire reserves a worker slot, waiting at most a.wait.
func (a *Adapter) acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, resolver.ErrTimeout("acquire", 0, err)
	}
	if a.wait < 0 {
		select {
		case a.slots <- struct{}{}:
			return func() { <-a.slots }, nil
		default:
			return nil, a.busy()
		}
	}
	timer := time.NewTimer(a.wait)
	defer timer.Stop()
	select {
	case a.slots <- struct{}{}:
		return func() { <-a.slots }, nil
	case <-ctx.Done():
		return nil, resolver.ErrTimeout("acquire", 0, ctx.Err())
	case <-timer.C:
		return nil, a.busy()
	}
}

func (a *Adapter) busy() error {
	return resolver.ErrBackendUnavailable(types.BackendYTDLP,
		errors.New("all extractor slots busy"))
}

// classify maps a goutubedl failure onto the taxonomy. A missing binary
// is an availability problem; everything else is an extraction failure
// whose message keeps the yt-dlp stderr for retry classification.
func classify(err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return resolver.ErrBackendUnavailable(types.BackendYTDLP, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "executable file not found") || strings.Contains(msg, "no such file") {
		return resolver.ErrBackendUnavailable(types.BackendYTDLP, err)
	}
	return resolver.ErrExtractionFailed(types.BackendYTDLP, err)
}

// trackFromInfo converts a yt-dlp info object into the domain track.
func trackFromInfo(info goutubedl.Info) types.Track {
	uri := info.WebpageURL
	if uri == "" {
		uri = info.URL
	}
	return types.Track{
		Identifier: info.ID,
		Title:      info.Title,
		Author:     info.Uploader,
		DurationMS: int64(info.Duration * 1000),
		URI:        uri,
		StreamURL:  bestStreamURL(info),
		Source:     sourceName(info.Extractor),
		ArtworkURL: info.Thumbnail,
		IsStream:   info.Duration == 0,
	}
}

// bestStreamURL picks a direct media URL. yt-dlp orders formats worst to
// best, so the scan runs from the end.
func bestStreamURL(info goutubedl.Info) string {
	for i := len(info.Formats) - 1; i >= 0; i-- {
		if u := info.Formats[i].URL; u != "" {
			return u
		}
	}
	return info.URL
}

// sourceName strips extractor qualifiers: "youtube:search" -> "youtube".
func sourceName(extractor string) string {
	s := strings.ToLower(extractor)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	return s
}
