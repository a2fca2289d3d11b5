package lavalink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jukebot/internal/resolver"
	"jukebot/pkg/types"
)

// Defaults applied when corresponding ClientConfig fields are unset.
const (
	defaultConnectTimeout = 3 * time.Second
	defaultRequestTimeout = 5 * time.Second
)

// ClientConfig describes how to reach a Lavalink node.
type ClientConfig struct {
	// BaseURL of the node, e.g. http://127.0.0.1:2333.
	BaseURL string
	// Password sent verbatim in the Authorization header.
	Password string
	// ConnectTimeout bounds dialing; defaulted when unset.
	ConnectTimeout time.Duration
	// RequestTimeout is the per-request budget applied by callers that do
	// not carry their own deadline; defaulted when unset.
	RequestTimeout time.Duration
}

// Client is a minimal Lavalink v4 REST client. All calls take a context;
// the client itself sets no timeout.
type Client struct {
	baseURL    string
	password   string
	reqTimeout time.Duration
	httpClient *http.Client
}

// NewClient constructs a Client for the node at cfg.BaseURL.
func NewClient(cfg ClientConfig) *Client {
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = defaultConnectTimeout
	}
	reqTimeout := cfg.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = defaultRequestTimeout
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connect,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	// Timeout stays 0: every request carries a context deadline.
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		password:   cfg.Password,
		reqTimeout: reqTimeout,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
	}
}

// BaseURL returns the configured node address.
func (c *Client) BaseURL() string { return c.baseURL }

// RequestTimeout returns the per-request budget for callers that need to
// derive their own deadline.
func (c *Client) RequestTimeout() time.Duration { return c.reqTimeout }

// Info is the subset of GET /v4/info the bot cares about.
type Info struct {
	Version struct {
		Semver string `json:"semver"`
	} `json:"version"`
	JVM            string   `json:"jvm"`
	Lavaplayer     string   `json:"lavaplayer"`
	SourceManagers []string `json:"sourceManagers"`
	Plugins        []Plugin `json:"plugins"`
}

// Plugin names one plugin loaded on the node.
type Plugin struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Stats is the subset of GET /v4/stats the bot cares about.
type Stats struct {
	Players        int   `json:"players"`
	PlayingPlayers int   `json:"playingPlayers"`
	UptimeMS       int64 `json:"uptime"`
	Memory         struct {
		Free      int64 `json:"free"`
		Used      int64 `json:"used"`
		Allocated int64 `json:"allocated"`
	} `json:"memory"`
	CPU struct {
		Cores        int     `json:"cores"`
		SystemLoad   float64 `json:"systemLoad"`
		LavalinkLoad float64 `json:"lavalinkLoad"`
	} `json:"cpu"`
}

// LoadType discriminates the GET /v4/loadtracks response payload.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeSearch   LoadType = "search"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

// Track is a node-side track: the opaque encoded token plus metadata.
type Track struct {
	Encoded string    `json:"encoded"`
	Info    TrackInfo `json:"info"`
}

// TrackInfo mirrors the node's track info object.
type TrackInfo struct {
	Identifier string `json:"identifier"`
	IsSeekable bool   `json:"isSeekable"`
	Author     string `json:"author"`
	Length     int64  `json:"length"`
	IsStream   bool   `json:"isStream"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	SourceName string `json:"sourceName"`
	ArtworkURL string `json:"artworkUrl"`
}

// Loaded is the flattened loadtracks result for load types that carry
// tracks. Error-ish load types surface as errors instead.
type Loaded struct {
	Type LoadType
	// Tracks in node order; never empty.
	Tracks []Track
	// PlaylistName and SelectedIndex are set for playlist loads.
	// SelectedIndex is -1 when the node marked no selection.
	PlaylistName  string
	SelectedIndex int
}

// Selected returns the track playback should start with.
func (l Loaded) Selected() Track {
	if l.Type == LoadTypePlaylist && l.SelectedIndex >= 0 && l.SelectedIndex < len(l.Tracks) {
		return l.Tracks[l.SelectedIndex]
	}
	return l.Tracks[0]
}

type loadResponse struct {
	LoadType LoadType        `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

type playlistData struct {
	Info struct {
		Name          string `json:"name"`
		SelectedTrack int    `json:"selectedTrack"`
	} `json:"info"`
	Tracks []Track `json:"tracks"`
}

type exceptionData struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Cause    string `json:"cause"`
}

// Version fetches GET /version; the node answers with a bare string.
func (c *Client) Version(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// NodeInfo fetches GET /v4/info.
func (c *Client) NodeInfo(ctx context.Context) (Info, error) {
	var info Info
	err := c.getJSON(ctx, "/v4/info", &info)
	return info, err
}

// NodeStats fetches GET /v4/stats.
func (c *Client) NodeStats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := c.getJSON(ctx, "/v4/stats", &stats)
	return stats, err
}

// LoadTracks resolves identifier through GET /v4/loadtracks. Zero-result
// loads return a no-match error; node-side exceptions map onto the
// taxonomy by severity.
func (c *Client) LoadTracks(ctx context.Context, identifier string) (Loaded, error) {
	var lr loadResponse
	path := "/v4/loadtracks?identifier=" + url.QueryEscape(identifier)
	if err := c.getJSON(ctx, path, &lr); err != nil {
		return Loaded{}, err
	}
	switch lr.LoadType {
	case LoadTypeTrack:
		var t Track
		if err := json.Unmarshal(lr.Data, &t); err != nil {
			return Loaded{}, resolver.ErrExtractionFailed(types.BackendLavalink, fmt.Errorf("decode track: %w", err))
		}
		return Loaded{Type: lr.LoadType, Tracks: []Track{t}, SelectedIndex: -1}, nil
	case LoadTypeSearch:
		var ts []Track
		if err := json.Unmarshal(lr.Data, &ts); err != nil {
			return Loaded{}, resolver.ErrExtractionFailed(types.BackendLavalink, fmt.Errorf("decode search: %w", err))
		}
		if len(ts) == 0 {
			return Loaded{}, resolver.ErrNoMatch(types.BackendLavalink, identifier)
		}
		return Loaded{Type: lr.LoadType, Tracks: ts, SelectedIndex: -1}, nil
	case LoadTypePlaylist:
		var pl playlistData
		if err := json.Unmarshal(lr.Data, &pl); err != nil {
			return Loaded{}, resolver.ErrExtractionFailed(types.BackendLavalink, fmt.Errorf("decode playlist: %w", err))
		}
		if len(pl.Tracks) == 0 {
			return Loaded{}, resolver.ErrNoMatch(types.BackendLavalink, identifier)
		}
		return Loaded{
			Type:          lr.LoadType,
			Tracks:        pl.Tracks,
			PlaylistName:  pl.Info.Name,
			SelectedIndex: pl.Info.SelectedTrack,
		}, nil
	case LoadTypeEmpty:
		return Loaded{}, resolver.ErrNoMatch(types.BackendLavalink, identifier)
	case LoadTypeError:
		var ex exceptionData
		_ = json.Unmarshal(lr.Data, &ex)
		cause := fmt.Errorf("%s (severity %s)", ex.Message, ex.Severity)
		if strings.EqualFold(ex.Severity, "fault") {
			return Loaded{}, resolver.ErrBackendUnavailable(types.BackendLavalink, cause)
		}
		return Loaded{}, resolver.ErrExtractionFailed(types.BackendLavalink, cause)
	default:
		return Loaded{}, resolver.ErrExtractionFailed(types.BackendLavalink, fmt.Errorf("unknown loadType %q", lr.LoadType))
	}
}

// get performs one GET and returns the body for 2xx responses; every
// failure comes back pre-classified for the taxonomy.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, resolver.ErrBackendUnavailable(types.BackendLavalink, err)
	}
	if c.password != "" {
		req.Header.Set("Authorization", c.password)
	}
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, resolver.ErrTimeout("lavalink "+path, time.Since(started), ctx.Err())
		}
		return nil, resolver.ErrBackendUnavailable(types.BackendLavalink, err)
	}
	defer resp.Body.Close()
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, resolver.ErrAuthRejected(types.BackendLavalink, fmt.Errorf("%s: %s", resp.Status, bodyTail(body)))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, resolver.ErrBackendUnavailable(types.BackendLavalink, fmt.Errorf("%s: %s", resp.Status, bodyTail(body)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, resolver.ErrExtractionFailed(types.BackendLavalink, fmt.Errorf("%s: %s", resp.Status, bodyTail(body)))
	}
	if readErr != nil {
		if ctx.Err() != nil {
			return nil, resolver.ErrTimeout("lavalink "+path, time.Since(started), ctx.Err())
		}
		return nil, resolver.ErrBackendUnavailable(types.BackendLavalink, readErr)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resolver.ErrExtractionFailed(types.BackendLavalink, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func bodyTail(b []byte) string {
	const max = 512
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		s = s[:max]
	}
	return s
}
