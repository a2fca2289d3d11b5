package discord

import (
	"strings"
	"testing"

	"jukebot/pkg/types"
)

func TestFormatDuration(t *testing.T) {
	cases := map[int64]string{
		212000:  "3:32",
		3725000: "1:02:05",
		59000:   "0:59",
		600000:  "10:00",
	}
	for ms, want := range cases {
		if got := formatDuration(ms); got != want {
			t.Fatalf("formatDuration(%d) = %q, want %q", ms, got, want)
		}
	}
}

func TestTrackLength_LiveStreams(t *testing.T) {
	if got := trackLength(&types.Track{IsStream: true, DurationMS: 0}); got != "live" {
		t.Fatalf("got %q", got)
	}
	if got := trackLength(&types.Track{DurationMS: 0}); got != "live" {
		t.Fatalf("zero duration: got %q", got)
	}
}

func TestTrackEmbed_HedgeFooter(t *testing.T) {
	o := types.ResolutionOutcome{
		Winner: types.BackendYTDLP,
		Track:  &types.Track{Title: "song", URI: "u"},
		Attempts: []types.BackendAttempt{
			{Backend: types.BackendLavalink},
			{Backend: types.BackendYTDLP},
		},
		HedgeLaunched: true,
		DurationMS:    1800,
	}
	e := trackEmbed(o, 3)
	if e.Footer == nil || !strings.Contains(e.Footer.Text, "fallback won the race") {
		t.Fatalf("footer = %+v", e.Footer)
	}
	found := false
	for _, f := range e.Fields {
		if f.Name == "Position" && f.Value == "3" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing position field: %+v", e.Fields)
	}
}

func TestTrackEmbed_PrimaryWinHasNoHedgeNote(t *testing.T) {
	o := types.ResolutionOutcome{
		Winner:   types.BackendLavalink,
		Track:    &types.Track{Title: "song", URI: "u"},
		Attempts: []types.BackendAttempt{{Backend: types.BackendLavalink}},
	}
	e := trackEmbed(o, 0)
	if strings.Contains(e.Footer.Text, "fallback") {
		t.Fatalf("footer = %q", e.Footer.Text)
	}
}

func TestQueueEmbed_TruncatesWithRemainder(t *testing.T) {
	tracks := make([]types.Track, queueEmbedTracks)
	for i := range tracks {
		tracks[i] = types.Track{Title: "t", URI: "u", DurationMS: 1000}
	}
	e := queueEmbed(tracks, 12)
	if e.Title != "Queue (12)" {
		t.Fatalf("title = %q", e.Title)
	}
	if !strings.Contains(e.Description, "and 2 more") {
		t.Fatalf("description = %q", e.Description)
	}
}

func TestHealthEmbed(t *testing.T) {
	healthy := types.DiagnosticsReport{
		NodeReachable: true,
		NodeVersion:   "4.0.8",
		NodeLatencyMS: 12,
		YTDLPPresent:  true,
		YTDLPVersion:  "2025.06.09",
	}
	e := healthEmbed(healthy)
	if e.Color != colorOK {
		t.Fatalf("color = %#x", e.Color)
	}

	sick := types.DiagnosticsReport{
		NodeError:  "connection refused",
		YTDLPError: "binary not found",
		CookieFile: "/etc/jukebot/cookies.txt",
		// Missing file.
		CookieAgeSeconds: -1,
	}
	e = healthEmbed(sick)
	if e.Color != colorWarn {
		t.Fatalf("color = %#x", e.Color)
	}
	var nodeVal, cookieVal string
	for _, f := range e.Fields {
		switch f.Name {
		case "Lavalink":
			nodeVal = f.Value
		case "Cookies":
			cookieVal = f.Value
		}
	}
	if !strings.Contains(nodeVal, "connection refused") {
		t.Fatalf("node field = %q", nodeVal)
	}
	if !strings.Contains(cookieVal, "missing") {
		t.Fatalf("cookie field = %q", cookieVal)
	}
}

func TestFormatAge(t *testing.T) {
	cases := map[int64]string{
		30:     "30s",
		90:     "1m",
		7200:   "2h",
		172800: "2d",
	}
	for secs, want := range cases {
		if got := formatAge(secs); got != want {
			t.Fatalf("formatAge(%d) = %q, want %q", secs, got, want)
		}
	}
}
