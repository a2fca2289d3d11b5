package discord

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"jukebot/internal/resolver"
	"jukebot/pkg/types"
)

const (
	colorTrack = 0x5865f2
	colorOK    = 0x2ecc71
	colorWarn  = 0xe67e22
)

// queueEmbedTracks caps how many entries /queue renders.
const queueEmbedTracks = 10

func trackEmbed(o types.ResolutionOutcome, position int) *discordgo.MessageEmbed {
	t := o.Track
	e := &discordgo.MessageEmbed{
		Title:       "Queued",
		Description: fmt.Sprintf("[%s](%s)", t.Title, t.URI),
		Color:       colorTrack,
	}
	if t.ArtworkURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: t.ArtworkURL}
	}
	if t.Author != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Artist", Value: t.Author, Inline: true})
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Length", Value: trackLength(t), Inline: true})
	if position > 0 {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Position", Value: strconv.Itoa(position), Inline: true})
	}
	e.Footer = &discordgo.MessageEmbedFooter{Text: resolvedVia(o)}
	return e
}

func nowPlayingEmbed(t types.Track) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       "Now playing",
		Description: fmt.Sprintf("[%s](%s)", t.Title, t.URI),
		Color:       colorTrack,
	}
	if t.ArtworkURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: t.ArtworkURL}
	}
	if t.Author != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Artist", Value: t.Author, Inline: true})
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Length", Value: trackLength(&t), Inline: true})
	if t.ResolvedBy != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: "via " + string(t.ResolvedBy)}
	}
	return e
}

func queueEmbed(tracks []types.Track, total int) *discordgo.MessageEmbed {
	var b strings.Builder
	for i, t := range tracks {
		fmt.Fprintf(&b, "%d. [%s](%s) `%s`\n", i+1, t.Title, t.URI, trackLength(&t))
	}
	if total > len(tracks) {
		fmt.Fprintf(&b, "… and %d more", total-len(tracks))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Queue (%d)", total),
		Description: b.String(),
		Color:       colorTrack,
	}
}

func healthEmbed(rep types.DiagnosticsReport) *discordgo.MessageEmbed {
	color := colorOK
	if !rep.NodeReachable || !rep.YTDLPPresent {
		color = colorWarn
	}
	e := &discordgo.MessageEmbed{Title: "Music stack health", Color: color}

	node := "❌ unreachable"
	if rep.NodeError != "" {
		node = "❌ " + rep.NodeError
	}
	if rep.NodeReachable {
		node = fmt.Sprintf("✅ v%s (%dms)", rep.NodeVersion, rep.NodeLatencyMS)
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Lavalink", Value: node})

	if rep.YouTubePlugin != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "YouTube plugin", Value: rep.YouTubePlugin, Inline: true})
	}

	yt := "❌ missing"
	if rep.YTDLPError != "" {
		yt = "❌ " + rep.YTDLPError
	}
	if rep.YTDLPPresent {
		yt = "✅ " + rep.YTDLPVersion
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "yt-dlp", Value: yt})

	if rep.CookieFile != "" {
		age := "missing"
		if rep.CookieAgeSeconds >= 0 {
			age = formatAge(rep.CookieAgeSeconds) + " old"
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:  "Cookies",
			Value: fmt.Sprintf("%s (%s)", filepath.Base(rep.CookieFile), age),
		})
	}
	return e
}

// failureMessage words a resolution failure for the channel.
func failureMessage(err error) string {
	switch resolver.KindOf(err) {
	case types.ErrorKindNoMatch:
		return "No tracks matched that."
	case types.ErrorKindTimeout:
		return "The search timed out. Try again in a moment."
	case types.ErrorKindBackendUnavailable:
		return "Both sources are unreachable right now. Try /ytcheck to see what is down."
	default:
		return "Could not extract that track. The source may be rate limiting; try again, or use a direct link."
	}
}

func resolvedVia(o types.ResolutionOutcome) string {
	s := fmt.Sprintf("resolved via %s in %dms", o.Winner, o.DurationMS)
	if o.HedgeLaunched && len(o.Attempts) > 0 && o.Winner != o.Attempts[0].Backend {
		s += " (fallback won the race)"
	}
	return s
}

func trackLength(t *types.Track) string {
	if t.IsStream || t.DurationMS <= 0 {
		return "live"
	}
	return formatDuration(t.DurationMS)
}

func formatDuration(ms int64) string {
	secs := ms / 1000
	h, m, s := secs/3600, (secs/60)%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatAge(secs int64) string {
	switch {
	case secs >= 86400:
		return fmt.Sprintf("%dd", secs/86400)
	case secs >= 3600:
		return fmt.Sprintf("%dh", secs/3600)
	case secs >= 60:
		return fmt.Sprintf("%dm", secs/60)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
