package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"jukebot/internal/diag"
	"jukebot/internal/queue"
	"jukebot/internal/resolver"
	"jukebot/pkg/types"
)

// responder is the slice of the interaction API the handlers use, so
// tests drive them without a gateway.
type responder interface {
	Respond(content string, ephemeral bool) error
	RespondEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error
	Defer(ephemeral bool) error
	Followup(content string) error
	FollowupEmbed(embed *discordgo.MessageEmbed) error
}

type handlerSet struct {
	resolver Resolver
	queues   *queue.Manager
	settings SettingsStore
	prober   *diag.Prober
	timeout  time.Duration
	log      zerolog.Logger
}

func (h *handlerSet) play(ctx context.Context, r responder, guildID, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.Respond("Give me a URL or something to search for.", true)
	}
	// Once the hedge fires a resolution can outlive the 3 second ack
	// window, so always defer.
	if err := r.Defer(false); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	outcome, err := h.resolver.Resolve(ctx, query, h.guildOptions(guildID)...)
	if err != nil {
		return r.Followup(failureMessage(err))
	}

	position := 0
	if h.queues != nil {
		if qerr := h.queues.Push(guildID, *outcome.Track); qerr != nil {
			if queue.IsQueueFull(qerr) {
				return r.Followup("The queue is full. Skip or remove something first.")
			}
			return r.Followup("Could not queue that track: " + qerr.Error())
		}
		position = h.queues.Len(guildID)
	}
	return r.FollowupEmbed(trackEmbed(outcome, position))
}

func (h *handlerSet) queue(r responder, guildID string) error {
	if h.queues == nil {
		return r.Respond("Queueing is not set up.", true)
	}
	tracks := h.queues.List(guildID, queueEmbedTracks)
	if len(tracks) == 0 {
		return r.Respond("The queue is empty. /play something.", false)
	}
	return r.RespondEmbed(queueEmbed(tracks, h.queues.Len(guildID)), false)
}

func (h *handlerSet) skip(r responder, guildID string) error {
	if h.queues == nil {
		return r.Respond("Queueing is not set up.", true)
	}
	skipped, ok := h.queues.Pop(guildID)
	if !ok {
		return r.Respond("Nothing to skip.", true)
	}
	if next, ok := h.queues.Peek(guildID); ok {
		return r.Respond(fmt.Sprintf("Skipped **%s**. Up next: **%s**.", skipped.Title, next.Title), false)
	}
	return r.Respond(fmt.Sprintf("Skipped **%s**. The queue is now empty.", skipped.Title), false)
}

func (h *handlerSet) nowPlaying(r responder, guildID string) error {
	if h.queues == nil {
		return r.Respond("Queueing is not set up.", true)
	}
	t, ok := h.queues.Peek(guildID)
	if !ok {
		return r.Respond("Nothing is queued.", true)
	}
	return r.RespondEmbed(nowPlayingEmbed(t), false)
}

func (h *handlerSet) replay(r responder, guildID string) error {
	if h.queues == nil {
		return r.Respond("Queueing is not set up.", true)
	}
	t, err := h.queues.ReplayLast(guildID)
	if err != nil {
		if queue.IsNoReplay(err) {
			return r.Respond("Nothing has played yet.", true)
		}
		if queue.IsQueueFull(err) {
			return r.Respond("The queue is full. Skip or remove something first.", true)
		}
		return r.Respond("Could not replay: "+err.Error(), true)
	}
	return r.Respond(fmt.Sprintf("**%s** will play next.", t.Title), false)
}

func (h *handlerSet) remove(r responder, guildID string, position int) error {
	if h.queues == nil {
		return r.Respond("Queueing is not set up.", true)
	}
	t, err := h.queues.Remove(guildID, position-1)
	if err != nil {
		return r.Respond(capitalize(err.Error())+".", true)
	}
	return r.Respond(fmt.Sprintf("Removed **%s** from position %d.", t.Title, position), false)
}

func (h *handlerSet) move(r responder, guildID string, from, to int) error {
	if h.queues == nil {
		return r.Respond("Queueing is not set up.", true)
	}
	t, err := h.queues.Move(guildID, from-1, to-1)
	if err != nil {
		return r.Respond(capitalize(err.Error())+".", true)
	}
	return r.Respond(fmt.Sprintf("Moved **%s** to position %d.", t.Title, to), false)
}

func (h *handlerSet) prefer(r responder, guildID, backend string) error {
	if h.settings == nil {
		return r.Respond("Per-server preferences need the store enabled; this deployment runs stateless.", true)
	}
	gs, err := h.settings.GetGuildSettings(guildID)
	if err != nil {
		return r.Respond("Could not load this server's settings: "+err.Error(), true)
	}
	switch backend {
	case "auto":
		gs.Primary = ""
	case string(types.BackendLavalink), string(types.BackendYTDLP):
		gs.Primary = backend
	default:
		return r.Respond("Unknown source "+backend+".", true)
	}
	if err := h.settings.PutGuildSettings(guildID, gs); err != nil {
		return r.Respond("Could not save the preference: "+err.Error(), true)
	}
	if backend == "auto" {
		return r.Respond("Source preference cleared; the bot default applies again.", true)
	}
	return r.Respond("This server now tries "+backend+" first.", true)
}

func (h *handlerSet) ytCheck(ctx context.Context, r responder) error {
	if h.prober == nil {
		return r.Respond("Diagnostics are not wired up.", true)
	}
	// Probes talk to the node and fork yt-dlp; defer past the ack
	// window.
	if err := r.Defer(true); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return r.FollowupEmbed(healthEmbed(h.prober.Run(ctx)))
}

// guildOptions turns persisted guild settings into per-call resolver
// options. Any lookup failure falls back to the bot defaults.
func (h *handlerSet) guildOptions(guildID string) []resolver.Option {
	if h.settings == nil {
		return nil
	}
	gs, err := h.settings.GetGuildSettings(guildID)
	if err != nil {
		h.log.Warn().Err(err).Str("guild", guildID).Msg("guild settings lookup failed")
		return nil
	}
	var opts []resolver.Option
	if id := types.BackendID(gs.Primary); id.Valid() {
		opts = append(opts, resolver.WithPrimary(id))
	}
	if gs.HedgeDelayMS != nil {
		opts = append(opts, resolver.WithHedgeDelay(time.Duration(*gs.HedgeDelayMS)*time.Millisecond))
	}
	return opts
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
