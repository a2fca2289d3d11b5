package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

const (
	cmdPlay       = "play"
	cmdQueue      = "queue"
	cmdSkip       = "skip"
	cmdNowPlaying = "nowplaying"
	cmdReplay     = "replay"
	cmdRemove     = "remove"
	cmdMove       = "move"
	cmdPrefer     = "prefer"
	cmdYTCheck    = "ytcheck"
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	minPos := float64(1)
	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdPlay,
			Description: "Queue a track from a URL or search text",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "URL or search text",
				Required:    true,
			}},
		},
		{
			Name:        cmdQueue,
			Description: "Show the next tracks in the queue",
		},
		{
			Name:        cmdSkip,
			Description: "Skip the track at the head of the queue",
		},
		{
			Name:        cmdNowPlaying,
			Description: "Show the current track",
		},
		{
			Name:        cmdReplay,
			Description: "Queue the last played track again",
		},
		{
			Name:        cmdRemove,
			Description: "Remove a queued track by its position",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "position",
				Description: "Position as shown by /queue",
				Required:    true,
				MinValue:    &minPos,
			}},
		},
		{
			Name:        cmdMove,
			Description: "Move a queued track to a new position",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "from",
					Description: "Current position",
					Required:    true,
					MinValue:    &minPos,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "to",
					Description: "New position",
					Required:    true,
					MinValue:    &minPos,
				},
			},
		},
		{
			Name:        cmdPrefer,
			Description: "Pick this server's preferred source",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "backend",
				Description: "Source to try first",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Lavalink", Value: "lavalink"},
					{Name: "yt-dlp", Value: "ytdlp"},
					{Name: "Auto (server default)", Value: "auto"},
				},
			}},
		},
		{
			Name:        cmdYTCheck,
			Description: "Run a health check across the music stack",
		},
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	rsp := &sessionResponder{s: s, i: i.Interaction}
	ctx := context.Background()

	// Everything except /ytcheck works on a guild queue.
	if i.GuildID == "" && data.Name != cmdYTCheck {
		if err := rsp.Respond("Run this in a server.", true); err != nil {
			b.log.Warn().Err(err).Msg("interaction respond failed")
		}
		return
	}

	var err error
	switch data.Name {
	case cmdPlay:
		err = b.handlers.play(ctx, rsp, i.GuildID, optString(data, "query"))
	case cmdQueue:
		err = b.handlers.queue(rsp, i.GuildID)
	case cmdSkip:
		err = b.handlers.skip(rsp, i.GuildID)
	case cmdNowPlaying:
		err = b.handlers.nowPlaying(rsp, i.GuildID)
	case cmdReplay:
		err = b.handlers.replay(rsp, i.GuildID)
	case cmdRemove:
		err = b.handlers.remove(rsp, i.GuildID, int(optInt(data, "position")))
	case cmdMove:
		err = b.handlers.move(rsp, i.GuildID, int(optInt(data, "from")), int(optInt(data, "to")))
	case cmdPrefer:
		err = b.handlers.prefer(rsp, i.GuildID, optString(data, "backend"))
	case cmdYTCheck:
		err = b.handlers.ytCheck(ctx, rsp)
	default:
		return
	}
	if err != nil {
		b.log.Warn().Err(err).Str("command", data.Name).Msg("interaction respond failed")
	}
}

func optString(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, o := range data.Options {
		if o.Name == name {
			return o.StringValue()
		}
	}
	return ""
}

func optInt(data discordgo.ApplicationCommandInteractionData, name string) int64 {
	for _, o := range data.Options {
		if o.Name == name {
			return o.IntValue()
		}
	}
	return 0
}

// sessionResponder adapts an interaction to the responder seam the
// handlers are written against.
type sessionResponder struct {
	s *discordgo.Session
	i *discordgo.Interaction
}

func (r *sessionResponder) Respond(content string, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (r *sessionResponder) RespondEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (r *sessionResponder) Defer(ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func (r *sessionResponder) Followup(content string) error {
	_, err := r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{Content: content})
	return err
}

func (r *sessionResponder) FollowupEmbed(embed *discordgo.MessageEmbed) error {
	_, err := r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	return err
}
