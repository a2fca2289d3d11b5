// Package discord is the gateway surface: one discordgo session, slash
// commands over the resolver/queue/diagnostics stack. Files by concern:
//
//   - bot.go: Bot type, session lifecycle, command registration.
//   - commands.go: slash command definitions and interaction dispatch.
//   - handlers.go: command handlers over the responder seam; no
//     discordgo session types, so tests drive them directly.
//   - embeds.go: embed builders and user-facing failure wording.
//
// Playback and voice are out of scope; the bot resolves, queues and
// reports.
package discord
