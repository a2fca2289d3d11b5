package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"jukebot/internal/diag"
	"jukebot/internal/queue"
	"jukebot/internal/resolver"
	"jukebot/internal/store"
	"jukebot/pkg/types"
)

const defaultResolveTimeout = 30 * time.Second

// Resolver is the slice of the orchestrator the handlers need.
// *resolver.Orchestrator satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, query string, opts ...resolver.Option) (types.ResolutionOutcome, error)
}

// SettingsStore persists per-guild overrides. *store.Store satisfies
// it; a nil store turns /prefer into a polite no.
type SettingsStore interface {
	GetGuildSettings(guildID string) (store.GuildSettings, error)
	PutGuildSettings(guildID string, gs store.GuildSettings) error
}

// Options wires a Bot. Token and Resolver are required.
type Options struct {
	Token string
	// GuildID scopes command registration to a single guild, which
	// propagates instantly; empty registers globally.
	GuildID  string
	Resolver Resolver
	Queues   *queue.Manager
	Settings SettingsStore
	Prober   *diag.Prober
	Logger   *zerolog.Logger
	// ResolveTimeout bounds a single /play resolution end to end.
	ResolveTimeout time.Duration
}

// Bot owns the gateway session and the slash-command surface.
type Bot struct {
	session  *discordgo.Session
	handlers *handlerSet
	guildID  string
	log      zerolog.Logger

	mu         sync.Mutex
	connected  bool
	registered bool
	commands   []*discordgo.ApplicationCommand
}

func New(opts Options) (*Bot, error) {
	if opts.Token == "" {
		return nil, errTokenRequired
	}
	if opts.Resolver == nil {
		return nil, errResolverRequired
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	timeout := opts.ResolveTimeout
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}

	session, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		session: session,
		guildID: opts.GuildID,
		log:     log,
		handlers: &handlerSet{
			resolver: opts.Resolver,
			queues:   opts.Queues,
			settings: opts.Settings,
			prober:   opts.Prober,
			timeout:  timeout,
			log:      log,
		},
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onDisconnect)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Start opens the gateway connection. Command registration happens on
// the first Ready event.
func (b *Bot) Start() error {
	return b.session.Open()
}

// Close deletes the registered commands (best effort) and drops the
// gateway connection.
func (b *Bot) Close() error {
	b.mu.Lock()
	cmds := b.commands
	b.commands = nil
	b.mu.Unlock()

	if len(cmds) > 0 && b.session.State != nil && b.session.State.User != nil {
		appID := b.session.State.User.ID
		for _, cmd := range cmds {
			if err := b.session.ApplicationCommandDelete(appID, b.guildID, cmd.ID); err != nil {
				b.log.Warn().Err(err).Str("command", cmd.Name).Msg("command cleanup failed")
			}
		}
	}
	return b.session.Close()
}

// Status reports gateway state for /status.
func (b *Bot) Status() types.DiscordStatus {
	b.mu.Lock()
	connected := b.connected
	b.mu.Unlock()

	st := types.DiscordStatus{Connected: connected}
	if b.session.State != nil {
		st.Guilds = len(b.session.State.Guilds)
	}
	return st
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.mu.Lock()
	b.connected = true
	first := !b.registered
	b.registered = true
	b.mu.Unlock()

	b.log.Info().Str("user", s.State.User.Username).Msg("gateway ready")
	if first {
		// Registration is a batch of REST calls; keep it off the
		// event loop.
		go b.registerCommands(s)
	}
}

func (b *Bot) onDisconnect(*discordgo.Session, *discordgo.Disconnect) {
	b.mu.Lock()
	b.connected = false
	b.mu.Unlock()
	b.log.Warn().Msg("gateway disconnected")
}

func (b *Bot) registerCommands(s *discordgo.Session) {
	defs := commandDefinitions()
	created := make([]*discordgo.ApplicationCommand, 0, len(defs))
	appID := s.State.User.ID
	for _, def := range defs {
		cmd, err := s.ApplicationCommandCreate(appID, b.guildID, def)
		if err != nil {
			b.log.Error().Err(err).Str("command", def.Name).Msg("command registration failed")
			continue
		}
		created = append(created, cmd)
	}
	b.mu.Lock()
	b.commands = created
	b.mu.Unlock()

	scope := "global"
	if b.guildID != "" {
		scope = b.guildID
	}
	b.log.Info().Int("count", len(created)).Str("scope", scope).Msg("slash commands registered")
}
