package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"jukebot/internal/config"
	"jukebot/internal/daemon"
	"jukebot/internal/discord"
	"jukebot/internal/httpapi"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daemon: operator API plus the Discord session when a token is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTP.Addr = addr
			}
			if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
				cfg.Log.Pretty = true
			}
			return runDaemon(cfg)
		},
	}
	cmd.Flags().String("addr", "", "Operator API listen address, overrides config")
	cmd.Flags().Bool("pretty", false, "Human-readable console logs instead of JSON")
	return cmd
}

func runDaemon(cfg config.Config) error {
	ring := httpapi.NewLogRing(0)
	log := newLogger(cfg.Log, ring)

	d, err := daemon.New(daemon.Options{Config: cfg, Logger: &log, Version: version})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		d.Close()
		return err
	}

	mux := httpapi.NewMux(httpapi.Options{
		Service:     d,
		Logger:      &log,
		LogRing:     ring,
		BaseContext: ctx,
	})
	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: mux}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("operator api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	var bot *discord.Bot
	if cfg.Discord.Enabled() {
		bot, err = discord.New(discord.Options{
			Token:    cfg.Discord.Token,
			GuildID:  cfg.Discord.GuildID,
			Resolver: d.Orchestrator(),
			Queues:   d.Queues(),
			Settings: settingsStore(d),
			Prober:   d.Prober(),
			Logger:   &log,
		})
		if err != nil {
			log.Error().Err(err).Msg("discord setup failed")
			return err
		}
		if err := bot.Start(); err != nil {
			log.Error().Err(err).Msg("discord connect failed")
			return err
		}
		d.SetDiscordStatus(bot.Status)
	} else {
		log.Info().Msg("no discord token, running headless")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	// Gateway first so no new interactions arrive, then abort in-flight
	// resolutions, drain the portal, and finally the node and store.
	if bot != nil {
		if err := bot.Close(); err != nil {
			log.Warn().Err(err).Msg("discord close error")
		}
	}
	cancel()
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := d.Close(); err != nil {
		log.Warn().Err(err).Msg("daemon close error")
	}
	return nil
}

func newLogger(lc config.LogConfig, ring *httpapi.LogRing) zerolog.Logger {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var console io.Writer = os.Stderr
	if lc.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(zerolog.MultiLevelWriter(console, ring)).
		Level(level).With().Timestamp().Logger()
}

// settingsStore narrows the daemon's optional store for the gateway,
// keeping the nil check on the concrete type.
func settingsStore(d *daemon.Daemon) discord.SettingsStore {
	if d.Store() == nil {
		return nil
	}
	return d.Store()
}
