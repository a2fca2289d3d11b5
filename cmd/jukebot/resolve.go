package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"jukebot/internal/config"
	"jukebot/internal/daemon"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <query>",
		Short: "Resolve one query and print the outcome; no portal, no Discord",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			return resolveOnce(cfg, args[0], asJSON)
		},
	}
	cmd.Flags().Bool("json", false, "Print the full outcome as JSON")
	return cmd
}

func resolveOnce(cfg config.Config, query string, asJSON bool) error {
	// One-shot: no persistence, and never spawn a node; resolve against
	// whatever is already up, with the fallback covering the rest.
	cfg.StorePath = config.StoreDisabled
	cfg.Lavalink.Autostart = false

	log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	d, err := daemon.New(daemon.Options{Config: cfg, Logger: &log, Version: version})
	if err != nil {
		return err
	}
	defer d.Close()

	outcome, err := d.Resolve(context.Background(), query)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	t := outcome.Track
	line := t.Title
	if t.Author != "" {
		line += " by " + t.Author
	}
	fmt.Println(line)
	note := ""
	if outcome.HedgeLaunched && len(outcome.Attempts) > 0 && outcome.Winner != outcome.Attempts[0].Backend {
		note = ", fallback won"
	}
	fmt.Printf("via %s in %dms%s\n", outcome.Winner, outcome.DurationMS, note)
	fmt.Println(t.URI)
	return nil
}
