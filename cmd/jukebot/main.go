package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"jukebot/internal/config"
)

// Overridden at build time via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "0.3.0-dev"
	commit  = "unknown"
)

func main() {
	// .env is a dev convenience; absence is fine.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jukebot",
		Short:         "Hedged track resolution for Discord: Lavalink primary, yt-dlp fallback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", os.Getenv("JUKEBOT_CONFIG"),
		"Config file (.yaml/.json/.toml); empty runs from env and defaults")
	root.AddCommand(newRunCmd(), newResolveCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("jukebot %s (%s)\n", version, commit)
		},
	}
}

// loadConfig resolves the layered configuration: file, then env, then
// defaults. Flag overrides are applied by the callers on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return config.FromEnv(cfg).ApplyDefaults(), nil
}
