package jukectl

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Config carries the flags shared across subcommands.
type Config struct {
	// ConfigPath points at the same bot config file the daemon reads,
	// so node/ytdlp/env commands see identical settings.
	ConfigPath string
	// DaemonURL is the operator API base the canary talks to.
	DaemonURL string
	LogLvl    string
}

// Execute runs the CLI and exits nonzero on error.
func Execute() {
	cfg := &Config{
		ConfigPath: os.Getenv("JUKEBOT_CONFIG"),
		DaemonURL:  envStr("JUKEBOT_DAEMON_URL", "http://127.0.0.1:8090"),
		LogLvl:     envStr("JUKECTL_LOG_LEVEL", "info"),
	}
	if err := buildRootCmdWith(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRootCmdWith constructs the command tree wired to the fn* actions.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "jukectl",
		Short:         "Operator tooling for a running jukebot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", cfg.ConfigPath, "Bot config file (defaults JUKEBOT_CONFIG)")
	root.PersistentFlags().String("daemon", cfg.DaemonURL, "Operator API base URL (defaults JUKEBOT_DAEMON_URL or http://127.0.0.1:8090)")
	root.PersistentFlags().String("log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults JUKECTL_LOG_LEVEL or info)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.InheritedFlags().Lookup("config"); f != nil {
			cfg.ConfigPath = f.Value.String()
		}
		if f := cmd.InheritedFlags().Lookup("daemon"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.DaemonURL = v
			}
		}
		if f := cmd.InheritedFlags().Lookup("log-level"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.LogLvl = v
			}
		}
		SetLogLevel(cfg.LogLvl)
	}

	// node group
	nodeCmd := &cobra.Command{Use: "node", Short: "Lavalink node checks", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("node requires a subcommand: wait|info|spawn-check")
	}}
	var waitTimeout time.Duration
	nodeWait := &cobra.Command{Use: "wait", Short: "Block until the node answers its version probe", Example: "  jukectl node wait --timeout 90s", RunE: func(cmd *cobra.Command, args []string) error {
		return fnNodeWait(cfg, waitTimeout)
	}}
	nodeWait.Flags().DurationVar(&waitTimeout, "timeout", 60*time.Second, "How long to keep polling")
	nodeInfo := &cobra.Command{Use: "info", Short: "Print node version, plugins and stats", RunE: func(cmd *cobra.Command, args []string) error {
		return fnNodeInfo(cfg)
	}}
	nodeSpawnCheck := &cobra.Command{Use: "spawn-check", Short: "Verify a local node could be launched: jar present, java on PATH", RunE: func(cmd *cobra.Command, args []string) error {
		return fnNodeSpawnCheck(cfg)
	}}
	nodeCmd.AddCommand(nodeWait, nodeInfo, nodeSpawnCheck)
	root.AddCommand(nodeCmd)

	// canary
	canaryCmd := &cobra.Command{Use: "canary <query>", Short: "Resolve one query through the running daemon and print the outcome", Example: "  jukectl canary \"never gonna give you up\"", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return fnCanary(cfg, args[0])
	}}
	root.AddCommand(canaryCmd)

	// ytdlp group
	ytdlpCmd := &cobra.Command{Use: "ytdlp", Short: "Local extractor checks", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("ytdlp requires a subcommand: version")
	}}
	ytdlpVersion := &cobra.Command{Use: "version", Short: "Print the local yt-dlp version", RunE: func(cmd *cobra.Command, args []string) error {
		return fnYTDLPVersion(cfg)
	}}
	ytdlpCmd.AddCommand(ytdlpVersion)
	root.AddCommand(ytdlpCmd)

	// env
	envCmd := &cobra.Command{Use: "env", Short: "Print the effective config with secrets redacted", RunE: func(cmd *cobra.Command, args []string) error {
		return fnEnv(cfg)
	}}
	root.AddCommand(envCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)

	return root
}
