// ABOUTME: Entry point for support-relay
// ABOUTME: Cobra root command with serve (default), init, transcript and health subcommands

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389/support-relay/internal/config"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                                         _                      _
 ___ _   _ _ __  _ __   ___  _ __| |_       _ __ ___| | __ _ _   _
/ __| | | | '_ \| '_ \ / _ \| '__| __|_____| '__/ _ \ |/ _' | | | |
\__ \ |_| | |_) | |_) | (_) | |  | ||_____| | |  __/ | (_| | |_| |
|___/\__,_| .__/| .__/ \___/|_|   \__|     |_|  \___|_|\__,_|\__, |
          |_|   |_|                                          |___/
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context(), configPath)
	}

	root := &cobra.Command{
		Use:           "support-relay",
		Short:         "Telegram support relay between users and one admin",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (YAML or TOML; default: search standard locations)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the bot (default)",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})
	root.AddCommand(newInitCmd(&configPath))
	root.AddCommand(newTranscriptCmd(&configPath))
	root.AddCommand(newHealthCmd(&configPath))

	return root
}

// loadConfig loads .env, then the config file if one exists, otherwise the environment.
// The returned source is the file path or "environment".
func loadConfig(explicit string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, "", err
	}

	path, found, err := config.FindPath(explicit)
	if err != nil {
		return nil, "", err
	}

	if !found {
		cfg, err := config.LoadEnv()
		if err != nil {
			return nil, "", fmt.Errorf("loading config from environment: %w", err)
		}
		return cfg, "environment", nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, path, nil
}
