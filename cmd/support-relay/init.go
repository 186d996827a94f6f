// ABOUTME: The init command: interactive config file writer
// ABOUTME: Prompts for the bot token, admin ID and store, then writes YAML

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/support-relay/internal/config"
)

func newInitCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := *configPath
			if path == "" {
				path = config.DefaultPath()
			}
			return runInit(cmd.InOrStdin(), cmd.OutOrStdout(), path)
		},
	}
}

func runInit(in io.Reader, out io.Writer, configPath string) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Fprint(out, banner)
	fmt.Fprintln(out, "    Interactive Setup")
	fmt.Fprintln(out, "    -----------------")
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)
	ask := func(prompt, def string) string {
		green.Fprint(out, "    ▶ ")
		if def != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, def)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return def
		}
		return answer
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		yellow.Fprintf(out, "    Config already exists at %s\n", configPath)
		fmt.Fprint(out, "    Overwrite? [y/N]: ")
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(out, "    Aborted.")
			return nil
		}
		fmt.Fprintln(out)
	}

	token := ask("Telegram bot token (or ${BOT_TOKEN})", "${BOT_TOKEN}")

	adminID := ask("Admin Telegram user ID", "")
	if _, err := strconv.ParseInt(adminID, 10, 64); err != nil {
		return fmt.Errorf("admin id must be a number, got %q", adminID)
	}

	backend := ask("Store backend (sqlite, firebase, redis, pebble, memory)", config.BackendSQLite)

	var storeSection string
	switch backend {
	case config.BackendSQLite:
		path := ask("SQLite database path", "support-relay.db")
		storeSection = fmt.Sprintf("  sqlite:\n    path: %q\n", path)
	case config.BackendPebble:
		path := ask("Pebble directory", "support-relay.pebble")
		storeSection = fmt.Sprintf("  pebble:\n    path: %q\n", path)
	case config.BackendRedis:
		addr := ask("Redis address", "localhost:6379")
		storeSection = fmt.Sprintf("  redis:\n    addr: %q\n    key_prefix: \"support-relay:\"\n", addr)
	case config.BackendFirebase:
		dbURL := ask("Firebase Realtime Database URL", "${FIREBASE_DB_URL}")
		creds := ask("Service account key file", "serviceAccountKey.json")
		storeSection = fmt.Sprintf("  firebase:\n    database_url: %q\n    credentials_file: %q\n", dbURL, creds)
	case config.BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", backend)
	}

	port := ask("Liveness port", "8080")
	if _, err := strconv.Atoi(port); err != nil {
		return fmt.Errorf("port must be a number, got %q", port)
	}

	cfg := fmt.Sprintf(`# support-relay configuration
# Generated by support-relay init

telegram:
  token: %q
  admin_id: %s

store:
  backend: %q
%s
liveness:
  addr: "0.0.0.0:%s"

metrics:
  enabled: false
  addr: "127.0.0.1:9090"

logging:
  level: "info"
  format: "text"
`, token, adminID, backend, storeSection, port)

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Config holds the bot token
	if err := os.WriteFile(configPath, []byte(cfg), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintln(out)
	green.Fprintf(out, "    ✓ Config written to %s\n", configPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "    Next steps:")
	fmt.Fprintf(out, "    1. Run: support-relay --config %s\n", configPath)
	fmt.Fprintln(out)

	return nil
}
