// ABOUTME: The transcript command: prints one user's stored conversation
// ABOUTME: Reads through the configured store backend; text or JSON output

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/support-relay/internal/gateway"
	"github.com/2389/support-relay/internal/store"
)

func newTranscriptCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "transcript <user-id>",
		Short: "Print the stored conversation with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("user id must be a number: %w", err)
			}
			return runTranscript(cmd.Context(), cmd.OutOrStdout(), *configPath, userID, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the log as JSON")
	return cmd
}

func runTranscript(ctx context.Context, out io.Writer, configFlag string, userID int64, asJSON bool) error {
	cfg, _, err := loadConfig(configFlag)
	if err != nil {
		return err
	}

	s, err := store.Open(ctx, gateway.StoreOptions(cfg.Store))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	readCtx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
	defer cancel()

	log, err := s.GetLog(readCtx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no conversation with user %d", userID)
	}
	if err != nil {
		return fmt.Errorf("reading conversation: %w", err)
	}

	return printTranscript(out, log, asJSON)
}

func printTranscript(out io.Writer, log *store.ConversationLog, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(log)
	}

	name := log.DisplayName
	if name == "" {
		name = "unknown"
	}
	bold := color.New(color.Bold)
	gray := color.New(color.FgHiBlack)
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	bold.Fprintf(out, "User %d (%s)\n", log.UserID, name)
	if !log.CreatedAt.IsZero() {
		gray.Fprintf(out, "since %s\n", log.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintln(out)

	for _, e := range log.Entries {
		gray.Fprintf(out, "%s ", e.CreatedAt.Format("2006-01-02 15:04:05"))
		if e.Role == store.RoleAdmin {
			green.Fprintf(out, "%-5s ", e.Role)
		} else {
			cyan.Fprintf(out, "%-5s ", e.Role)
		}
		fmt.Fprintln(out, e.Text)
	}
	return nil
}
