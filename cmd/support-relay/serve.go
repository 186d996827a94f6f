// ABOUTME: The serve command: prints the startup banner and runs the gateway
// ABOUTME: Blocks until SIGINT/SIGTERM, then shuts down gracefully

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/2389/support-relay/internal/config"
	"github.com/2389/support-relay/internal/gateway"
)

func runServe(ctx context.Context, configFlag string) error {
	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, source, err := loadConfig(configFlag)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)

	// Startup info
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", source)
	green.Print("    ▶ ")
	fmt.Printf("Admin:     %d\n", cfg.Telegram.AdminID)
	green.Print("    ▶ ")
	fmt.Printf("Store:     %s\n", cfg.Store.Backend)
	green.Print("    ▶ ")
	fmt.Printf("Liveness:  %s\n", cfg.Liveness.Addr)
	if cfg.Metrics.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Metrics:   %s%s\n", cfg.Metrics.Addr, cfg.Metrics.Path)
	}
	if cfg.Store.Backend == config.BackendMemory {
		yellow.Println("    ! memory store: transcripts are lost on restart")
	}
	fmt.Println()

	logger.Info("starting support-relay",
		"config", source,
		"store", cfg.Store.Backend,
		"liveness_addr", cfg.Liveness.Addr,
	)

	gw, err := gateway.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}
