package main

// Package main is the entry point for the planning advisor server.
//
// Responsibilities:
//   - Load and validate configuration from YAML and environment variables
//   - Initialize the audit logger (rotating app + audit logs)
//   - Construct the reasoning backend and the advisory service around it
//   - Serve the advisory HTTP API, Prometheus metrics, and the
//     quick-advice WebSocket
//   - Watch the config file for changes
//   - Implement graceful shutdown with context cancellation
//
// The advisor is stateless: every analysis is one request/response pair
// and nothing is persisted beyond logs and metrics.

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nunoplanning/advisor/internal/audit"
	"github.com/nunoplanning/advisor/internal/config"
	"github.com/nunoplanning/advisor/internal/server"
)

func main() {
	configPath := flag.String("config", "/etc/nuno-advisor/config.yaml", "path to config file")
	flag.Parse()

	ctx := context.Background()

	cfgManager, err := config.NewConfigManager(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create config manager: %v\n", err)
		os.Exit(1)
	}

	if err := cfgManager.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	cfg := cfgManager.Get(ctx)

	auditor, err := audit.NewLogger(&audit.Config{
		AuditLogPath: cfg.Logging.AuditLogPath,
		AppLogPath:   cfg.Logging.AppLogPath,
		MaxSize:      cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAge:       cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		LogLevel:     cfg.Logging.Level,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create audit logger: %v\n", err)
		os.Exit(1)
	}
	defer auditor.Close()

	// Validation failures for the backend credential do not stop the
	// server: it starts degraded and advisory routes answer 503.
	if err := cfgManager.Validate(ctx); err != nil {
		auditor.App().Warn("configuration validation failed, starting degraded", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	_ = auditor.Log(ctx, audit.NewEvent(audit.EventConfigLoaded).
		WithResult(audit.ResultSuccess).
		WithDescription(fmt.Sprintf("Configuration loaded from %s", *configPath)))

	srv, err := server.NewServer(server.FromConfig(cfg), auditor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}

	// Log config file changes. Backend settings still need a restart.
	go func() {
		for updated := range cfgManager.Watch(ctx) {
			_ = auditor.Log(ctx, audit.NewEvent(audit.EventConfigReload).
				WithResult(audit.ResultSuccess).
				WithMetadata("llm_provider", updated.LLM.Provider).
				WithDescription("Configuration file changed"))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	fmt.Println("\nReceived shutdown signal...")

	if err := srv.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Error stopping server: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Shutdown complete")
}
