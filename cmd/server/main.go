// Package main is the cardsort API server. It serves the HTTP API and
// manages the database schema.
//
// Usage:
//
//	server [serve] [-config path]
//	server migrate [-config path] [-verbose] up|down|status|version|reset|create <name>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/cardsort-api/internal/config"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("cardsort server failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run dispatches a subcommand. Without arguments it serves the API.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return serveCommand(ctx, args)
	case "migrate":
		return migrateCommand(ctx, args, stdout)
	case "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  server [serve] [-config path]")
	fmt.Fprintln(w, "  server migrate [-config path] [-verbose] up|down|status|version|reset|create <name>")
}

func serveCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file (default ./config.yaml if present)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, err := loadAppConfig(*configPath)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// loadAppConfig loads the configuration and installs the structured logger
// it describes as the slog default.
func loadAppConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)
	log.Debug("optional configuration",
		"llm_naming_enabled", cfg.LLM.GeminiAPIKey != "",
		"cors_origins", len(cfg.CORS.AllowedOrigins))

	return cfg, log, nil
}
