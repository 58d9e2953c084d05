package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// migrationTableName is the goose version table.
const migrationTableName = "schema_migrations"

// defaultMigrationsSourceDir is where "migrate create" writes new files, so
// they are picked up by the embed directive in the postgres package.
const defaultMigrationsSourceDir = "internal/platform/postgres/migrations"

var errMissingMigrationName = errors.New("migrate create requires a migration name")

// migrationRequest is a parsed "migrate" invocation.
type migrationRequest struct {
	configPath string
	command    string
	name       string
	dir        string
	verbose    bool
}

func parseMigrationArgs(args []string, stdout io.Writer) (migrationRequest, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stdout)
	req := migrationRequest{}
	fs.StringVar(&req.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&req.dir, "dir", defaultMigrationsSourceDir, "directory for new migration files (create only)")
	fs.BoolVar(&req.verbose, "verbose", false, "log every goose statement")
	if err := fs.Parse(args); err != nil {
		return migrationRequest{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return migrationRequest{}, errors.New("migrate requires a command: up, down, status, version, reset or create")
	}
	req.command = strings.ToLower(rest[0])

	switch req.command {
	case "up", "down", "status", "version", "reset":
		if len(rest) > 1 {
			return migrationRequest{}, fmt.Errorf("migrate %s takes no arguments", req.command)
		}
	case "create":
		if len(rest) < 2 || strings.TrimSpace(rest[1]) == "" {
			return migrationRequest{}, errMissingMigrationName
		}
		req.name = rest[1]
	default:
		return migrationRequest{}, fmt.Errorf("unknown migrate command %q", req.command)
	}

	return req, nil
}

func migrateCommand(ctx context.Context, args []string, stdout io.Writer) error {
	req, err := parseMigrationArgs(args, stdout)
	if err != nil {
		return err
	}

	// Creating a file needs neither configuration nor a database.
	if req.command == "create" {
		goose.SetBaseFS(nil)
		goose.SetLogger(&slogGooseLogger{logger: slog.Default()})
		return goose.Create(nil, req.dir, req.name, "sql")
	}

	cfg, log, err := loadAppConfig(req.configPath)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		}
	}()

	return executeMigration(ctx, db, log, req.command, req.verbose)
}

// executeMigration runs a goose command against the embedded migrations.
func executeMigration(ctx context.Context, db *sql.DB, logger *slog.Logger, command string, verbose bool) error {
	migrationLogger := logger.With(
		"correlation_id", uuid.New().String(),
		"component", "migrations",
		"command", command,
	)

	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName(migrationTableName)
	goose.SetVerbose(verbose)
	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	start := time.Now()
	migrationLogger.Info("starting migration operation")

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, postgres.MigrationsDir)
	case "down":
		err = goose.DownContext(ctx, db, postgres.MigrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, db, postgres.MigrationsDir)
	case "status":
		err = goose.StatusContext(ctx, db, postgres.MigrationsDir)
	case "version":
		err = goose.VersionContext(ctx, db, postgres.MigrationsDir)
	default:
		err = fmt.Errorf("unknown migrate command %q", command)
	}

	migrationLogger.Info("migration operation completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"success", err == nil)
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress messages at info level.
func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level. Unlike goose's default logger it does not exit,
// so the failure is returned to main like any other error.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
