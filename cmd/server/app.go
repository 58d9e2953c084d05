package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/cardsort-api/internal/config"
	"github.com/phrazzld/cardsort-api/internal/domain/analysis"
	"github.com/phrazzld/cardsort-api/internal/platform/gemini"
	"github.com/phrazzld/cardsort-api/internal/platform/postgres"
	"github.com/phrazzld/cardsort-api/internal/service"
	"github.com/phrazzld/cardsort-api/internal/service/auth"
)

// pinger is the part of *sql.DB the health check needs.
type pinger interface {
	PingContext(ctx context.Context) error
}

// application holds the shared dependencies of the server so they can be
// wired once and released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	health pinger

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	userService     service.UserService
	studyService    service.StudyService
	sessionService  service.SessionService
	analysisService service.AnalysisService
	categoryService service.CategoryService
}

// newApplication builds stores and services on top of an open database.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		health: db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	studyStore := postgres.NewPostgresStudyStore(db, logger)
	sessionStore := postgres.NewPostgresSessionStore(db, logger)

	engine, err := analysis.NewServiceWithOptions(analysis.Options{
		AnalysisSetSize:     cfg.Analysis.DefaultSetSize,
		Linkage:             analysis.Linkage(cfg.Analysis.DefaultLinkage),
		ReorderByDendrogram: cfg.Analysis.ReorderByDendrogram,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis engine: %w", err)
	}

	if app.userService, err = service.NewUserService(userStore, db, logger); err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	if app.studyService, err = service.NewStudyService(studyStore, sessionStore, db, logger); err != nil {
		return nil, fmt.Errorf("failed to create study service: %w", err)
	}
	if app.sessionService, err = service.NewSessionService(studyStore, sessionStore, logger); err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}
	if app.analysisService, err = service.NewAnalysisService(studyStore, sessionStore, engine, logger); err != nil {
		return nil, fmt.Errorf("failed to create analysis service: %w", err)
	}

	namer, err := newCategoryNamer(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	if app.categoryService, err = service.NewCategoryService(app.analysisService, namer, logger); err != nil {
		return nil, fmt.Errorf("failed to create category service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// newCategoryNamer returns the Gemini namer when an API key is configured.
// Otherwise it returns nil and categories are named after their cards.
func newCategoryNamer(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (service.CategoryNamer, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Info("no Gemini API key configured, category names use card labels")
		return nil, nil
	}

	namer, err := gemini.NewNamer(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize category namer: %w", err)
	}
	logger.Info("Gemini category namer initialized", "model", cfg.ModelName)
	return namer, nil
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
