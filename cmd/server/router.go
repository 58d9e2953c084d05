package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/cardsort-api/internal/api"
	apiMiddleware "github.com/phrazzld/cardsort-api/internal/api/middleware"
	"github.com/phrazzld/cardsort-api/internal/api/shared"
)

const healthCheckTimeout = 2 * time.Second

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.RequestSize(app.config.Server.MaxBodyBytes))

	authHandler := api.NewAuthHandler(
		app.userService,
		app.jwtService,
		app.passwordVerifier,
		&app.config.Auth,
		app.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	studyHandler := api.NewStudyHandler(app.studyService, app.config.Server.MaxBodyBytes, app.logger)
	sessionHandler := api.NewSessionHandler(app.sessionService, app.logger)
	analysisHandler := api.NewAnalysisHandler(app.analysisService, app.categoryService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/studies", studyHandler.ListStudies)
			r.Post("/studies", studyHandler.CreateStudy)
			r.Post("/studies/import", studyHandler.ImportStudy)

			r.Route("/studies/{id}", func(r chi.Router) {
				r.Get("/", studyHandler.GetStudy)
				r.Put("/", studyHandler.RenameStudy)
				r.Delete("/", studyHandler.DeleteStudy)
				r.Post("/duplicate", studyHandler.DuplicateStudy)
				r.Put("/cards", studyHandler.ReplaceCards)
				r.Put("/profiles", studyHandler.ReplaceProfiles)
				r.Get("/export", studyHandler.ExportStudy)

				r.Get("/sessions", sessionHandler.ListSessions)
				r.Post("/sessions", sessionHandler.RecordSession)
				r.Delete("/sessions", sessionHandler.ClearSessions)
				r.Delete("/sessions/{sessionID}", sessionHandler.DeleteSession)

				r.Get("/analysis", analysisHandler.GetAnalysis)
				r.Get("/analysis/similarity.csv", analysisHandler.SimilarityCSV)
				r.Get("/analysis/cooccurrence.csv", analysisHandler.CooccurrenceCSV)
				r.Get("/analysis/joint_appearance.csv", analysisHandler.JointAppearanceCSV)
				r.Get("/analysis/projection.csv", analysisHandler.ProjectionCSV)
				r.Post("/analysis/categories", analysisHandler.SuggestCategories)
			})
		})
	})

	r.Get("/health", app.handleHealth)

	return r
}

// handleHealth reports whether the database is reachable.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if app.health != nil {
		if err := app.health.PingContext(ctx); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
