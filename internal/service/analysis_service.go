package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/domain/analysis"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"github.com/phrazzld/cardsort-api/internal/store"
)

// AnalysisRequest holds caller overrides. Zero values mean "use the
// configured default".
type AnalysisRequest struct {
	SetSize int
	Linkage string
	Reorder *bool
}

// AnalysisService runs the card-sort analysis over a stored study.
type AnalysisService interface {
	// Analyze loads the study and its sessions and runs the engine.
	Analyze(ctx context.Context, userID, studyID uuid.UUID, req AnalysisRequest) (*analysis.Report, error)

	// Options resolves a request against the configured defaults without
	// running anything.
	Options(req AnalysisRequest) (analysis.Options, error)
}

type analysisServiceImpl struct {
	studyStore   store.StudyStore
	sessionStore store.SessionStore
	engine       analysis.Service
	logger       *slog.Logger
}

// NewAnalysisService creates a new AnalysisService backed by engine.
func NewAnalysisService(
	studyStore store.StudyStore,
	sessionStore store.SessionStore,
	engine analysis.Service,
	logger *slog.Logger,
) (AnalysisService, error) {
	if studyStore == nil {
		return nil, domain.NewValidationError("studyStore", "cannot be nil", domain.ErrValidation)
	}
	if sessionStore == nil {
		return nil, domain.NewValidationError("sessionStore", "cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, domain.NewValidationError("engine", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &analysisServiceImpl{
		studyStore:   studyStore,
		sessionStore: sessionStore,
		engine:       engine,
		logger:       logger.With(slog.String("component", "analysis_service")),
	}, nil
}

func (s *analysisServiceImpl) Options(req AnalysisRequest) (analysis.Options, error) {
	defaults := s.engine.Defaults()
	opts := analysis.Options{
		AnalysisSetSize:     req.SetSize,
		ReorderByDendrogram: defaults.ReorderByDendrogram,
	}
	if req.SetSize < 0 {
		return analysis.Options{}, domain.NewValidationError("size", "must not be negative", domain.ErrValidation)
	}
	if strings.TrimSpace(req.Linkage) != "" {
		linkage, err := analysis.ParseLinkage(req.Linkage)
		if err != nil {
			return analysis.Options{}, invalid("linkage", err)
		}
		opts.Linkage = linkage
	}
	if req.Reorder != nil {
		opts.ReorderByDendrogram = *req.Reorder
	}
	return opts, nil
}

func (s *analysisServiceImpl) Analyze(
	ctx context.Context,
	userID, studyID uuid.UUID,
	req AnalysisRequest,
) (*analysis.Report, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	opts, err := s.Options(req)
	if err != nil {
		return nil, err
	}

	study, err := loadOwnedStudy(ctx, s.studyStore, userID, studyID, "analyze")
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionStore.ListByStudy(ctx, studyID)
	if err != nil {
		return nil, NewServiceError("analysis", "analyze", "failed to load sessions", err)
	}

	report, err := s.engine.Analyze(study.Cards, sessions, opts)
	if err != nil {
		return nil, invalid("options", err)
	}

	log.Info("study analyzed",
		slog.String("study_id", studyID.String()),
		slog.Int("set_size", report.Options.AnalysisSetSize),
		slog.String("linkage", string(report.Options.Linkage)),
		slog.Int("session_count", report.SessionCount))
	return report, nil
}
