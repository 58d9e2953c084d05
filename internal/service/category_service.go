package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/domain/analysis"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
)

// CategoryNamer proposes a short name for each cluster of card labels. The
// result must have one name per cluster, in the same order.
type CategoryNamer interface {
	NameCategories(ctx context.Context, clusters [][]string) ([]string, error)
}

// CategorySuggestion is one flat cluster cut from the dendrogram.
type CategorySuggestion struct {
	Name    string   `json:"name"`
	CardIDs []string `json:"card_ids"`
	Labels  []string `json:"labels"`
}

// CategoryRequest selects where to cut the dendrogram. Height is a
// dissimilarity in [0, 1]; smaller heights give more, tighter categories.
type CategoryRequest struct {
	AnalysisRequest
	Height float64
}

// CategoryService turns an analysis into suggested categories.
type CategoryService interface {
	SuggestCategories(ctx context.Context, userID, studyID uuid.UUID, req CategoryRequest) ([]CategorySuggestion, error)
}

type categoryServiceImpl struct {
	analyses AnalysisService
	namer    CategoryNamer
	fallback CategoryNamer
	logger   *slog.Logger
}

// NewCategoryService creates a CategoryService. A nil namer uses
// FallbackNamer only.
func NewCategoryService(analyses AnalysisService, namer CategoryNamer, logger *slog.Logger) (CategoryService, error) {
	if analyses == nil {
		return nil, domain.NewValidationError("analyses", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	fallback := FallbackNamer{}
	if namer == nil {
		namer = fallback
	}

	return &categoryServiceImpl{
		analyses: analyses,
		namer:    namer,
		fallback: fallback,
		logger:   logger.With(slog.String("component", "category_service")),
	}, nil
}

func (s *categoryServiceImpl) SuggestCategories(
	ctx context.Context,
	userID, studyID uuid.UUID,
	req CategoryRequest,
) ([]CategorySuggestion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if math.IsNaN(req.Height) || req.Height < 0 || req.Height > 1 {
		return nil, domain.NewValidationError("height", "must be between 0 and 1", domain.ErrValidation)
	}

	report, err := s.analyses.Analyze(ctx, userID, studyID, req.AnalysisRequest)
	if err != nil {
		return nil, err
	}
	if report.Dendrogram == nil {
		return nil, NewServiceError("category", "suggest_categories", "no dendrogram", ErrNothingToName)
	}

	clusters := analysis.CutTree(report.Dendrogram, req.Height)
	suggestions := make([]CategorySuggestion, len(clusters))
	labels := make([][]string, len(clusters))
	for i, ids := range clusters {
		labels[i] = make([]string, len(ids))
		for j, id := range ids {
			labels[i][j] = report.Label(id)
		}
		suggestions[i] = CategorySuggestion{CardIDs: ids, Labels: labels[i]}
	}

	names, err := s.namer.NameCategories(ctx, labels)
	if err == nil && len(names) != len(clusters) {
		err = fmt.Errorf("namer returned %d names for %d clusters", len(names), len(clusters))
	}
	if err != nil {
		log.Warn("category namer failed, using fallback names",
			slog.String("error", err.Error()),
			slog.String("study_id", studyID.String()))
		names, _ = s.fallback.NameCategories(ctx, labels)
	}

	for i := range suggestions {
		suggestions[i].Name = names[i]
	}

	log.Info("categories suggested",
		slog.String("study_id", studyID.String()),
		slog.Float64("height", req.Height),
		slog.Int("count", len(suggestions)))
	return suggestions, nil
}

// FallbackNamer names a cluster after its first two labels, followed by how
// many more cards it holds.
type FallbackNamer struct{}

// NameCategories implements CategoryNamer. It never fails.
func (FallbackNamer) NameCategories(_ context.Context, clusters [][]string) ([]string, error) {
	names := make([]string, len(clusters))
	for i, labels := range clusters {
		head := labels[:min(len(labels), 2)]
		name := strings.Join(head, " & ")
		if rest := len(labels) - len(head); rest > 0 {
			name = fmt.Sprintf("%s (+%d)", name, rest)
		}
		if name == "" {
			name = fmt.Sprintf("Category %d", i+1)
		}
		names[i] = name
	}
	return names, nil
}
