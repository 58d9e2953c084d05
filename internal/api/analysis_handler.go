package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/cardsort-api/internal/api/shared"
	"github.com/phrazzld/cardsort-api/internal/domain/analysis"
	"github.com/phrazzld/cardsort-api/internal/export"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"github.com/phrazzld/cardsort-api/internal/service"
)

const csvContentType = "text/csv; charset=utf-8"

// AnalysisHandler serves analysis reports, their CSV tables and category
// suggestions.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	categoryService service.CategoryService
	logger          *slog.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(
	analysisService service.AnalysisService,
	categoryService service.CategoryService,
	logger *slog.Logger,
) *AnalysisHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AnalysisHandler")
	}
	return &AnalysisHandler{
		analysisService: analysisService,
		categoryService: categoryService,
		logger:          logger.With(slog.String("component", "analysis_handler")),
	}
}

// GetAnalysis handles GET /api/studies/{id}/analysis?size=&linkage=&reorder=.
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	report, ok := h.analyze(w, r)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AnalysisResponse{
		Report:  report,
		Heatmap: report.Similarity.Reorder(report.HeatmapOrder),
	})
}

// SimilarityCSV handles GET /api/studies/{id}/analysis/similarity.csv.
func (h *AnalysisHandler) SimilarityCSV(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, export.SimilarityFile, export.WriteSimilarityCSV)
}

// CooccurrenceCSV handles GET /api/studies/{id}/analysis/cooccurrence.csv.
func (h *AnalysisHandler) CooccurrenceCSV(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, export.CooccurrenceFile, export.WriteCooccurrenceCSV)
}

// JointAppearanceCSV handles GET /api/studies/{id}/analysis/joint_appearance.csv.
func (h *AnalysisHandler) JointAppearanceCSV(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, export.JointAppearanceFile, export.WriteJointAppearanceCSV)
}

// ProjectionCSV handles GET /api/studies/{id}/analysis/projection.csv.
func (h *AnalysisHandler) ProjectionCSV(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, export.ProjectionFile, export.WriteProjectionCSV)
}

// SuggestCategories handles POST /api/studies/{id}/analysis/categories.
func (h *AnalysisHandler) SuggestCategories(w http.ResponseWriter, r *http.Request) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req CategoriesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	suggestions, err := h.categoryService.SuggestCategories(r.Context(), userID, studyID, service.CategoryRequest{
		AnalysisRequest: service.AnalysisRequest{
			SetSize: req.Size,
			Linkage: req.Linkage,
			Reorder: req.Reorder,
		},
		Height: req.Height,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to suggest categories")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, suggestions)
}

// analyze runs the analysis selected by the path and query, writing an error
// response and returning false on failure.
func (h *AnalysisHandler) analyze(w http.ResponseWriter, r *http.Request) (*analysis.Report, bool) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return nil, false
	}

	req, err := parseAnalysisQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	report, err := h.analysisService.Analyze(r.Context(), userID, studyID, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to analyze study")
		return nil, false
	}
	return report, true
}

func (h *AnalysisHandler) serveCSV(
	w http.ResponseWriter,
	r *http.Request,
	fileName string,
	write func(io.Writer, *analysis.Report) error,
) {
	report, ok := h.analyze(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, report); err != nil {
		HandleAPIError(w, r, err, "Failed to write CSV")
		return
	}

	writeAttachment(w, csvContentType, fileName, buf.Bytes())
}
