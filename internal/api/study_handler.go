package api

import (
	"bytes"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/phrazzld/cardsort-api/internal/api/shared"
	"github.com/phrazzld/cardsort-api/internal/export"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"github.com/phrazzld/cardsort-api/internal/service"
)

// StudyHandler handles study CRUD, import and export.
type StudyHandler struct {
	studyService service.StudyService
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewStudyHandler creates a StudyHandler. maxBodyBytes caps import bodies;
// zero or less means no limit.
func NewStudyHandler(studyService service.StudyService, maxBodyBytes int64, logger *slog.Logger) *StudyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}
	return &StudyHandler{
		studyService: studyService,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With(slog.String("component", "study_handler")),
	}
}

// ListStudies handles GET /api/studies.
func (h *StudyHandler) ListStudies(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	studies, err := h.studyService.ListStudies(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list studies")
		return
	}

	summaries := make([]StudySummary, 0, len(studies))
	for _, s := range studies {
		summaries = append(summaries, studyToSummary(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summaries)
}

// CreateStudy handles POST /api/studies.
func (h *StudyHandler) CreateStudy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	var req CreateStudyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	study, err := h.studyService.CreateStudy(r.Context(), userID, req.Name, req.Cards, req.Profiles)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create study")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, studyToResponse(study))
}

// GetStudy handles GET /api/studies/{id}.
func (h *StudyHandler) GetStudy(w http.ResponseWriter, r *http.Request) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	study, err := h.studyService.GetStudy(r.Context(), userID, studyID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get study")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, studyToResponse(study))
}

// RenameStudy handles PUT /api/studies/{id}.
func (h *StudyHandler) RenameStudy(w http.ResponseWriter, r *http.Request) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req RenameStudyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	study, err := h.studyService.RenameStudy(r.Context(), userID, studyID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rename study")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, studyToResponse(study))
}

// DeleteStudy handles DELETE /api/studies/{id}.
func (h *StudyHandler) DeleteStudy(w http.ResponseWriter, r *http.Request) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.studyService.DeleteStudy(r.Context(), userID, studyID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete study")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DuplicateStudy handles POST /api/studies/{id}/duplicate.
func (h *StudyHandler) DuplicateStudy(w http.ResponseWriter, r *http.Request) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req DuplicateStudyRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}

	study, err := h.studyService.DuplicateStudy(r.Context(), userID, studyID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to duplicate study")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, studyToResponse(study))
}

// ReplaceCards handles PUT /api/studies/{id}/cards.
func (h *StudyHandler) ReplaceCards(w http.ResponseWriter, r *http.Request) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req ReplaceCardsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	study, err := h.studyService.ReplaceCards(r.Context(), userID, studyID, req.Cards)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to replace cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, studyToResponse(study))
}

// ReplaceProfiles handles PUT /api/studies/{id}/profiles.
func (h *StudyHandler) ReplaceProfiles(w http.ResponseWriter, r *http.Request) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req ReplaceProfilesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	study, err := h.studyService.ReplaceProfiles(r.Context(), userID, studyID, req.Profiles)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to replace profiles")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, studyToResponse(study))
}

// ImportStudy handles POST /api/studies/import?format=json|yaml. The body is
// a study document as written by ExportStudy or the browser editor.
func (h *StudyHandler) ImportStudy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	doc, err := export.Decode(body, format)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	study, err := h.studyService.ImportStudy(r.Context(), userID, doc)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import study")
		return
	}

	log.Info("study imported via API",
		slog.String("study_id", study.ID.String()),
		slog.String("format", string(format)))
	shared.RespondWithJSON(w, r, http.StatusCreated, studyToResponse(study))
}

// ExportStudy handles GET /api/studies/{id}/export?format=json|yaml and
// serves the document as an attachment.
func (h *StudyHandler) ExportStudy(w http.ResponseWriter, r *http.Request) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	doc, err := h.studyService.ExportStudy(r.Context(), userID, studyID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export study")
		return
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, *doc, format); err != nil {
		HandleAPIError(w, r, err, "Failed to export study")
		return
	}

	writeAttachment(w, format.ContentType(), export.FileName(doc.Name, format), buf.Bytes())
}

// writeAttachment writes body as a file download.
func writeAttachment(w http.ResponseWriter, contentType, fileName string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
