package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/api/shared"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"github.com/phrazzld/cardsort-api/internal/service"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requireUser returns the authenticated user ID, or writes a 401 and
// returns false.
func requireUser(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

// handleUserIDAndPathUUID extracts both the user ID from the context and a
// UUID path parameter, writing an error response if either is missing.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContext(r.Context())
	}

	userID, ok := requireUser(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid "+paramName,
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// parseAnalysisQuery reads the size, linkage and reorder query parameters.
// Omitted parameters stay zero so the service applies its defaults. The
// linkage is validated by the service.
func parseAnalysisQuery(r *http.Request) (service.AnalysisRequest, error) {
	q := r.URL.Query()
	req := service.AnalysisRequest{Linkage: strings.TrimSpace(q.Get("linkage"))}

	if raw := strings.TrimSpace(q.Get("size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return service.AnalysisRequest{}, domain.NewValidationError("size", "must be an integer", domain.ErrInvalidFormat)
		}
		req.SetSize = size
	}

	if raw := strings.TrimSpace(q.Get("reorder")); raw != "" {
		reorder, err := strconv.ParseBool(raw)
		if err != nil {
			return service.AnalysisRequest{}, domain.NewValidationError("reorder", "must be a boolean", domain.ErrInvalidFormat)
		}
		req.Reorder = &reorder
	}

	return req, nil
}

// decodeAndValidate decodes a JSON body into req and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		status := MapErrorToStatusCode(err)
		message := GetSafeErrorMessage(err)
		if status == http.StatusInternalServerError {
			status, message = http.StatusBadRequest, "Invalid request format"
		}
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}

	return true
}

// invalidField wraps a domain error as a ValidationError on field.
func invalidField(field string, err error) error {
	return domain.NewValidationError(field, err.Error(), err)
}
