package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/cardsort-api/internal/api/shared"
	"github.com/phrazzld/cardsort-api/internal/export"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"github.com/phrazzld/cardsort-api/internal/service"
)

// SessionHandler records and manages the sessions of a study. Sessions
// travel in the same shape as inside a study document: camelCase keys and
// millisecond timestamps, so a sorting front end can post what it stores.
type SessionHandler struct {
	sessionService service.SessionService
	logger         *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessionService service.SessionService, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}
	return &SessionHandler{
		sessionService: sessionService,
		logger:         logger.With(slog.String("component", "session_handler")),
	}
}

// ListSessions handles GET /api/studies/{id}/sessions.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	sessions, err := h.sessionService.ListSessions(r.Context(), userID, studyID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list sessions")
		return
	}

	docs := make([]export.SessionDocument, 0, len(sessions))
	for _, s := range sessions {
		docs = append(docs, export.NewSessionDocument(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, docs)
}

// RecordSession handles POST /api/studies/{id}/sessions. A client-supplied
// session ID is ignored; the server assigns one.
func (h *SessionHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req export.SessionDocument
	if !decodeAndValidate(w, r, &req) {
		return
	}

	startedAt, demographics, groups, err := req.DomainValues()
	if err != nil {
		HandleAPIError(w, r, invalidField("demographics", err), "")
		return
	}

	session, err := h.sessionService.RecordSession(r.Context(), userID, studyID, service.SessionInput{
		StartedAt:    startedAt,
		DurationSec:  req.DurationSec,
		Demographics: demographics,
		Groups:       groups,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, export.NewSessionDocument(*session))
}

// ClearSessions handles DELETE /api/studies/{id}/sessions.
func (h *SessionHandler) ClearSessions(w http.ResponseWriter, r *http.Request) {
	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	n, err := h.sessionService.ClearSessions(r.Context(), userID, studyID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to clear sessions")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ClearSessionsResponse{Deleted: n})
}

// DeleteSession handles DELETE /api/studies/{id}/sessions/{sessionID}.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, studyID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	sessionID, err := getPathUUID(r, "sessionID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.sessionService.DeleteSession(r.Context(), userID, studyID, sessionID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
