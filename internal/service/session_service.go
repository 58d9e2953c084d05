package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"github.com/phrazzld/cardsort-api/internal/store"
)

// SessionInput carries one participant's finished sort.
type SessionInput struct {
	StartedAt    time.Time
	DurationSec  int
	Demographics domain.Demographics
	Groups       []domain.SortGroup
}

// SessionService records and manages the sessions of a study.
type SessionService interface {
	// RecordSession validates the group forest against the study's current
	// deck and stores it.
	RecordSession(ctx context.Context, userID, studyID uuid.UUID, input SessionInput) (*domain.Session, error)

	// ListSessions returns the study's sessions, oldest first.
	ListSessions(ctx context.Context, userID, studyID uuid.UUID) ([]domain.Session, error)

	// DeleteSession removes one session of the study.
	DeleteSession(ctx context.Context, userID, studyID, sessionID uuid.UUID) error

	// ClearSessions removes every session of the study and reports how many
	// were removed.
	ClearSessions(ctx context.Context, userID, studyID uuid.UUID) (int64, error)
}

type sessionServiceImpl struct {
	studyStore   store.StudyStore
	sessionStore store.SessionStore
	logger       *slog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	studyStore store.StudyStore,
	sessionStore store.SessionStore,
	logger *slog.Logger,
) (SessionService, error) {
	if studyStore == nil {
		return nil, domain.NewValidationError("studyStore", "cannot be nil", domain.ErrValidation)
	}
	if sessionStore == nil {
		return nil, domain.NewValidationError("sessionStore", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &sessionServiceImpl{
		studyStore:   studyStore,
		sessionStore: sessionStore,
		logger:       logger.With(slog.String("component", "session_service")),
	}, nil
}

const sessionServiceName = "session"

func (s *sessionServiceImpl) RecordSession(
	ctx context.Context,
	userID, studyID uuid.UUID,
	input SessionInput,
) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	study, err := loadOwnedStudy(ctx, s.studyStore, userID, studyID, "record_session")
	if err != nil {
		return nil, err
	}

	session, err := domain.NewSession(study.ID, input.StartedAt, input.DurationSec, input.Demographics, input.Groups)
	if err != nil {
		return nil, invalid("session", err)
	}
	if err := study.ValidateSession(session); err != nil {
		log.Debug("session rejected",
			slog.String("study_id", studyID.String()),
			slog.String("error", err.Error()))
		return nil, invalid("groups", err)
	}

	if err := s.sessionStore.Create(ctx, session); err != nil {
		log.Error("failed to record session",
			slog.String("error", err.Error()),
			slog.String("study_id", studyID.String()))
		return nil, NewServiceError(sessionServiceName, "record_session", "failed to save session", err)
	}

	log.Info("session recorded",
		slog.String("study_id", studyID.String()),
		slog.String("session_id", session.ID.String()),
		slog.Int("unsorted_cards", len(session.UnsortedCardIDs(study.Cards))))
	return session, nil
}

func (s *sessionServiceImpl) ListSessions(ctx context.Context, userID, studyID uuid.UUID) ([]domain.Session, error) {
	if _, err := loadOwnedStudy(ctx, s.studyStore, userID, studyID, "list_sessions"); err != nil {
		return nil, err
	}

	sessions, err := s.sessionStore.ListByStudy(ctx, studyID)
	if err != nil {
		return nil, NewServiceError(sessionServiceName, "list_sessions", "failed to list sessions", err)
	}
	return sessions, nil
}

func (s *sessionServiceImpl) DeleteSession(ctx context.Context, userID, studyID, sessionID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := loadOwnedStudy(ctx, s.studyStore, userID, studyID, "delete_session"); err != nil {
		return err
	}

	session, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return NewServiceError(sessionServiceName, "delete_session", "session not found", store.ErrSessionNotFound)
		}
		return NewServiceError(sessionServiceName, "delete_session", "failed to load session", err)
	}
	if session.StudyID != studyID {
		return NewServiceError(sessionServiceName, "delete_session", "session not found", store.ErrSessionNotFound)
	}

	if err := s.sessionStore.Delete(ctx, sessionID); err != nil {
		return NewServiceError(sessionServiceName, "delete_session", "failed to delete session", err)
	}

	log.Info("session deleted",
		slog.String("study_id", studyID.String()),
		slog.String("session_id", sessionID.String()))
	return nil
}

func (s *sessionServiceImpl) ClearSessions(ctx context.Context, userID, studyID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := loadOwnedStudy(ctx, s.studyStore, userID, studyID, "clear_sessions"); err != nil {
		return 0, err
	}

	n, err := s.sessionStore.DeleteByStudy(ctx, studyID)
	if err != nil {
		return 0, NewServiceError(sessionServiceName, "clear_sessions", "failed to clear sessions", err)
	}

	log.Info("sessions cleared",
		slog.String("study_id", studyID.String()),
		slog.Int64("count", n))
	return n, nil
}
