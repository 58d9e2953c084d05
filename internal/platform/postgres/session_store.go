package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"github.com/phrazzld/cardsort-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}

const sessionColumns = `id, study_id, started_at, duration_sec, demographics, sort_groups, created_at`

// Create implements store.SessionStore.Create
// Returns store.ErrInvalidEntity if the session is invalid or its study does not exist.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	demographics, err := json.Marshal(session.Demographics)
	if err != nil {
		return fmt.Errorf("failed to encode demographics: %w", err)
	}
	groups := session.Groups
	if groups == nil {
		groups = []domain.SortGroup{}
	}
	groupsJSON, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("failed to encode groups: %w", err)
	}

	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.StudyID,
		session.StartedAt,
		session.DurationSec,
		demographics,
		groupsJSON,
		session.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("session references a missing study",
				slog.String("session_id", session.ID.String()),
				slog.String("study_id", session.StudyID.String()))
			return fmt.Errorf("%w: study with ID %s not found", store.ErrInvalidEntity, session.StudyID)
		}
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	log.Info("session recorded",
		slog.String("session_id", session.ID.String()),
		slog.String("study_id", session.StudyID.String()),
		slog.Int("group_count", domain.CountGroups(session.Groups)))
	return nil
}

// GetByID implements store.SessionStore.GetByID
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found", slog.String("session_id", id.String()))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}

	return session, nil
}

// ListByStudy implements store.SessionStore.ListByStudy
func (s *PostgresSessionStore) ListByStudy(ctx context.Context, studyID uuid.UUID) ([]domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE study_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, studyID)
	if err != nil {
		log.Error("failed to list sessions",
			slog.String("error", err.Error()),
			slog.String("study_id", studyID.String()))
		return nil, MapError(err)
	}
	defer func() {
		_ = rows.Close()
	}()

	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("sessions listed",
		slog.String("study_id", studyID.String()),
		slog.Int("count", len(sessions)))
	return sessions, nil
}

// Delete implements store.SessionStore.Delete
func (s *PostgresSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrSessionNotFound)
}

// DeleteByStudy implements store.SessionStore.DeleteByStudy
func (s *PostgresSessionStore) DeleteByStudy(ctx context.Context, studyID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE study_id = $1`, studyID)
	if err != nil {
		log.Error("failed to clear sessions",
			slog.String("error", err.Error()),
			slog.String("study_id", studyID.String()))
		return 0, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("sessions cleared",
		slog.String("study_id", studyID.String()),
		slog.Int64("count", n))
	return n, nil
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		session      domain.Session
		demographics []byte
		groups       []byte
	)
	if err := row.Scan(
		&session.ID,
		&session.StudyID,
		&session.StartedAt,
		&session.DurationSec,
		&demographics,
		&groups,
		&session.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(demographics, &session.Demographics); err != nil {
		return nil, fmt.Errorf("failed to decode demographics of session %s: %w", session.ID, err)
	}
	if err := json.Unmarshal(groups, &session.Groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups of session %s: %w", session.ID, err)
	}
	if session.Groups == nil {
		session.Groups = []domain.SortGroup{}
	}

	return &session, nil
}
