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

// PostgresStudyStore implements the store.StudyStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStudyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudyStore creates a new PostgreSQL implementation of the StudyStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresStudyStore(db store.DBTX, logger *slog.Logger) *PostgresStudyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStudyStore{
		db:     db,
		logger: logger.With(slog.String("component", "study_store")),
	}
}

// Ensure PostgresStudyStore implements store.StudyStore interface
var _ store.StudyStore = (*PostgresStudyStore)(nil)

// WithTx implements store.StudyStore.WithTx
func (s *PostgresStudyStore) WithTx(tx *sql.Tx) store.StudyStore {
	return &PostgresStudyStore{
		db:     tx,
		logger: s.logger,
	}
}

const studyColumns = `id, owner_id, name, cards, profiles, created_at, updated_at`

// Create implements store.StudyStore.Create
// Returns store.ErrInvalidEntity if the study is invalid or its owner does not exist.
func (s *PostgresStudyStore) Create(ctx context.Context, study *domain.Study) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := study.Validate(); err != nil {
		log.Warn("study validation failed during create",
			slog.String("error", err.Error()),
			slog.String("study_id", study.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	cards, profiles, err := encodeStudyColumns(study)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO studies (` + studyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query,
		study.ID,
		study.OwnerID,
		study.Name,
		cards,
		profiles,
		study.CreatedAt,
		study.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create study",
			slog.String("error", err.Error()),
			slog.String("study_id", study.ID.String()),
			slog.String("owner_id", study.OwnerID.String()))
		return MapError(err)
	}

	log.Info("study created successfully",
		slog.String("study_id", study.ID.String()),
		slog.Int("card_count", len(study.Cards)))
	return nil
}

// GetByID implements store.StudyStore.GetByID
func (s *PostgresStudyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Study, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + studyColumns + ` FROM studies WHERE id = $1`
	study, err := scanStudy(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("study not found", slog.String("study_id", id.String()))
			return nil, store.ErrStudyNotFound
		}
		log.Error("failed to get study",
			slog.String("error", err.Error()),
			slog.String("study_id", id.String()))
		return nil, MapError(err)
	}

	return study, nil
}

// ListByOwner implements store.StudyStore.ListByOwner
func (s *PostgresStudyStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Study, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + studyColumns + `
		FROM studies
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to list studies",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() {
		_ = rows.Close()
	}()

	studies := []domain.Study{}
	for rows.Next() {
		study, err := scanStudy(rows)
		if err != nil {
			log.Error("failed to scan study row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		studies = append(studies, *study)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return studies, nil
}

// Update implements store.StudyStore.Update
func (s *PostgresStudyStore) Update(ctx context.Context, study *domain.Study) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := study.Validate(); err != nil {
		log.Warn("study validation failed during update",
			slog.String("error", err.Error()),
			slog.String("study_id", study.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	cards, profiles, err := encodeStudyColumns(study)
	if err != nil {
		return err
	}

	study.UpdatedAt = nowUTC()
	query := `
		UPDATE studies
		SET name = $1, cards = $2, profiles = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		study.Name,
		cards,
		profiles,
		study.UpdatedAt,
		study.ID,
	)
	if err != nil {
		log.Error("failed to update study",
			slog.String("error", err.Error()),
			slog.String("study_id", study.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrStudyNotFound); err != nil {
		return err
	}

	log.Debug("study updated", slog.String("study_id", study.ID.String()))
	return nil
}

// Delete implements store.StudyStore.Delete
func (s *PostgresStudyStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM studies WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete study",
			slog.String("error", err.Error()),
			slog.String("study_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrStudyNotFound); err != nil {
		return err
	}

	log.Info("study deleted successfully", slog.String("study_id", id.String()))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudy(row rowScanner) (*domain.Study, error) {
	var (
		study    domain.Study
		cards    []byte
		profiles []byte
	)
	if err := row.Scan(
		&study.ID,
		&study.OwnerID,
		&study.Name,
		&cards,
		&profiles,
		&study.CreatedAt,
		&study.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cards, &study.Cards); err != nil {
		return nil, fmt.Errorf("failed to decode cards of study %s: %w", study.ID, err)
	}
	if err := json.Unmarshal(profiles, &study.Profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles of study %s: %w", study.ID, err)
	}
	if study.Cards == nil {
		study.Cards = []domain.Card{}
	}
	if study.Profiles == nil {
		study.Profiles = []domain.Profile{}
	}

	return &study, nil
}

func encodeStudyColumns(study *domain.Study) ([]byte, []byte, error) {
	cards := study.Cards
	if cards == nil {
		cards = []domain.Card{}
	}
	profiles := study.Profiles
	if profiles == nil {
		profiles = []domain.Profile{}
	}

	cardsJSON, err := json.Marshal(cards)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode cards: %w", err)
	}
	profilesJSON, err := json.Marshal(profiles)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode profiles: %w", err)
	}
	return cardsJSON, profilesJSON, nil
}
