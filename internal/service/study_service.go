package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/export"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"github.com/phrazzld/cardsort-api/internal/store"
)

// StudyService manages a researcher's studies. Every method that takes a
// studyID returns ErrNotOwned when the study belongs to someone else.
type StudyService interface {
	// CreateStudy creates a study with an optional initial deck and profiles.
	CreateStudy(ctx context.Context, userID uuid.UUID, name string, cards []domain.Card, profiles []domain.Profile) (*domain.Study, error)

	// GetStudy retrieves one study.
	GetStudy(ctx context.Context, userID, studyID uuid.UUID) (*domain.Study, error)

	// ListStudies returns the user's studies, newest first.
	ListStudies(ctx context.Context, userID uuid.UUID) ([]domain.Study, error)

	// RenameStudy changes the study name.
	RenameStudy(ctx context.Context, userID, studyID uuid.UUID, name string) (*domain.Study, error)

	// ReplaceCards swaps the whole deck. Sessions are kept; placements of
	// cards no longer in the deck are ignored by analysis.
	ReplaceCards(ctx context.Context, userID, studyID uuid.UUID, cards []domain.Card) (*domain.Study, error)

	// ReplaceProfiles swaps the profile list.
	ReplaceProfiles(ctx context.Context, userID, studyID uuid.UUID, profiles []domain.Profile) (*domain.Study, error)

	// DuplicateStudy copies the study, its deck, profiles and sessions under
	// new IDs. An empty name yields "<name> (copy)".
	DuplicateStudy(ctx context.Context, userID, studyID uuid.UUID, name string) (*domain.Study, error)

	// DeleteStudy removes the study and its sessions.
	DeleteStudy(ctx context.Context, userID, studyID uuid.UUID) error

	// ImportStudy stores a study document as a new study owned by userID.
	ImportStudy(ctx context.Context, userID uuid.UUID, doc *export.Document) (*domain.Study, error)

	// ExportStudy builds the portable document of a study and its sessions.
	ExportStudy(ctx context.Context, userID, studyID uuid.UUID) (*export.Document, error)
}

type studyServiceImpl struct {
	studyStore   store.StudyStore
	sessionStore store.SessionStore
	db           *sql.DB
	logger       *slog.Logger
	now          func() time.Time
}

// NewStudyService creates a new StudyService.
// It returns an error if any of the required dependencies are nil.
func NewStudyService(
	studyStore store.StudyStore,
	sessionStore store.SessionStore,
	db *sql.DB,
	logger *slog.Logger,
) (StudyService, error) {
	if studyStore == nil {
		return nil, domain.NewValidationError("studyStore", "cannot be nil", domain.ErrValidation)
	}
	if sessionStore == nil {
		return nil, domain.NewValidationError("sessionStore", "cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &studyServiceImpl{
		studyStore:   studyStore,
		sessionStore: sessionStore,
		db:           db,
		logger:       logger.With(slog.String("component", "study_service")),
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

const studyServiceName = "study"

func (s *studyServiceImpl) CreateStudy(
	ctx context.Context,
	userID uuid.UUID,
	name string,
	cards []domain.Card,
	profiles []domain.Profile,
) (*domain.Study, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	study, err := domain.NewStudy(userID, name, cards, profiles)
	if err != nil {
		return nil, invalid("study", err)
	}

	if err := s.studyStore.Create(ctx, study); err != nil {
		log.Error("failed to create study",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError(studyServiceName, "create_study", "failed to save study", err)
	}

	log.Info("study created",
		slog.String("study_id", study.ID.String()),
		slog.Int("card_count", len(study.Cards)))
	return study, nil
}

func (s *studyServiceImpl) GetStudy(ctx context.Context, userID, studyID uuid.UUID) (*domain.Study, error) {
	return loadOwnedStudy(ctx, s.studyStore, userID, studyID, "get_study")
}

func (s *studyServiceImpl) ListStudies(ctx context.Context, userID uuid.UUID) ([]domain.Study, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	studies, err := s.studyStore.ListByOwner(ctx, userID)
	if err != nil {
		log.Error("failed to list studies",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError(studyServiceName, "list_studies", "failed to list studies", err)
	}
	return studies, nil
}

func (s *studyServiceImpl) RenameStudy(ctx context.Context, userID, studyID uuid.UUID, name string) (*domain.Study, error) {
	return s.update(ctx, userID, studyID, "rename_study", func(study *domain.Study) error {
		return invalidIfErr("name", study.Rename(name))
	})
}

func (s *studyServiceImpl) ReplaceCards(ctx context.Context, userID, studyID uuid.UUID, cards []domain.Card) (*domain.Study, error) {
	return s.update(ctx, userID, studyID, "replace_cards", func(study *domain.Study) error {
		return invalidIfErr("cards", study.ReplaceCards(cards))
	})
}

func (s *studyServiceImpl) ReplaceProfiles(
	ctx context.Context,
	userID, studyID uuid.UUID,
	profiles []domain.Profile,
) (*domain.Study, error) {
	return s.update(ctx, userID, studyID, "replace_profiles", func(study *domain.Study) error {
		return invalidIfErr("profiles", study.ReplaceProfiles(profiles))
	})
}

// update loads, mutates and saves a study inside one transaction.
func (s *studyServiceImpl) update(
	ctx context.Context,
	userID, studyID uuid.UUID,
	operation string,
	mutate func(*domain.Study) error,
) (*domain.Study, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Study
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStudies := s.studyStore.WithTx(tx)

		study, err := loadOwnedStudy(ctx, txStudies, userID, studyID, operation)
		if err != nil {
			return err
		}
		if err := mutate(study); err != nil {
			return err
		}
		if err := txStudies.Update(ctx, study); err != nil {
			return NewServiceError(studyServiceName, operation, "failed to save study", err)
		}
		updated = study
		return nil
	})
	if err != nil {
		log.Debug("study update failed",
			slog.String("operation", operation),
			slog.String("study_id", studyID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("study updated",
		slog.String("operation", operation),
		slog.String("study_id", studyID.String()))
	return updated, nil
}

func (s *studyServiceImpl) DuplicateStudy(
	ctx context.Context,
	userID, studyID uuid.UUID,
	name string,
) (*domain.Study, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var duplicate *domain.Study
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStudies := s.studyStore.WithTx(tx)
		txSessions := s.sessionStore.WithTx(tx)

		source, err := loadOwnedStudy(ctx, txStudies, userID, studyID, "duplicate_study")
		if err != nil {
			return err
		}

		copied, err := source.Duplicate(name)
		if err != nil {
			return invalid("name", err)
		}
		if err := txStudies.Create(ctx, copied); err != nil {
			return NewServiceError(studyServiceName, "duplicate_study", "failed to save copy", err)
		}

		sessions, err := txSessions.ListByStudy(ctx, source.ID)
		if err != nil {
			return NewServiceError(studyServiceName, "duplicate_study", "failed to load sessions", err)
		}
		for i := range sessions {
			session := sessions[i]
			session.ID = uuid.New()
			session.StudyID = copied.ID
			if err := txSessions.Create(ctx, &session); err != nil {
				return NewServiceError(studyServiceName, "duplicate_study", "failed to copy session", err)
			}
		}

		duplicate = copied
		return nil
	})
	if err != nil {
		log.Debug("study duplication failed",
			slog.String("study_id", studyID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("study duplicated",
		slog.String("source_id", studyID.String()),
		slog.String("study_id", duplicate.ID.String()))
	return duplicate, nil
}

func (s *studyServiceImpl) DeleteStudy(ctx context.Context, userID, studyID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStudies := s.studyStore.WithTx(tx)
		if _, err := loadOwnedStudy(ctx, txStudies, userID, studyID, "delete_study"); err != nil {
			return err
		}
		if err := txStudies.Delete(ctx, studyID); err != nil {
			return NewServiceError(studyServiceName, "delete_study", "failed to delete study", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("study deleted", slog.String("study_id", studyID.String()))
	return nil
}

func (s *studyServiceImpl) ImportStudy(
	ctx context.Context,
	userID uuid.UUID,
	doc *export.Document,
) (*domain.Study, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	study, sessions, err := doc.ToStudy(userID, s.now())
	if err != nil {
		return nil, invalid("document", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.studyStore.WithTx(tx).Create(ctx, study); err != nil {
			return NewServiceError(studyServiceName, "import_study", "failed to save study", err)
		}
		txSessions := s.sessionStore.WithTx(tx)
		for i := range sessions {
			if err := txSessions.Create(ctx, &sessions[i]); err != nil {
				return NewServiceError(studyServiceName, "import_study", "failed to save session", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("study import failed", slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("study imported",
		slog.String("study_id", study.ID.String()),
		slog.Int("card_count", len(study.Cards)),
		slog.Int("session_count", len(sessions)))
	return study, nil
}

func (s *studyServiceImpl) ExportStudy(ctx context.Context, userID, studyID uuid.UUID) (*export.Document, error) {
	study, err := loadOwnedStudy(ctx, s.studyStore, userID, studyID, "export_study")
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionStore.ListByStudy(ctx, studyID)
	if err != nil {
		return nil, NewServiceError(studyServiceName, "export_study", "failed to load sessions", err)
	}

	doc := export.NewDocument(study, sessions)
	return &doc, nil
}

// loadOwnedStudy fetches a study and checks that userID owns it.
func loadOwnedStudy(
	ctx context.Context,
	studies store.StudyStore,
	userID, studyID uuid.UUID,
	operation string,
) (*domain.Study, error) {
	study, err := studies.GetByID(ctx, studyID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError(studyServiceName, operation, "study not found", store.ErrStudyNotFound)
		}
		return nil, NewServiceError(studyServiceName, operation, "failed to load study", err)
	}
	if study.OwnerID != userID {
		logger.FromContext(ctx).Warn("study access denied",
			slog.String("study_id", studyID.String()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError(studyServiceName, operation, "study not owned", ErrNotOwned)
	}
	return study, nil
}

func invalidIfErr(field string, err error) error {
	if err == nil {
		return nil
	}
	return invalid(field, err)
}
