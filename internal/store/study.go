package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
)

// StudyStore persists studies with their card decks and profiles.
type StudyStore interface {
	// Create saves a new study. Returns ErrInvalidEntity wrapping the domain
	// error when the study does not validate.
	Create(ctx context.Context, study *domain.Study) error

	// GetByID retrieves a study. Returns ErrStudyNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Study, error)

	// ListByOwner returns the owner's studies, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Study, error)

	// Update replaces the name, cards and profiles of a study.
	// Returns ErrStudyNotFound if absent.
	Update(ctx context.Context, study *domain.Study) error

	// Delete removes a study and its sessions.
	// Returns ErrStudyNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a StudyStore bound to tx.
	WithTx(tx *sql.Tx) StudyStore
}
