package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
)

// SessionStore persists recorded sorting sessions.
type SessionStore interface {
	// Create saves a new session. The referenced study must exist.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID retrieves a session. Returns ErrSessionNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// ListByStudy returns the study's sessions, oldest first.
	ListByStudy(ctx context.Context, studyID uuid.UUID) ([]domain.Session, error)

	// Delete removes one session. Returns ErrSessionNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByStudy removes every session of a study and returns how many
	// were removed.
	DeleteByStudy(ctx context.Context, studyID uuid.UUID) (int64, error)

	// WithTx returns a SessionStore bound to tx.
	WithTx(tx *sql.Tx) SessionStore
}
