package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user, hashing its plaintext Password when set.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Delete removes a user and, through cascading, their studies.
	// Returns ErrUserNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
