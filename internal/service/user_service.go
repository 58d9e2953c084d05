package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"github.com/phrazzld/cardsort-api/internal/store"
)

// UserService provides researcher account operations.
type UserService interface {
	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetUserByEmail retrieves a user by their email address
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// CreateUser creates a new user with the specified email and password
	CreateUser(ctx context.Context, email, password string) (*domain.User, error)

	// DeleteUser deletes a user and, through the store, all of their studies
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type userServiceImpl struct {
	userStore store.UserStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userStore store.UserStore, db *sql.DB, logger *slog.Logger) (UserService, error) {
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userStore: userStore,
		db:        db,
		logger:    logger.With(slog.String("component", "user_service")),
	}, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		log.Error("failed to retrieve user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *userServiceImpl) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("user not found by email")
		} else {
			log.Error("failed to retrieve user by email", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to retrieve user by email: %w", err)
	}
	return user, nil
}

// CreateUser validates the credentials and stores the user in a transaction.
func (s *userServiceImpl) CreateUser(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password)
	if err != nil {
		log.Debug("rejected user registration", slog.String("error", err.Error()))
		return nil, invalid("user", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create user with existing email")
		} else {
			log.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("attempted to delete non-existent user", slog.String("user_id", userID.String()))
		} else {
			log.Error("failed to delete user",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Info("user deleted", slog.String("user_id", userID.String()))
	return nil
}
