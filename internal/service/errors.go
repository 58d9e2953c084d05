package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/cardsort-api/internal/domain"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrNotOwned indicates a study is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrNothingToName indicates category suggestions were requested for a
	// study without sessions, so there is no dendrogram to cut.
	ErrNothingToName = errors.New("study has no sessions to derive categories from")
)

// ServiceError is a custom error type for service errors.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// invalid marks a domain rule violation as a validation error so callers can
// match domain.ErrValidation as well as the specific sentinel.
func invalid(field string, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return domain.NewValidationError(field, err.Error(), err)
}
