package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockJWTService is a JWTService for handler and middleware tests. Function
// fields take precedence over the fixed fields.
type MockJWTService struct {
	GenerateTokenFunc func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFunc func(ctx context.Context, tokenString string) (*Claims, error)

	Token           string
	TokenError      error
	ValidationError error
	Claims          *Claims
}

// NewMockJWTService returns a mock that issues "mock-jwt-token" and accepts
// any token as belonging to userID.
func NewMockJWTService(userID uuid.UUID) *MockJWTService {
	now := time.Now()
	return &MockJWTService{
		Token: "mock-jwt-token",
		Claims: &Claims{
			UserID:    userID,
			TokenType: accessTokenType,
			Subject:   userID.String(),
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
			ID:        uuid.NewString(),
		},
	}
}

// GenerateToken implements JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(ctx, userID)
	}
	return m.Token, m.TokenError
}

// ValidateToken implements JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, tokenString)
	}
	if m.ValidationError != nil {
		return nil, m.ValidationError
	}
	return m.Claims, nil
}
