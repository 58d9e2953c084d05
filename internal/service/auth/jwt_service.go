package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and checks the bearer tokens that guard the study API.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks signature, lifetime and token type and returns
	// the claims of a valid token.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the token fields the API relies on.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	TokenType string    `json:"type,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
