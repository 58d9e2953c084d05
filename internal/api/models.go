package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"github.com/phrazzld/cardsort-api/internal/domain/analysis"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT sent as "Authorization: Bearer <token>".
	AccessToken string `json:"token"`

	// ExpiresAt is the RFC 3339 time the token expires.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// CreateStudyRequest defines the payload for creating a study.
type CreateStudyRequest struct {
	Name     string           `json:"name"     validate:"required,max=200"`
	Cards    []domain.Card    `json:"cards"`
	Profiles []domain.Profile `json:"profiles"`
}

// RenameStudyRequest defines the payload for renaming a study.
type RenameStudyRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// DuplicateStudyRequest names the copy. An empty name appends " (copy)".
type DuplicateStudyRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// ReplaceCardsRequest replaces the card deck.
type ReplaceCardsRequest struct {
	Cards []domain.Card `json:"cards" validate:"required"`
}

// ReplaceProfilesRequest replaces the participant profiles.
type ReplaceProfilesRequest struct {
	Profiles []domain.Profile `json:"profiles" validate:"required"`
}

// CategoriesRequest defines the payload for category suggestions. Height is
// the dendrogram cut height in [0, 1].
type CategoriesRequest struct {
	Height  float64 `json:"height"  validate:"gte=0,lte=1"`
	Size    int     `json:"size"    validate:"gte=0"`
	Linkage string  `json:"linkage"`
	Reorder *bool   `json:"reorder"`
}

// StudyResponse is a study with its deck and profiles.
type StudyResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Cards     []domain.Card    `json:"cards"`
	Profiles  []domain.Profile `json:"profiles"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// StudySummary is one entry of the study list.
type StudySummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	CardCount    int       `json:"card_count"`
	ProfileCount int       `json:"profile_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ClearSessionsResponse reports how many sessions were deleted.
type ClearSessionsResponse struct {
	Deleted int64 `json:"deleted"`
}

// AnalysisResponse wraps a report. Heatmap holds the similarity matrix
// permuted into HeatmapOrder, ready for rendering.
type AnalysisResponse struct {
	*analysis.Report
	Heatmap analysis.SimilarityMatrix `json:"heatmap"`
}

func studyToResponse(s *domain.Study) StudyResponse {
	return StudyResponse{
		ID:        s.ID,
		Name:      s.Name,
		Cards:     s.Cards,
		Profiles:  s.Profiles,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func studyToSummary(s domain.Study) StudySummary {
	return StudySummary{
		ID:           s.ID,
		Name:         s.Name,
		CardCount:    len(s.Cards),
		ProfileCount: len(s.Profiles),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
