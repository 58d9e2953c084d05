package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionIDEmpty      = errors.New("session ID cannot be empty")
	ErrSessionStudyIDEmpty = errors.New("session study ID cannot be empty")
)

// Session is one participant's completed sort of a study.
type Session struct {
	ID           uuid.UUID    `json:"id"`
	StudyID      uuid.UUID    `json:"study_id"`
	StartedAt    time.Time    `json:"started_at"`
	DurationSec  int          `json:"duration_sec"`
	Demographics Demographics `json:"demographics"`
	Groups       []SortGroup  `json:"groups"`
	CreatedAt    time.Time    `json:"created_at"`
}

// NewSession creates a Session for a study. A zero startedAt defaults to now.
func NewSession(
	studyID uuid.UUID,
	startedAt time.Time,
	durationSec int,
	demographics Demographics,
	groups []SortGroup,
) (*Session, error) {
	now := time.Now().UTC()
	if startedAt.IsZero() {
		startedAt = now
	}
	if groups == nil {
		groups = []SortGroup{}
	}

	session := &Session{
		ID:           uuid.New(),
		StudyID:      studyID,
		StartedAt:    startedAt.UTC(),
		DurationSec:  durationSec,
		Demographics: demographics,
		Groups:       groups,
		CreatedAt:    now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks identifiers, demographics and the move-not-copy rule of the
// group forest. It does not know the study's cards; see Study.ValidateSession.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}
	if s.StudyID == uuid.Nil {
		return ErrSessionStudyIDEmpty
	}
	if s.DurationSec < 0 {
		return ErrNegativeDurationSec
	}
	if err := s.Demographics.Validate(); err != nil {
		return err
	}
	return ValidateForest(s.Groups, nil)
}

// UnsortedCardIDs returns the IDs of cards that no group of the session owns,
// in card order.
func (s *Session) UnsortedCardIDs(cards []Card) []string {
	placed := make(map[string]struct{})
	for _, id := range PlacedCardIDs(s.Groups) {
		placed[id] = struct{}{}
	}
	unsorted := []string{}
	for _, c := range cards {
		if _, ok := placed[c.ID]; !ok {
			unsorted = append(unsorted, c.ID)
		}
	}
	return unsorted
}
