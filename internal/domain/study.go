package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrStudyIDEmpty      = errors.New("study ID cannot be empty")
	ErrStudyOwnerIDEmpty = errors.New("study owner ID cannot be empty")
	ErrStudyNameEmpty    = errors.New("study name cannot be empty")

	// ErrSessionStudyMismatch is returned when a session is validated against
	// a study it does not belong to.
	ErrSessionStudyMismatch = errors.New("session belongs to a different study")
)

// Study is a card-sorting study: the card deck, the participant profiles and,
// when loaded, the sessions collected so far.
type Study struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Cards     []Card    `json:"cards"`
	Profiles  []Profile `json:"profiles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStudy creates a Study owned by ownerID.
func NewStudy(ownerID uuid.UUID, name string, cards []Card, profiles []Profile) (*Study, error) {
	if cards == nil {
		cards = []Card{}
	}
	if profiles == nil {
		profiles = []Profile{}
	}

	now := time.Now().UTC()
	study := &Study{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(name),
		Cards:     cards,
		Profiles:  profiles,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := study.Validate(); err != nil {
		return nil, err
	}

	return study, nil
}

// Validate checks if the Study has valid data.
func (s *Study) Validate() error {
	if s.ID == uuid.Nil {
		return ErrStudyIDEmpty
	}
	if s.OwnerID == uuid.Nil {
		return ErrStudyOwnerIDEmpty
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrStudyNameEmpty
	}
	if err := ValidateCards(s.Cards); err != nil {
		return err
	}
	return ValidateProfiles(s.Profiles)
}

// Rename changes the study name.
func (s *Study) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrStudyNameEmpty
	}
	s.Name = name
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// ReplaceCards swaps the card deck. Sessions referring to removed cards are
// kept; analysis drops the missing IDs.
func (s *Study) ReplaceCards(cards []Card) error {
	if cards == nil {
		cards = []Card{}
	}
	if err := ValidateCards(cards); err != nil {
		return err
	}
	s.Cards = cards
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// ReplaceProfiles swaps the profile list.
func (s *Study) ReplaceProfiles(profiles []Profile) error {
	if profiles == nil {
		profiles = []Profile{}
	}
	if err := ValidateProfiles(profiles); err != nil {
		return err
	}
	s.Profiles = profiles
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Duplicate copies the deck and profiles into a new study. Sessions are not
// copied.
func (s *Study) Duplicate(name string) (*Study, error) {
	if strings.TrimSpace(name) == "" {
		name = s.Name + " (copy)"
	}
	cards := make([]Card, len(s.Cards))
	copy(cards, s.Cards)
	profiles := make([]Profile, len(s.Profiles))
	copy(profiles, s.Profiles)
	return NewStudy(s.OwnerID, name, cards, profiles)
}

// CardIDSet returns the set of card IDs in the deck.
func (s *Study) CardIDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Cards))
	for _, c := range s.Cards {
		set[c.ID] = struct{}{}
	}
	return set
}

// ValidateSession checks a new session against the study: it must belong to
// the study, reference only current cards and, if a profile is given, an
// existing profile.
func (s *Study) ValidateSession(session *Session) error {
	if session.StudyID != s.ID {
		return ErrSessionStudyMismatch
	}
	if err := session.Validate(); err != nil {
		return err
	}
	if err := ValidateForest(session.Groups, s.CardIDSet()); err != nil {
		return err
	}
	if pid := session.Demographics.ProfileID; pid != "" {
		for _, p := range s.Profiles {
			if p.ID == pid {
				return nil
			}
		}
		return ErrUnknownProfile
	}
	return nil
}
