package domain

import (
	"errors"
	"strings"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrDuplicateCardID is returned when two cards of a study share an ID.
	ErrDuplicateCardID = errors.New("duplicate card ID")
)

// Card is one item participants sort.
// IDs are free-form strings chosen by the study author and must be unique
// within a study. The label is what participants and reports show; a blank
// label displays as the ID.
type Card struct {
	ID          string `json:"id"                    yaml:"id"`
	Label       string `json:"label"                 yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewCard creates a Card, trimming surrounding whitespace from the ID and label.
func NewCard(id, label, description string) (*Card, error) {
	card := &Card{
		ID:          strings.TrimSpace(id),
		Label:       strings.TrimSpace(label),
		Description: description,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrCardIDEmpty
	}
	return nil
}

// DisplayLabel returns the label, or the ID when the label is blank.
func (c Card) DisplayLabel() string {
	if strings.TrimSpace(c.Label) == "" {
		return c.ID
	}
	return c.Label
}

// ValidateCards validates every card and rejects duplicate IDs.
func ValidateCards(cards []Card) error {
	seen := make(map[string]struct{}, len(cards))
	for i := range cards {
		if err := cards[i].Validate(); err != nil {
			return err
		}
		if _, ok := seen[cards[i].ID]; ok {
			return ErrDuplicateCardID
		}
		seen[cards[i].ID] = struct{}{}
	}
	return nil
}

// CardLabels maps card IDs to display labels.
func CardLabels(cards []Card) map[string]string {
	labels := make(map[string]string, len(cards))
	for _, c := range cards {
		labels[c.ID] = c.DisplayLabel()
	}
	return labels
}
