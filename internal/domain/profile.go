package domain

import (
	"errors"
	"strings"
)

var (
	ErrProfileIDEmpty      = errors.New("profile ID cannot be empty")
	ErrProfileNameEmpty    = errors.New("profile name cannot be empty")
	ErrDuplicateProfileID  = errors.New("duplicate profile ID")
	ErrInvalidGender       = errors.New("invalid gender")
	ErrInvalidAge          = errors.New("age must be between 0 and 150")
	ErrUnknownProfile      = errors.New("session references an unknown profile")
	ErrNegativeDurationSec = errors.New("duration cannot be negative")
)

// Profile is a participant category a study collects sessions for.
type Profile struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Validate checks if the Profile has valid data.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrProfileIDEmpty
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrProfileNameEmpty
	}
	return nil
}

// ValidateProfiles validates every profile and rejects duplicate IDs.
func ValidateProfiles(profiles []Profile) error {
	seen := make(map[string]struct{}, len(profiles))
	for i := range profiles {
		if err := profiles[i].Validate(); err != nil {
			return err
		}
		if _, ok := seen[profiles[i].ID]; ok {
			return ErrDuplicateProfileID
		}
		seen[profiles[i].ID] = struct{}{}
	}
	return nil
}

// Gender is the self-reported gender recorded with a session.
type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
)

// ParseGender normalizes user input. Spanish "otro" and mixed case are accepted
// so documents exported by earlier tools still import.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return GenderUnspecified, nil
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	case "other", "otro":
		return GenderOther, nil
	default:
		return GenderUnspecified, ErrInvalidGender
	}
}

// Demographics is participant metadata. Analysis never reads it.
type Demographics struct {
	ProfileID string `json:"profile_id,omitempty" yaml:"profileId,omitempty"`
	Gender    Gender `json:"gender,omitempty"     yaml:"gender,omitempty"`
	Age       int    `json:"age,omitempty"        yaml:"age,omitempty"`
}

// Validate checks the gender value and age range.
func (d *Demographics) Validate() error {
	if _, err := ParseGender(string(d.Gender)); err != nil {
		return err
	}
	if d.Age < 0 || d.Age > 150 {
		return ErrInvalidAge
	}
	return nil
}
