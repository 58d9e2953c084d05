package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for document formats other than JSON and
// YAML.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format is a study document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml and yml. An empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Document is the portable form of a study with its sessions. Field names
// and the millisecond timestamps match the files the browser-based editor
// exports, so those files import unchanged.
type Document struct {
	ID        string            `json:"id,omitempty"  yaml:"id,omitempty"`
	Name      string            `json:"name"          yaml:"name"`
	CreatedAt int64             `json:"createdAt"     yaml:"createdAt"`
	Cards     []domain.Card     `json:"cards"         yaml:"cards"`
	Profiles  []domain.Profile  `json:"profiles"      yaml:"profiles"`
	Sessions  []SessionDocument `json:"sessions"      yaml:"sessions"`
}

// SessionDocument is one participant's sort inside a Document.
type SessionDocument struct {
	ID           string               `json:"id"           yaml:"id"`
	StartedAt    int64                `json:"startedAt"    yaml:"startedAt"`
	DurationSec  int                  `json:"durationSec"  yaml:"durationSec"`
	Demographics DemographicsDocument `json:"demographics" yaml:"demographics"`
	Groups       []GroupDocument      `json:"groups"       yaml:"groups"`
}

// DemographicsDocument allows null gender and age, as the editor writes them.
type DemographicsDocument struct {
	ProfileID string  `json:"profileId"        yaml:"profileId"`
	Gender    *string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Age       *int    `json:"age,omitempty"    yaml:"age,omitempty"`
}

// GroupDocument is a SortGroup inside a Document.
type GroupDocument struct {
	ID       string          `json:"id"       yaml:"id"`
	Name     string          `json:"name"     yaml:"name"`
	CardIDs  []string        `json:"cardIds"  yaml:"cardIds"`
	Children []GroupDocument `json:"children" yaml:"children"`
}

// NewDocument builds the portable form of a study and its sessions.
func NewDocument(study *domain.Study, sessions []domain.Session) Document {
	doc := Document{
		ID:        study.ID.String(),
		Name:      study.Name,
		CreatedAt: study.CreatedAt.UnixMilli(),
		Cards:     nonNil(study.Cards),
		Profiles:  nonNil(study.Profiles),
		Sessions:  make([]SessionDocument, 0, len(sessions)),
	}

	for _, s := range sessions {
		doc.Sessions = append(doc.Sessions, NewSessionDocument(s))
	}

	return doc
}

// ToStudy converts the document into a new study owned by ownerID, with fresh
// IDs for the study and its sessions. A blank name becomes
// "Imported study <date>".
func (d *Document) ToStudy(ownerID uuid.UUID, now time.Time) (*domain.Study, []domain.Session, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = "Imported study " + now.UTC().Format("2006-01-02")
	}

	study, err := domain.NewStudy(ownerID, name, d.Cards, d.Profiles)
	if err != nil {
		return nil, nil, err
	}

	sessions := make([]domain.Session, 0, len(d.Sessions))
	for i, sd := range d.Sessions {
		startedAt, demographics, groups, err := sd.DomainValues()
		if err != nil {
			return nil, nil, fmt.Errorf("session %d: %w", i, err)
		}
		session, err := domain.NewSession(study.ID, startedAt, sd.DurationSec, demographics, groups)
		if err != nil {
			return nil, nil, fmt.Errorf("session %d: %w", i, err)
		}
		sessions = append(sessions, *session)
	}

	return study, sessions, nil
}

// NewSessionDocument converts a session to its portable form. Unset gender
// and age are omitted.
func NewSessionDocument(s domain.Session) SessionDocument {
	sd := SessionDocument{
		ID:          s.ID.String(),
		StartedAt:   s.StartedAt.UnixMilli(),
		DurationSec: s.DurationSec,
		Demographics: DemographicsDocument{
			ProfileID: s.Demographics.ProfileID,
		},
		Groups: groupsToDocument(s.Groups),
	}
	if s.Demographics.Gender != domain.GenderUnspecified {
		g := string(s.Demographics.Gender)
		sd.Demographics.Gender = &g
	}
	if s.Demographics.Age > 0 {
		age := s.Demographics.Age
		sd.Demographics.Age = &age
	}
	return sd
}

// DomainValues returns the start time, demographics and group forest of the
// session. A missing start time is returned as the zero time.
func (sd *SessionDocument) DomainValues() (time.Time, domain.Demographics, []domain.SortGroup, error) {
	demographics := domain.Demographics{ProfileID: sd.Demographics.ProfileID}
	if sd.Demographics.Gender != nil {
		gender, err := domain.ParseGender(*sd.Demographics.Gender)
		if err != nil {
			return time.Time{}, domain.Demographics{}, nil, err
		}
		demographics.Gender = gender
	}
	if sd.Demographics.Age != nil {
		demographics.Age = *sd.Demographics.Age
	}

	var startedAt time.Time
	if sd.StartedAt > 0 {
		startedAt = time.UnixMilli(sd.StartedAt)
	}

	return startedAt, demographics, groupsFromDocument(sd.Groups), nil
}

// Encode writes the document in the given format.
func Encode(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}

// Decode reads a document in the given format.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFormat, err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	return &doc, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName derives a download file name from a study name.
func FileName(studyName string, format Format) string {
	base := whitespace.ReplaceAllString(strings.TrimSpace(studyName), "_")
	if base == "" {
		base = "study"
	}
	return base + "." + string(format)
}

func groupsToDocument(groups []domain.SortGroup) []GroupDocument {
	out := make([]GroupDocument, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupDocument{
			ID:       g.ID,
			Name:     g.Name,
			CardIDs:  nonNil(g.CardIDs),
			Children: groupsToDocument(g.Children),
		})
	}
	return out
}

func groupsFromDocument(groups []GroupDocument) []domain.SortGroup {
	out := make([]domain.SortGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, domain.SortGroup{
			ID:       g.ID,
			Name:     g.Name,
			CardIDs:  nonNil(g.CardIDs),
			Children: groupsFromDocument(g.Children),
		})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
