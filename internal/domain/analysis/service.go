package analysis

import (
	"errors"

	"github.com/phrazzld/cardsort-api/internal/domain"
)

// ErrInvalidSetSize is returned when default options carry a set size below
// the minimum.
var ErrInvalidSetSize = errors.New("analysis set size must be at least 2")

// Report bundles every artifact of one analysis run. All matrices use the
// analysis-set order; HeatmapOrder says how a heatmap should arrange them.
type Report struct {
	// Options are the effective options after defaults and clamping.
	Options Options `json:"options"`

	CardIDs []string `json:"card_ids"`
	Labels  []string `json:"labels"`

	SessionCount int `json:"session_count"`

	Cooccurrence    CountMatrix      `json:"cooccurrence"`
	JointAppearance CountMatrix      `json:"joint_appearance"`
	Similarity      SimilarityMatrix `json:"similarity"`
	Dendrogram      *Node            `json:"dendrogram"`
	HeatmapOrder    []string         `json:"heatmap_order"`
	Projection      Projection       `json:"projection"`
}

// Label returns the display label of a card in the analysis set, or the ID
// itself when the card is not part of it.
func (r *Report) Label(cardID string) string {
	for i, id := range r.CardIDs {
		if id == cardID {
			return r.Labels[i]
		}
	}
	return cardID
}

// Analyze runs the whole pipeline: it selects the analysis set from the front
// of the deck, counts co-occurrences over every session, normalizes them into
// similarities, then clusters and projects the cards.
//
// Zero-valued options fall back to the defaults: an empty linkage means
// average. Sessions may reference cards that are no longer in the deck;
// those placements are ignored. Without any session there is nothing to
// cluster: the dendrogram is nil and the heatmap keeps deck order.
func Analyze(cards []domain.Card, sessions []domain.Session, opts Options) *Report {
	if opts.Linkage == "" {
		opts.Linkage = LinkageAverage
	}
	opts.AnalysisSetSize = ClampSetSize(opts.AnalysisSetSize, len(cards))

	set := SelectAnalysisSet(cards, opts.AnalysisSetSize)
	ids := make([]string, len(set))
	labels := make([]string, len(set))
	for i, c := range set {
		ids[i] = c.ID
		labels[i] = c.DisplayLabel()
	}

	counts := CountCooccurrences(sessions, ids)
	similarity := BuildSimilarity(counts)

	var tree *Node
	if len(sessions) > 0 {
		tree = BuildDendrogram(similarity, opts.Linkage)
	}

	order := cloneIDs(ids)
	if opts.ReorderByDendrogram {
		order = LeafOrder(tree, ids)
	}

	return &Report{
		Options:         opts,
		CardIDs:         ids,
		Labels:          labels,
		SessionCount:    len(sessions),
		Cooccurrence:    counts.Same,
		JointAppearance: counts.Joint,
		Similarity:      similarity,
		Dendrogram:      tree,
		HeatmapOrder:    order,
		Projection:      Project(similarity, ProjectionDims),
	}
}

// Service runs analyses with a fixed set of default options.
type Service interface {
	// Analyze validates opts, fills zero fields from the defaults and runs
	// the pipeline.
	Analyze(cards []domain.Card, sessions []domain.Session, opts Options) (*Report, error)

	// Defaults returns the options used for zero-valued fields.
	Defaults() Options
}

type defaultService struct {
	defaults Options
}

// NewDefaultService creates a Service using NewDefaultOptions.
func NewDefaultService() Service {
	return &defaultService{defaults: NewDefaultOptions()}
}

// NewServiceWithOptions creates a Service with custom defaults.
func NewServiceWithOptions(defaults Options) (Service, error) {
	if defaults.AnalysisSetSize < MinAnalysisSetSize {
		return nil, ErrInvalidSetSize
	}
	if defaults.Linkage == "" {
		defaults.Linkage = LinkageAverage
	}
	if !defaults.Linkage.Valid() {
		return nil, ErrInvalidLinkage
	}
	return &defaultService{defaults: defaults}, nil
}

func (s *defaultService) Defaults() Options {
	return s.defaults
}

// Analyze implements Service. Only the linkage can be rejected; set sizes
// are clamped. ReorderByDendrogram is taken as given.
func (s *defaultService) Analyze(
	cards []domain.Card,
	sessions []domain.Session,
	opts Options,
) (*Report, error) {
	if opts.AnalysisSetSize == 0 {
		opts.AnalysisSetSize = s.defaults.AnalysisSetSize
	}
	if opts.Linkage == "" {
		opts.Linkage = s.defaults.Linkage
	}
	if !opts.Linkage.Valid() {
		return nil, ErrInvalidLinkage
	}
	return Analyze(cards, sessions, opts), nil
}
