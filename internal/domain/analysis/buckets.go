package analysis

import "github.com/phrazzld/cardsort-api/internal/domain"

// BucketRef identifies the group that directly owns a card within one
// session. Index is the group's pre-order position in the session forest and
// is what bucket equality compares; GroupID is carried for display.
type BucketRef struct {
	Index   int
	GroupID string
}

// Buckets maps card IDs to the group that directly owns them.
type Buckets map[string]BucketRef

// ExtractBuckets maps every analysis-set card the session placed to the group
// whose own card list contains it. Cards owned by a descendant belong to the
// descendant, not the ancestor. Cards the session left unsorted, and session
// cards outside the analysis set, are absent from the result.
//
// A card owned by two groups breaks the move-not-copy rule of the editor; the
// first group in pre-order wins.
func ExtractBuckets(session *domain.Session, ids []string) Buckets {
	buckets := make(Buckets)
	if session == nil || len(ids) == 0 {
		return buckets
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	domain.WalkGroups(session.Groups, func(index int, g *domain.SortGroup) {
		for _, cardID := range g.CardIDs {
			if _, ok := wanted[cardID]; !ok {
				continue
			}
			if _, seen := buckets[cardID]; seen {
				continue
			}
			buckets[cardID] = BucketRef{Index: index, GroupID: g.ID}
		}
	})

	return buckets
}
