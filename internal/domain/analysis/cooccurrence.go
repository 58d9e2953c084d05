package analysis

import "github.com/phrazzld/cardsort-api/internal/domain"

// Counts holds the two symmetric, zero-diagonal count matrices the similarity
// is derived from.
type Counts struct {
	// Same counts the sessions in which both cards sat in the same bucket.
	Same CountMatrix `json:"same"`
	// Joint counts the sessions in which both cards were sorted into some
	// group, not necessarily the same one.
	Joint CountMatrix `json:"joint"`
}

// CountCooccurrences aggregates bucket memberships over all sessions. ids
// fixes the row and column order of both matrices.
//
// For every session and every pair of distinct positions whose cards were
// both placed, Joint is incremented; Same is incremented as well when the two
// cards share a bucket. Sessions contribute independently and additively.
func CountCooccurrences(sessions []domain.Session, ids []string) Counts {
	counts := Counts{
		Same:  newCountMatrix(ids),
		Joint: newCountMatrix(ids),
	}

	present := make([]int, 0, len(ids))
	refs := make([]BucketRef, len(ids))

	for s := range sessions {
		buckets := ExtractBuckets(&sessions[s], ids)
		if len(buckets) < 2 {
			continue
		}

		present = present[:0]
		for i, id := range ids {
			if ref, ok := buckets[id]; ok {
				present = append(present, i)
				refs[i] = ref
			}
		}

		for x := 0; x < len(present); x++ {
			a := present[x]
			for y := x + 1; y < len(present); y++ {
				b := present[y]
				counts.Joint.Values[a][b]++
				counts.Joint.Values[b][a]++
				if refs[a].Index == refs[b].Index {
					counts.Same.Values[a][b]++
					counts.Same.Values[b][a]++
				}
			}
		}
	}

	return counts
}
