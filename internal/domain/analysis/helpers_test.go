package analysis

import (
	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/domain"
)

func group(id string, cards []string, children ...domain.SortGroup) domain.SortGroup {
	return domain.SortGroup{ID: id, Name: id, CardIDs: cards, Children: children}
}

func session(groups ...domain.SortGroup) domain.Session {
	return domain.Session{ID: uuid.New(), StudyID: uuid.Nil, Groups: groups}
}

func similarityOf(ids []string, values [][]float64) SimilarityMatrix {
	return SimilarityMatrix{IDs: ids, Values: values}
}

func isSymmetricInt(m CountMatrix) bool {
	for i := range m.Values {
		for j := range m.Values {
			if m.Values[i][j] != m.Values[j][i] {
				return false
			}
		}
	}
	return true
}
