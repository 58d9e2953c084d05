package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCardPlacedTwice is returned when a card is owned by more than one
	// group of a session. Cards are moved between groups, never copied.
	ErrCardPlacedTwice = errors.New("card placed in more than one group")

	// ErrUnknownCard is returned when a session references a card the study
	// does not define.
	ErrUnknownCard = errors.New("session references an unknown card")
)

// SortGroup is one node of a participant's sort: a named group owning cards
// directly and holding nested sub-groups.
type SortGroup struct {
	ID       string      `json:"id"       yaml:"id"`
	Name     string      `json:"name"     yaml:"name"`
	CardIDs  []string    `json:"card_ids" yaml:"cardIds"`
	Children []SortGroup `json:"children" yaml:"children"`
}

// WalkGroups visits every group of the forest in pre-order, roots first,
// children in order. The index passed to fn is the pre-order position and is
// unique within the forest even when group IDs are not.
func WalkGroups(forest []SortGroup, fn func(index int, group *SortGroup)) {
	index := 0
	var walk func(groups []SortGroup)
	walk = func(groups []SortGroup) {
		for i := range groups {
			fn(index, &groups[i])
			index++
			walk(groups[i].Children)
		}
	}
	walk(forest)
}

// CountGroups returns the number of nodes in the forest.
func CountGroups(forest []SortGroup) int {
	n := 0
	WalkGroups(forest, func(int, *SortGroup) { n++ })
	return n
}

// PlacedCardIDs lists every card ID owned by some node, in pre-order.
func PlacedCardIDs(forest []SortGroup) []string {
	var ids []string
	WalkGroups(forest, func(_ int, g *SortGroup) {
		ids = append(ids, g.CardIDs...)
	})
	return ids
}

// ValidateForest checks that no card is owned twice and, when known is not
// nil, that every owned card is one of the known IDs.
func ValidateForest(forest []SortGroup, known map[string]struct{}) error {
	seen := make(map[string]struct{})
	var err error
	WalkGroups(forest, func(_ int, g *SortGroup) {
		if err != nil {
			return
		}
		for _, id := range g.CardIDs {
			if _, dup := seen[id]; dup {
				err = fmt.Errorf("%w: %q", ErrCardPlacedTwice, id)
				return
			}
			seen[id] = struct{}{}
			if known != nil {
				if _, ok := known[id]; !ok {
					err = fmt.Errorf("%w: %q", ErrUnknownCard, id)
					return
				}
			}
		}
	})
	return err
}
