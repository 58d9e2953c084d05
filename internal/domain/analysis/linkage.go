package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLinkage is returned when a linkage name is not recognized.
var ErrInvalidLinkage = errors.New("invalid linkage")

// Linkage selects how the distance between two clusters is derived from the
// distances of their members.
type Linkage string

const (
	// LinkageSingle uses the closest pair of members.
	LinkageSingle Linkage = "single"
	// LinkageComplete uses the farthest pair of members.
	LinkageComplete Linkage = "complete"
	// LinkageAverage uses the size-weighted mean distance (UPGMA).
	LinkageAverage Linkage = "average"
)

// Linkages lists the supported linkage modes.
func Linkages() []Linkage {
	return []Linkage{LinkageSingle, LinkageComplete, LinkageAverage}
}

// ParseLinkage parses a linkage name, ignoring case and surrounding space.
func ParseLinkage(s string) (Linkage, error) {
	l := Linkage(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q (want single, complete or average)", ErrInvalidLinkage, s)
	}
	return l, nil
}

// Valid reports whether l is a supported linkage mode.
func (l Linkage) Valid() bool {
	switch l {
	case LinkageSingle, LinkageComplete, LinkageAverage:
		return true
	}
	return false
}

// merge computes the distance from the union of clusters a and b to a third
// cluster, given each one's distance to it and the sizes of a and b.
func (l Linkage) merge(da, db float64, sizeA, sizeB int) float64 {
	switch l {
	case LinkageSingle:
		return min(da, db)
	case LinkageComplete:
		return max(da, db)
	case LinkageAverage:
		return (float64(sizeA)*da + float64(sizeB)*db) / float64(sizeA+sizeB)
	default:
		panic(fmt.Sprintf("analysis: unsupported linkage %q", string(l)))
	}
}
