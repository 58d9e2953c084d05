package analysis

import (
	"fmt"
	"strconv"
)

// NodeKind tags the two shapes a dendrogram node can take.
type NodeKind int

const (
	// LeafNode wraps a single card.
	LeafNode NodeKind = iota
	// InternalNode joins two clusters at a merge height.
	InternalNode
)

// String returns "leaf" or "internal".
func (k NodeKind) String() string {
	switch k {
	case LeafNode:
		return "leaf"
	case InternalNode:
		return "internal"
	default:
		return "NodeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// MarshalText encodes the kind by name.
func (k NodeKind) MarshalText() ([]byte, error) {
	switch k {
	case LeafNode, InternalNode:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("analysis: unknown node kind %d", int(k))
	}
}

// UnmarshalText decodes a kind name.
func (k *NodeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "leaf":
		*k = LeafNode
	case "internal":
		*k = InternalNode
	default:
		return fmt.Errorf("analysis: unknown node kind %q", string(text))
	}
	return nil
}

// LeafIDPrefix marks leaf node IDs so they never collide with merge IDs.
const LeafIDPrefix = "leaf-"

// Node is a dendrogram node. Leaves carry CardID; internal nodes carry Left,
// Right and the Height at which the two were merged. Size is the number of
// leaves below the node. Trees are never modified after BuildDendrogram
// returns them.
type Node struct {
	Kind   NodeKind `json:"kind"`
	ID     string   `json:"id"`
	CardID string   `json:"card_id,omitempty"`
	Left   *Node    `json:"left,omitempty"`
	Right  *Node    `json:"right,omitempty"`
	Height float64  `json:"height"`
	Size   int      `json:"size"`
}

// IsLeaf reports whether the node wraps a single card.
func (n *Node) IsLeaf() bool { return n.Kind == LeafNode }

// Walk visits the subtree in pre-order, left before right.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	if n.Kind == InternalNode {
		n.Left.Walk(fn)
		n.Right.Walk(fn)
	}
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) { count++ })
	return count
}

// BuildDendrogram clusters the matrix IDs agglomeratively.
//
// Distances start as 1 - S. Each of the n-1 rounds merges the closest pair of
// active clusters into a new internal node whose left child is the cluster
// created first. Ties are broken by creation order: the pair (a, b), a
// created before b, that is lexicographically smallest by (a, b) creation
// rank wins. Leaves are created in matrix order and each merge creates the
// next cluster, so the result is fully determined by S and the linkage.
// Distances from the new cluster to the others follow the linkage rule.
//
// The result is nil for an empty matrix and a single leaf for one card. For n
// cards the tree has 2n-1 nodes. An unsupported linkage panics.
func BuildDendrogram(s SimilarityMatrix, linkage Linkage) *Node {
	if !linkage.Valid() {
		panic(fmt.Sprintf("analysis: unsupported linkage %q", string(linkage)))
	}
	mustBeSquare("similarity matrix", s.IDs, s.Values)

	n := len(s.IDs)
	if n == 0 {
		return nil
	}

	total := 2*n - 1
	nodes := make([]*Node, 0, total)
	dist := make([][]float64, total)
	for i := range dist {
		dist[i] = make([]float64, total)
	}

	for i, id := range s.IDs {
		nodes = append(nodes, &Node{Kind: LeafNode, ID: LeafIDPrefix + id, CardID: id, Size: 1})
		for j := range s.IDs {
			if i != j {
				dist[i][j] = 1 - s.Values[i][j]
			}
		}
	}

	// active holds creation ranks in ascending order; merges append.
	active := make([]int, n)
	for i := range active {
		active[i] = i
	}

	for round := 1; len(active) > 1; round++ {
		bx, by := 0, 1
		best := dist[active[0]][active[1]]
		for x := 0; x < len(active); x++ {
			for y := x + 1; y < len(active); y++ {
				if d := dist[active[x]][active[y]]; d < best {
					best, bx, by = d, x, y
				}
			}
		}

		a, b := active[bx], active[by]
		left, right := nodes[a], nodes[b]
		merged := len(nodes)
		nodes = append(nodes, &Node{
			Kind:   InternalNode,
			ID:     "merge-" + strconv.Itoa(round),
			Left:   left,
			Right:  right,
			Height: best,
			Size:   left.Size + right.Size,
		})

		active = append(active[:by], active[by+1:]...)
		active = append(active[:bx], active[bx+1:]...)

		for _, x := range active {
			d := linkage.merge(dist[a][x], dist[b][x], left.Size, right.Size)
			dist[merged][x] = d
			dist[x][merged] = d
		}
		active = append(active, merged)
	}

	return nodes[active[0]]
}
