package analysis

// LeafOrder lists the card IDs of the tree's leaves from left to right. When
// the tree is empty, or yields no leaves, a copy of fallback is returned.
func LeafOrder(root *Node, fallback []string) []string {
	var order []string
	root.Walk(func(n *Node) {
		if n.Kind == LeafNode {
			order = append(order, n.CardID)
		}
	})
	if len(order) == 0 {
		return cloneIDs(fallback)
	}
	return order
}

// CutTree splits the dendrogram into flat clusters: every maximal subtree
// merged at or below height becomes one cluster, listed in leaf order.
// Clusters appear left to right. An empty tree yields no clusters.
func CutTree(root *Node, height float64) [][]string {
	var clusters [][]string
	var cut func(n *Node)
	cut = func(n *Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case LeafNode:
			clusters = append(clusters, []string{n.CardID})
		case InternalNode:
			if n.Height <= height {
				clusters = append(clusters, LeafOrder(n, nil))
				return
			}
			cut(n.Left)
			cut(n.Right)
		}
	}
	cut(root)
	return clusters
}
