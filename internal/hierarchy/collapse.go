package hierarchy

import "github.com/Paintersrp/vaultlens/internal/tags"

// DisplayNode is a rendering view over the tree. Label may span several
// merged segments; Node is the deepest node of the merged chain and provides
// the documents shown under the label.
type DisplayNode struct {
	Label    string
	Node     *Node
	Children []DisplayNode
}

// Display converts tree into display nodes. With collapse set, a node with
// exactly one child and no direct documents is merged with that child under
// a "parent/child" label, recursively. The tree itself is left untouched.
func Display(tree *Tree, collapse bool) []DisplayNode {
	roots := tree.Roots()
	out := make([]DisplayNode, 0, len(roots))
	for _, root := range roots {
		out = append(out, displayNode(root, collapse))
	}
	return out
}

// Collapse is Display with merging enabled.
func Collapse(tree *Tree) []DisplayNode {
	return Display(tree, true)
}

func displayNode(n *Node, collapse bool) DisplayNode {
	label := n.Name
	current := n
	for collapse && len(current.Documents) == 0 && current.Len() == 1 {
		current = current.Children()[0]
		label += tags.Separator + current.Name
	}

	children := current.Children()
	display := DisplayNode{Label: label, Node: current}
	if len(children) > 0 {
		display.Children = make([]DisplayNode, 0, len(children))
		for _, child := range children {
			display.Children = append(display.Children, displayNode(child, collapse))
		}
	}
	return display
}
