// Package hierarchy builds, filters and sorts the tree of notes keyed by
// their hierarchical tags.
package hierarchy

import (
	"github.com/Paintersrp/vaultlens/internal/note"
	"github.com/Paintersrp/vaultlens/internal/tags"
)

// UntaggedKey names the root bucket holding documents without tags.
const UntaggedKey = "(untagged)"

// Node is one tag segment. It owns its children exclusively and holds each
// document at most once.
type Node struct {
	Name      string
	Path      string
	Documents []*note.Document

	docIDs   map[string]struct{}
	children map[string]*Node
	order    []string
}

func newNode(name, path string) *Node {
	return &Node{
		Name:     name,
		Path:     path,
		docIDs:   make(map[string]struct{}),
		children: make(map[string]*Node),
	}
}

// Child returns the direct child named name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	return n.children[name]
}

// Children returns the direct children in their current order.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.children[name])
	}
	return out
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.order)
}

// HasDocument reports whether id is a direct document of n.
func (n *Node) HasDocument(id string) bool {
	_, ok := n.docIDs[id]
	return ok
}

// TotalCount sums the direct document counts over the whole subtree.
func (n *Node) TotalCount() int {
	if n == nil {
		return 0
	}
	total := len(n.Documents)
	for _, child := range n.children {
		total += child.TotalCount()
	}
	return total
}

// Walk visits n and its descendants depth first, in order. Returning false
// from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children() {
		child.Walk(fn)
	}
}

func (n *Node) ensureChild(name string) *Node {
	if child, ok := n.children[name]; ok {
		return child
	}
	path := name
	if n.Path != "" {
		path = n.Path + tags.Separator + name
	}
	child := newNode(name, path)
	n.children[name] = child
	n.order = append(n.order, name)
	return child
}

func (n *Node) attach(child *Node) {
	if _, ok := n.children[child.Name]; !ok {
		n.order = append(n.order, child.Name)
	}
	n.children[child.Name] = child
}

func (n *Node) addDocument(doc *note.Document) bool {
	if _, ok := n.docIDs[doc.ID]; ok {
		return false
	}
	n.docIDs[doc.ID] = struct{}{}
	n.Documents = append(n.Documents, doc)
	return true
}

// shell copies the identity of n without documents or children.
func (n *Node) shell() *Node {
	return newNode(n.Name, n.Path)
}

func (n *Node) setDocuments(docs []*note.Document) {
	n.Documents = nil
	n.docIDs = make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		n.addDocument(doc)
	}
}

// Tree maps root segment names to their nodes.
type Tree struct {
	root *Node
}

func newTree() *Tree {
	return &Tree{root: newNode("", "")}
}

// Roots returns the top-level nodes in order.
func (t *Tree) Roots() []*Node {
	if t == nil {
		return nil
	}
	return t.root.Children()
}

// Root returns the top-level node named name, or nil.
func (t *Tree) Root(name string) *Node {
	if t == nil {
		return nil
	}
	return t.root.Child(name)
}

// Lookup resolves a "/"-delimited tag path to its node.
func (t *Tree) Lookup(path string) *Node {
	if t == nil {
		return nil
	}
	node := t.root
	for _, segment := range tags.Split(path) {
		node = node.Child(segment)
		if node == nil {
			return nil
		}
	}
	if node == t.root {
		return nil
	}
	return node
}

// Len returns the number of top-level nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return t.root.Len()
}

// Walk visits every node of the tree depth first.
func (t *Tree) Walk(fn func(*Node) bool) {
	for _, root := range t.Roots() {
		root.Walk(fn)
	}
}

// Documents returns every distinct document reachable from the roots, in
// traversal order.
func (t *Tree) Documents() []*note.Document {
	seen := make(map[string]struct{})
	var docs []*note.Document
	t.Walk(func(n *Node) bool {
		for _, doc := range n.Documents {
			if _, ok := seen[doc.ID]; ok {
				continue
			}
			seen[doc.ID] = struct{}{}
			docs = append(docs, doc)
		}
		return true
	})
	return docs
}
