package hierarchy

import (
	"fmt"
	"strings"

	"github.com/Paintersrp/vaultlens/internal/note"
)

// Scope selects what a filter query is matched against.
type Scope string

const (
	TagsAndFiles Scope = "tags-and-files"
	TagsOnly     Scope = "tags-only"
	FilesOnly    Scope = "files-only"
)

// Scopes lists the accepted filter scopes.
var Scopes = []Scope{TagsAndFiles, TagsOnly, FilesOnly}

// ParseScope converts a configuration value to a Scope. The empty string maps
// to TagsAndFiles.
func ParseScope(value string) (Scope, error) {
	normalized := Scope(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return TagsAndFiles, nil
	}
	for _, s := range Scopes {
		if s == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("hierarchy: unknown filter scope %q", value)
}

// Filter prunes tree to the nodes matching query under scope and returns a
// new tree. An empty query returns tree itself.
//
//   - TagsAndFiles keeps nodes whose name matches, whose ancestor matched,
//     that hold matching documents or that have kept children. Name or
//     ancestor matches reveal all documents, otherwise only matching ones.
//   - TagsOnly ignores document names and always reveals all documents.
//   - FilesOnly keeps nodes with matching documents or kept children. A node
//     matched only by name stays as an empty placeholder.
func Filter(tree *Tree, query string, scope Scope) *Tree {
	if tree == nil || query == "" {
		return tree
	}
	q := strings.ToLower(query)
	out := newTree()
	for _, root := range tree.Roots() {
		if kept := filterNode(root, q, scope, false); kept != nil {
			out.root.attach(kept)
		}
	}
	return out
}

func filterNode(n *Node, q string, scope Scope, ancestorMatched bool) *Node {
	tagMatch := strings.Contains(strings.ToLower(n.Name), q)
	matching := matchingDocuments(n.Documents, q)

	var children []*Node
	for _, child := range n.Children() {
		if kept := filterNode(child, q, scope, ancestorMatched || tagMatch); kept != nil {
			children = append(children, kept)
		}
	}

	named := tagMatch || ancestorMatched
	var docs []*note.Document
	switch scope {
	case TagsOnly:
		if !named && len(children) == 0 {
			return nil
		}
		docs = n.Documents
	case FilesOnly:
		if len(matching) == 0 && len(children) == 0 {
			if !named {
				return nil
			}
			return n.shell()
		}
		docs = matching
	default:
		if !named && len(matching) == 0 && len(children) == 0 {
			return nil
		}
		docs = matching
		if named {
			docs = n.Documents
		}
	}

	kept := n.shell()
	kept.setDocuments(docs)
	for _, child := range children {
		kept.attach(child)
	}
	return kept
}

func matchingDocuments(docs []*note.Document, q string) []*note.Document {
	var out []*note.Document
	for _, doc := range docs {
		if strings.Contains(strings.ToLower(doc.Name()), q) {
			out = append(out, doc)
		}
	}
	return out
}
