package hierarchy

import (
	"github.com/Paintersrp/vaultlens/internal/note"
	"github.com/Paintersrp/vaultlens/internal/tags"
)

// Build inserts every document at the leaf of each of its tags, creating
// intermediate nodes on the way. Documents without usable tags land in the
// UntaggedKey bucket.
func Build(docs []*note.Document) *Tree {
	tree := newTree()
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		inserted := false
		for _, tag := range doc.Tags {
			segments := tags.Split(tag)
			if len(segments) == 0 {
				continue
			}
			node := tree.root
			for _, segment := range segments {
				node = node.ensureChild(segment)
			}
			node.addDocument(doc)
			inserted = true
		}
		if !inserted {
			tree.root.ensureChild(UntaggedKey).addDocument(doc)
		}
	}
	return tree
}
