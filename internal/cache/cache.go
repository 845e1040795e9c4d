package cache

import (
	"github.com/Paintersrp/vaultlens/internal/note"
	"github.com/Paintersrp/vaultlens/internal/tags"
)

// TagSegments caches the expanded prefix-segment set of every document,
// keyed by document ID. The cache is never patched: Rebuild replaces the
// whole content in one step.
type TagSegments struct {
	items      map[string]tags.SegmentSet
	generation int
}

// NewTagSegments returns an empty cache.
func NewTagSegments() *TagSegments {
	return &TagSegments{items: make(map[string]tags.SegmentSet)}
}

// Rebuild discards the previous content and expands the tags of every
// document in docs.
func (c *TagSegments) Rebuild(docs []*note.Document) {
	items := make(map[string]tags.SegmentSet, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		items[doc.ID] = tags.GatherAllPrefixSegments(doc.Tags)
	}
	c.items = items
	c.generation++
}

// Get returns the cached segment set for id.
func (c *TagSegments) Get(id string) (tags.SegmentSet, bool) {
	if c == nil {
		return nil, false
	}
	segments, ok := c.items[id]
	return segments, ok
}

// Segments returns the cached set for doc, expanding its tags when the
// document was not part of the last rebuild.
func (c *TagSegments) Segments(doc *note.Document) tags.SegmentSet {
	if doc == nil {
		return tags.SegmentSet{}
	}
	if segments, ok := c.Get(doc.ID); ok {
		return segments
	}
	return tags.GatherAllPrefixSegments(doc.Tags)
}

// Len returns the number of cached documents.
func (c *TagSegments) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Generation increments on every rebuild.
func (c *TagSegments) Generation() int {
	if c == nil {
		return 0
	}
	return c.generation
}
