package vault

import (
	"path"
	"sort"
	"strings"

	"github.com/Paintersrp/vaultlens/internal/note"
	"github.com/Paintersrp/vaultlens/internal/pathutil"
)

// Corpus is an immutable snapshot of the vault taken by one Load.
type Corpus struct {
	docs map[string]*note.Document
	ids  []string
	// aliases maps lowercase identifiers (IDs, stems, base names and titles)
	// to document IDs.
	aliases map[string]string
	skipped int
}

// NewCorpus indexes docs by ID and resolves their links to document IDs.
// Later duplicates replace earlier ones. The corpus keeps its own copies, so
// the caller's documents are left untouched.
func NewCorpus(docs []*note.Document) *Corpus {
	c := &Corpus{
		docs:    make(map[string]*note.Document, len(docs)),
		aliases: make(map[string]string, len(docs)*3),
	}
	for _, doc := range docs {
		if doc == nil || doc.ID == "" {
			continue
		}
		cp := *doc
		c.docs[doc.ID] = &cp
	}

	c.ids = make([]string, 0, len(c.docs))
	for id := range c.docs {
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)

	links := newLinkIndex(c.docs, c.ids)
	for _, id := range c.ids {
		doc := c.docs[id]
		doc.Targets = links.targets(id, doc.Links)
	}

	// Titles first so that path based aliases win on collision.
	for _, id := range c.ids {
		addAlias(c.aliases, c.docs[id].Title, id)
	}
	for _, id := range c.ids {
		addAlias(c.aliases, path.Base(id), id)
		addAlias(c.aliases, strings.TrimSuffix(path.Base(id), path.Ext(id)), id)
	}
	for _, id := range c.ids {
		addAlias(c.aliases, id, id)
		addAlias(c.aliases, strings.TrimSuffix(id, path.Ext(id)), id)
	}
	return c
}

func addAlias(aliases map[string]string, candidate, id string) {
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	if candidate == "" {
		return
	}
	aliases[candidate] = id
}

// IDs returns the document IDs in ascending order.
func (c *Corpus) IDs() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.ids...)
}

// Document returns the snapshot for id.
func (c *Corpus) Document(id string) (*note.Document, bool) {
	if c == nil {
		return nil, false
	}
	doc, ok := c.docs[id]
	return doc, ok
}

// Documents returns every document ordered by ID.
func (c *Corpus) Documents() []*note.Document {
	if c == nil {
		return nil
	}
	out := make([]*note.Document, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.docs[id])
	}
	return out
}

// Skipped returns how many notes the loader left out of this corpus.
func (c *Corpus) Skipped() int {
	if c == nil {
		return 0
	}
	return c.skipped
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

// Resolve maps a user supplied reference (ID, path without extension, base
// name or title, case-insensitive) to a document ID.
func (c *Corpus) Resolve(ref string) (string, bool) {
	if c == nil {
		return "", false
	}
	if _, ok := c.docs[ref]; ok {
		return ref, true
	}
	normalized := strings.ToLower(pathutil.CleanRef(ref))
	if id, ok := c.aliases[normalized]; ok {
		return id, true
	}
	return "", false
}
