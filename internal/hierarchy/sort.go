package hierarchy

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Paintersrp/vaultlens/internal/note"
)

// Mode selects how siblings are ordered.
type Mode string

const (
	// Alphabetical orders by name, ascending, case-insensitive.
	Alphabetical   Mode = "alphabetical"
	ByCount        Mode = "count"
	CreatedNewest  Mode = "created-newest"
	CreatedOldest  Mode = "created-oldest"
	ModifiedNewest Mode = "modified-newest"
	ModifiedOldest Mode = "modified-oldest"
)

// Modes lists the accepted sort modes.
var Modes = []Mode{Alphabetical, ByCount, CreatedNewest, CreatedOldest, ModifiedNewest, ModifiedOldest}

// ParseMode converts a configuration value to a Mode. The empty string maps
// to Alphabetical.
func ParseMode(value string) (Mode, error) {
	normalized := Mode(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return Alphabetical, nil
	}
	for _, m := range Modes {
		if m == normalized {
			return m, nil
		}
	}
	return "", fmt.Errorf("hierarchy: unknown sort mode %q", value)
}

// Sorter orders trees using a locale-aware collator.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter returns a sorter for the BCP 47 locale. Unknown or empty locales
// fall back to the root collation.
func NewSorter(locale string) *Sorter {
	tag := language.Und
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			tag = parsed
		}
	}
	return &Sorter{collator: collate.New(tag, collate.IgnoreCase)}
}

// Sort orders tree with the root collation.
func Sort(tree *Tree, mode Mode) *Tree {
	return NewSorter("").Sort(tree, mode)
}

// Sort returns a copy of tree with every level ordered by mode. Each level is
// ordered independently of its parents.
func (s *Sorter) Sort(tree *Tree, mode Mode) *Tree {
	if tree == nil {
		return nil
	}
	out := newTree()
	out.root = s.sortNode(tree.root, mode)
	return out
}

func (s *Sorter) sortNode(n *Node, mode Mode) *Node {
	sorted := n.shell()

	docs := append([]*note.Document(nil), n.Documents...)
	sort.SliceStable(docs, func(i, j int) bool {
		return s.lessDocument(docs[i], docs[j], mode)
	})
	sorted.setDocuments(docs)

	children := n.Children()
	keys := make(map[*Node]int64, len(children))
	for _, child := range children {
		keys[child] = sortKey(child, mode)
	}
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		switch mode {
		case ByCount, CreatedNewest, ModifiedNewest:
			if keys[a] != keys[b] {
				return keys[a] > keys[b]
			}
		case CreatedOldest, ModifiedOldest:
			if keys[a] != keys[b] {
				return keys[a] < keys[b]
			}
		}
		return s.compareNames(a.Name, b.Name) < 0
	})

	for _, child := range children {
		sorted.attach(s.sortNode(child, mode))
	}
	return sorted
}

func (s *Sorter) compareNames(a, b string) int {
	if c := s.collator.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func (s *Sorter) lessDocument(a, b *note.Document, mode Mode) bool {
	switch mode {
	case CreatedNewest, CreatedOldest, ModifiedNewest, ModifiedOldest:
		ta, tb := unixMilli(documentTime(a, mode)), unixMilli(documentTime(b, mode))
		if ta != tb {
			if mode == CreatedNewest || mode == ModifiedNewest {
				return ta > tb
			}
			return ta < tb
		}
	}
	if c := s.compareNames(a.Name(), b.Name()); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// sortKey is the value compared before the alphabetical tie-break. Time modes
// look only at direct documents; nodes without documents use 0.
func sortKey(n *Node, mode Mode) int64 {
	switch mode {
	case ByCount:
		return int64(n.TotalCount())
	case CreatedNewest, ModifiedNewest:
		var newest int64
		for i, doc := range n.Documents {
			if t := unixMilli(documentTime(doc, mode)); i == 0 || t > newest {
				newest = t
			}
		}
		return newest
	case CreatedOldest, ModifiedOldest:
		var oldest int64
		for i, doc := range n.Documents {
			if t := unixMilli(documentTime(doc, mode)); i == 0 || t < oldest {
				oldest = t
			}
		}
		return oldest
	default:
		return 0
	}
}

func documentTime(doc *note.Document, mode Mode) time.Time {
	if mode == ModifiedNewest || mode == ModifiedOldest {
		return doc.Modified
	}
	return doc.Created
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
