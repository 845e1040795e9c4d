package vault

import (
	"path"
	"sort"
	"strings"

	"github.com/Paintersrp/vaultlens/internal/note"
	"github.com/Paintersrp/vaultlens/internal/pathutil"
)

// linkIndex answers link lookups against the documents of one corpus.
type linkIndex struct {
	// byPath maps lowercase IDs to IDs.
	byPath map[string]string
	// byName maps lowercase base names without extension to IDs.
	byName map[string][]string
	// byTitle maps lowercase titles to IDs.
	byTitle map[string][]string
}

func newLinkIndex(docs map[string]*note.Document, ids []string) *linkIndex {
	idx := &linkIndex{
		byPath:  make(map[string]string, len(ids)),
		byName:  make(map[string][]string, len(ids)),
		byTitle: make(map[string][]string, len(ids)),
	}
	for _, id := range ids {
		lower := strings.ToLower(id)
		idx.byPath[lower] = id
		name := strings.ToLower(docs[id].Name())
		idx.byName[name] = append(idx.byName[name], id)
		if title := strings.ToLower(strings.TrimSpace(docs[id].Title)); title != "" {
			idx.byTitle[title] = append(idx.byTitle[title], id)
		}
	}
	return idx
}

// targets resolves every link of the document at sourceID, dropping links
// that match nothing, self links and duplicates.
func (idx *linkIndex) targets(sourceID string, links []note.Link) []string {
	var out []string
	seen := make(map[string]struct{}, len(links))
	for _, link := range links {
		id, ok := idx.resolve(sourceID, link)
		if !ok || id == sourceID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (idx *linkIndex) resolve(sourceID string, link note.Link) (string, bool) {
	if link.Relative {
		return idx.resolveRelative(sourceID, link.Target)
	}
	return idx.resolveWiki(sourceID, link.Target)
}

// resolveRelative joins a markdown destination with the folder of the linking
// note. A leading "/" anchors it at the vault root. Destinations escaping the
// vault resolve to nothing.
func (idx *linkIndex) resolveRelative(sourceID, target string) (string, bool) {
	target = strings.ReplaceAll(strings.TrimSpace(target), `\`, "/")
	if target == "" {
		return "", false
	}

	var joined string
	if strings.HasPrefix(target, "/") {
		joined = path.Clean(strings.TrimLeft(target, "/"))
	} else {
		joined = path.Join(path.Dir(sourceID), target)
	}
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return "", false
	}
	return idx.exact(joined)
}

// resolveWiki looks a wikilink up as a vault path first, then as a file
// name or trailing path, then as a title. Ambiguous names go to the match
// closest to the linking note.
func (idx *linkIndex) resolveWiki(sourceID, target string) (string, bool) {
	cleaned := pathutil.CleanRef(target)
	if cleaned == "" {
		return "", false
	}
	if id, ok := idx.exact(cleaned); ok {
		return id, true
	}

	lower := strings.ToLower(cleaned)
	if ext := path.Ext(lower); ext == ".md" {
		lower = strings.TrimSuffix(lower, ext)
	}

	var byName []string
	for _, id := range idx.byName[path.Base(lower)] {
		stem := strings.ToLower(strings.TrimSuffix(id, path.Ext(id)))
		if stem == lower || strings.HasSuffix(stem, "/"+lower) {
			byName = append(byName, id)
		}
	}
	if id, ok := closest(sourceID, byName); ok {
		return id, true
	}
	return closest(sourceID, idx.byTitle[strings.ToLower(strings.TrimSpace(target))])
}

func (idx *linkIndex) exact(p string) (string, bool) {
	lower := strings.ToLower(p)
	if id, ok := idx.byPath[lower]; ok {
		return id, true
	}
	if path.Ext(lower) != ".md" {
		if id, ok := idx.byPath[lower+".md"]; ok {
			return id, true
		}
	}
	return "", false
}

// closest picks the candidate sharing the most leading folders with the
// linking note, then the shallowest, then the smallest ID.
func closest(sourceID string, candidates []string) (string, bool) {
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	}

	sourceDirs := folders(sourceID)
	ranked := append([]string(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := sharedPrefix(sourceDirs, folders(ranked[i])), sharedPrefix(sourceDirs, folders(ranked[j]))
		if si != sj {
			return si > sj
		}
		di, dj := strings.Count(ranked[i], "/"), strings.Count(ranked[j], "/")
		if di != dj {
			return di < dj
		}
		return ranked[i] < ranked[j]
	})
	return ranked[0], true
}

func folders(id string) []string {
	dir := path.Dir(id)
	if dir == "." || dir == "" {
		return nil
	}
	return strings.Split(strings.ToLower(dir), "/")
}

func sharedPrefix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
