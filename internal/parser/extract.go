package parser

import (
	"strings"
	"unicode"

	"github.com/Paintersrp/vaultlens/internal/note"
)

// tagFields are the front matter keys holding declared tags.
var tagFields = []string{"tags", "tag"}

// Extract derives the normalized tag set and link set of a snapshot. Declared
// tags come first, then inline tags, each in source order without
// duplicates. A nil snapshot yields empty sets.
func Extract(snap *Snapshot) (tagSet []string, links []note.Link) {
	tagSet, links = []string{}, []note.Link{}
	if snap == nil {
		return tagSet, links
	}

	seenTags := make(map[string]struct{})
	add := func(raw string) {
		tag := NormalizeTag(raw)
		if tag == "" {
			return
		}
		if _, ok := seenTags[tag]; ok {
			return
		}
		seenTags[tag] = struct{}{}
		tagSet = append(tagSet, tag)
	}

	for _, field := range tagFields {
		for _, raw := range declaredTags(snap.FrontMatter[field]) {
			add(raw)
		}
	}
	for _, raw := range snap.InlineTags {
		add(raw)
	}

	seenLinks := make(map[note.Link]struct{})
	for _, raw := range snap.Links {
		link := note.Link{Target: strings.TrimSpace(raw.Target), Relative: raw.Relative}
		if link.Target == "" {
			continue
		}
		if _, ok := seenLinks[link]; ok {
			continue
		}
		seenLinks[link] = struct{}{}
		links = append(links, link)
	}
	return tagSet, links
}

// declaredTags flattens a front matter tag field. Strings are split on commas
// and whitespace; lists keep their string entries and drop anything else.
func declaredTags(value any) []string {
	switch v := value.(type) {
	case string:
		return splitTagString(v)
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func splitTagString(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// NormalizeTag strips leading "#" markers, surrounding whitespace and slashes.
func NormalizeTag(raw string) string {
	tag := strings.TrimSpace(raw)
	tag = strings.TrimLeft(tag, "#")
	return strings.Trim(strings.TrimSpace(tag), "/")
}

// Title resolves the display title of a note: the front matter title, the
// first heading, or fallback.
func Title(snap *Snapshot, fallback string) string {
	if snap != nil {
		if title, ok := snap.FrontMatter["title"].(string); ok && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title)
		}
		if len(snap.Headings) > 0 {
			return snap.Headings[0]
		}
	}
	return fallback
}
