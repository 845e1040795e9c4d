// Package tags expands hierarchical "/"-delimited tags into their ancestor
// prefix chains.
package tags

import "strings"

// Separator splits hierarchical tag segments.
const Separator = "/"

// ExpandPrefixes returns every prefix of tag, root first.
// "a/b/c" expands to ["a", "a/b", "a/b/c"].
func ExpandPrefixes(tag string) []string {
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, Separator)
	prefixes := make([]string, 0, len(parts))
	for i := range parts {
		prefixes = append(prefixes, strings.Join(parts[:i+1], Separator))
	}
	return prefixes
}

// SegmentSet is a set of tag prefixes.
type SegmentSet map[string]struct{}

// Has reports whether segment is present.
func (s SegmentSet) Has(segment string) bool {
	_, ok := s[segment]
	return ok
}

// Overlap counts the segments of s that also appear in other.
func (s SegmentSet) Overlap(other SegmentSet) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	count := 0
	for seg := range small {
		if large.Has(seg) {
			count++
		}
	}
	return count
}

// GatherAllPrefixSegments is the union of ExpandPrefixes over every tag.
func GatherAllPrefixSegments(tagSet []string) SegmentSet {
	segments := make(SegmentSet, len(tagSet)*2)
	for _, tag := range tagSet {
		for _, prefix := range ExpandPrefixes(tag) {
			segments[prefix] = struct{}{}
		}
	}
	return segments
}

// Split returns the path segments of a tag, dropping empty ones.
func Split(tag string) []string {
	raw := strings.Split(tag, Separator)
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
