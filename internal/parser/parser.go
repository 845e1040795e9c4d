package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/vaultlens/internal/note"
)

var (
	frontMatterRe = regexp.MustCompile(`(?ms)\A---\s*\n(?:(.*?)\n)??---\s*(?:\n|\z)`)
	wikiLinkRe    = regexp.MustCompile(`\[\[([^\[\]]+?)\]\]`)
	inlineTagRe   = regexp.MustCompile(`(?:^|[\s(\[,;])#([\p{L}\p{N}_\-/]+)`)
	digitsOnlyRe  = regexp.MustCompile(`^[\d/]+$`)
)

// Snapshot is the raw metadata of one note, as found in its source.
type Snapshot struct {
	FrontMatter map[string]any
	// InlineTags holds "#tag" markers from the body, marker included.
	InlineTags []string
	// Links holds wikilink targets and relative markdown link destinations.
	// Links inside code are not collected.
	Links    []note.Link
	Headings []string
}

// Parse reads front matter, headings, inline tags and links from a markdown
// source.
func Parse(source []byte) (*Snapshot, error) {
	fm, body := splitFrontMatter(source)

	snap := &Snapshot{FrontMatter: map[string]any{}}
	if len(bytes.TrimSpace(fm)) > 0 {
		if err := yaml.Unmarshal(fm, &snap.FrontMatter); err != nil {
			return nil, fmt.Errorf("parse front matter: %w", err)
		}
		if snap.FrontMatter == nil {
			snap.FrontMatter = map[string]any{}
		}
	}

	walkMarkdown(body, snap)
	return snap, nil
}

func splitFrontMatter(data []byte) ([]byte, []byte) {
	loc := frontMatterRe.FindSubmatchIndex(data)
	if loc == nil {
		return nil, data
	}
	if loc[2] < 0 {
		// Empty block.
		return nil, data[loc[1]:]
	}
	return data[loc[2]:loc[3]], data[loc[1]:]
}

func walkMarkdown(source []byte, snap *Snapshot) {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var buf strings.Builder
	flush := func() string {
		content := strings.TrimSpace(buf.String())
		buf.Reset()
		for _, match := range inlineTagRe.FindAllStringSubmatch(content, -1) {
			if !digitsOnlyRe.MatchString(match[1]) {
				snap.InlineTags = append(snap.InlineTags, "#"+match[1])
			}
		}
		for _, match := range wikiLinkRe.FindAllStringSubmatch(content, -1) {
			if target := wikiTarget(match[1]); target != "" {
				snap.Links = append(snap.Links, note.Link{Target: target})
			}
		}
		return content
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			if entering {
				buf.Reset()
			} else {
				flush()
			}
		case *ast.Heading:
			if entering {
				buf.Reset()
			} else if heading := flush(); heading != "" {
				snap.Headings = append(snap.Headings, heading)
			}
		case *ast.CodeSpan, *ast.AutoLink, *ast.RawHTML:
			if entering {
				buf.WriteByte(' ')
				return ast.WalkSkipChildren, nil
			}
		case *ast.Link:
			if entering {
				if target := markdownTarget(string(node.Destination)); target != "" {
					snap.Links = append(snap.Links, note.Link{Target: target, Relative: true})
				}
			}
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			}
		}
		return ast.WalkContinue, nil
	})
}

func wikiTarget(raw string) string {
	target := raw
	if pipe := strings.Index(target, "|"); pipe >= 0 {
		target = target[:pipe]
	}
	if hash := strings.Index(target, "#"); hash >= 0 {
		target = target[:hash]
	}
	return strings.TrimSpace(target)
}

func markdownTarget(dest string) string {
	cleaned := strings.TrimSpace(dest)
	lowered := strings.ToLower(cleaned)
	if cleaned == "" || strings.HasPrefix(cleaned, "#") ||
		strings.Contains(lowered, "://") || strings.HasPrefix(lowered, "mailto:") {
		return ""
	}
	if hash := strings.Index(cleaned, "#"); hash >= 0 {
		cleaned = cleaned[:hash]
	}
	if unescaped, err := url.PathUnescape(cleaned); err == nil {
		cleaned = unescaped
	}
	return strings.TrimSpace(cleaned)
}
