// Package render writes tag trees, related-note rankings and tag tables to a
// terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/Paintersrp/vaultlens/internal/hierarchy"
	"github.com/Paintersrp/vaultlens/internal/note"
	"github.com/Paintersrp/vaultlens/internal/related"
)

const (
	branch     = "├── "
	lastBranch = "└── "
	pipe       = "│   "
	space      = "    "
)

// Renderer holds the styles for one output stream.
type Renderer struct {
	w io.Writer

	tagStyle   lipgloss.Style
	countStyle lipgloss.Style
	fileStyle  lipgloss.Style
	scoreStyle lipgloss.Style
	mutedStyle lipgloss.Style
}

// New returns a renderer for w. With plain set every style renders as bare
// text, which keeps piped output and tests free of escape codes.
func New(w io.Writer, plain bool) *Renderer {
	var r *lipgloss.Renderer
	if plain {
		r = lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii))
	} else {
		r = lipgloss.NewRenderer(w)
	}

	return &Renderer{
		w:          w,
		tagStyle:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#0AF")),
		countStyle: r.NewStyle().Foreground(lipgloss.Color("#666666")),
		fileStyle:  r.NewStyle(),
		scoreStyle: r.NewStyle().Bold(true),
		mutedStyle: r.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

// Auto returns a styled renderer when w is a terminal and a plain one
// otherwise.
func Auto(w io.Writer, plain bool) *Renderer {
	return New(w, plain || !IsTerminal(w))
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Tree writes display nodes as an indented tree. Every label shows the
// recursive document count; with showFiles the documents of each node are
// listed before its children.
func (r *Renderer) Tree(nodes []hierarchy.DisplayNode, showFiles bool) error {
	if len(nodes) == 0 {
		_, err := fmt.Fprintln(r.w, r.mutedStyle.Render("(no matching tags)"))
		return err
	}

	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(r.nodeLabel(n))
		b.WriteByte('\n')
		r.writeChildren(&b, n, "", showFiles)
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) nodeLabel(n hierarchy.DisplayNode) string {
	count := 0
	if n.Node != nil {
		count = n.Node.TotalCount()
	}
	return r.tagStyle.Render(n.Label) + " " + r.countStyle.Render("("+strconv.Itoa(count)+")")
}

func (r *Renderer) writeChildren(b *strings.Builder, n hierarchy.DisplayNode, prefix string, showFiles bool) {
	var docs []*note.Document
	if showFiles && n.Node != nil {
		docs = n.Node.Documents
	}

	total := len(docs) + len(n.Children)
	i := 0
	for _, doc := range docs {
		i++
		connector, _ := connectors(i == total)
		b.WriteString(prefix + connector + r.fileStyle.Render(doc.ID) + "\n")
	}
	for _, child := range n.Children {
		i++
		connector, indent := connectors(i == total)
		b.WriteString(prefix + connector + r.nodeLabel(child) + "\n")
		r.writeChildren(b, child, prefix+indent, showFiles)
	}
}

func connectors(last bool) (string, string) {
	if last {
		return lastBranch, space
	}
	return branch, pipe
}

// Related writes a ranked list. title resolves display titles by ID; with
// explain each entry is followed by its per-factor breakdown.
func (r *Renderer) Related(results []related.Result, title func(id string) string, explain bool) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(r.w, r.mutedStyle.Render("(no related notes)"))
		return err
	}

	width := len(strconv.Itoa(len(results)))
	var b strings.Builder
	for i, res := range results {
		line := fmt.Sprintf("%*d. %s  %s", width, i+1, r.scoreStyle.Render(fmt.Sprintf("%.2f", res.Score)), res.ID)
		if title != nil {
			if t := title(res.ID); t != "" && !strings.EqualFold(t, strings.TrimSuffix(lastSegment(res.ID), ".md")) {
				line += "  " + r.mutedStyle.Render(t)
			}
		}
		b.WriteString(line + "\n")

		if explain {
			bd := res.Breakdown
			b.WriteString(strings.Repeat(" ", width+2))
			b.WriteString(r.mutedStyle.Render(fmt.Sprintf(
				"tag %.2f · title %.2f · path %.2f · link %.2f",
				bd.Tag, bd.Title, bd.Path, bd.Link,
			)))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

func lastSegment(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// TagCount is one row of the tag table.
type TagCount struct {
	Tag   string
	Count int
}

// TagTable writes tag counts as a bordered table.
func (r *Renderer) TagTable(counts []TagCount) error {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Tag, strconv.Itoa(c.Count)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Tag", "Notes").
		Rows(rows...)

	_, err := fmt.Fprintln(r.w, t.String())
	return err
}
