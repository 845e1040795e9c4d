package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/vaultlens/internal/hierarchy"
	"github.com/Paintersrp/vaultlens/internal/note"
	"github.com/Paintersrp/vaultlens/internal/related"
)

func sampleTree() *hierarchy.Tree {
	return hierarchy.Build([]*note.Document{
		{ID: "a.md", Tags: []string{"project/cli/parser"}},
		{ID: "b.md", Tags: []string{"project/web"}},
		{ID: "c.md", Tags: []string{"solo/deep/leaf"}},
	})
}

func TestTreeCollapsesSingleChildChains(t *testing.T) {
	var buf bytes.Buffer
	tree := hierarchy.Sort(sampleTree(), hierarchy.Alphabetical)

	require.NoError(t, New(&buf, true).Tree(hierarchy.Collapse(tree), false))

	want := strings.Join([]string{
		"project (2)",
		"├── cli/parser (1)",
		"└── web (1)",
		"solo/deep/leaf (1)",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTreeListsFiles(t *testing.T) {
	var buf bytes.Buffer
	tree := hierarchy.Sort(sampleTree(), hierarchy.Alphabetical)

	require.NoError(t, New(&buf, true).Tree(hierarchy.Display(tree, false), true))

	want := strings.Join([]string{
		"project (2)",
		"├── cli (1)",
		"│   └── parser (1)",
		"│       └── a.md",
		"└── web (1)",
		"    └── b.md",
		"solo (1)",
		"└── deep (1)",
		"    └── leaf (1)",
		"        └── c.md",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTreeEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, true).Tree(nil, false))
	assert.Equal(t, "(no matching tags)\n", buf.String())
}

func TestRelatedWithExplain(t *testing.T) {
	var buf bytes.Buffer
	results := []related.Result{
		{ID: "B.md", Score: 1.8, Breakdown: related.Breakdown{Tag: 1, Title: 0.8}},
		{ID: "notes/C.md", Score: 0.2, Breakdown: related.Breakdown{Title: 0.2}},
	}
	titles := map[string]string{"B.md": "b", "notes/C.md": "Gamma"}

	require.NoError(t, New(&buf, true).Related(results, func(id string) string { return titles[id] }, true))

	want := strings.Join([]string{
		"1. 1.80  B.md",
		"   tag 1.00 · title 0.80 · path 0.00 · link 0.00",
		"2. 0.20  notes/C.md  Gamma",
		"   tag 0.00 · title 0.20 · path 0.00 · link 0.00",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestRelatedEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, true).Related(nil, nil, false))
	assert.Equal(t, "(no related notes)\n", buf.String())
}

func TestTagTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, true).TagTable([]TagCount{{Tag: "project", Count: 2}, {Tag: "project/web", Count: 1}}))

	out := buf.String()
	assert.Contains(t, out, "Tag")
	assert.Contains(t, out, "project/web")
	assert.Contains(t, out, "2")
}

func TestAutoIsPlainForBuffers(t *testing.T) {
	var buf bytes.Buffer
	require.False(t, IsTerminal(&buf))

	r := Auto(&buf, false)
	require.NoError(t, r.Related(nil, nil, false))
	require.NotContains(t, buf.String(), "\x1b[")
}
