package tags

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Paintersrp/vaultlens/internal/config"
	"github.com/Paintersrp/vaultlens/internal/hierarchy"
	"github.com/Paintersrp/vaultlens/internal/note"
	"github.com/Paintersrp/vaultlens/internal/render"
	"github.com/Paintersrp/vaultlens/internal/state"
)

func TestCountTagsCountsDistinctNotesPerPrefix(t *testing.T) {
	tree := hierarchy.Build([]*note.Document{
		{ID: "a.md", Tags: []string{"project/cli/parser", "project/web"}},
		{ID: "b.md", Tags: []string{"project/web"}},
		{ID: "c.md"},
	})

	counts := CountTags(tree)
	if err := SortTagCounts(counts, "desc"); err != nil {
		t.Fatalf("SortTagCounts returned error: %v", err)
	}

	want := []render.TagCount{
		{Tag: "project", Count: 2},
		{Tag: "project/web", Count: 2},
		{Tag: "project/cli", Count: 1},
		{Tag: "project/cli/parser", Count: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, want[i], counts[i])
		}
	}

	if err := SortTagCounts(counts, "asc"); err != nil {
		t.Fatalf("SortTagCounts returned error: %v", err)
	}
	if counts[0].Tag != "project/cli" || counts[3].Tag != "project/web" {
		t.Fatalf("unexpected ascending order %+v", counts)
	}

	if err := SortTagCounts(counts, "sideways"); err == nil {
		t.Fatalf("expected invalid order to fail")
	}
}

func TestTagsCommandRendersTable(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	vault := t.TempDir()
	for name, content := range map[string]string{
		"a.md": "---\ntags: [project/cli/parser, project/web]\n---\n",
		"b.md": "#project/web",
		"c.md": "no tags here",
	} {
		if err := os.WriteFile(filepath.Join(vault, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	cfg, err := config.Parse([]byte("vaultdir: " + vault + "\n"))
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	st := &state.State{Config: cfg}
	if err := st.Open(""); err != nil {
		t.Fatalf("failed to open state: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cmd := NewCmdTags(st)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--plain", "--limit", "2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("tags returned error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Tag", "Notes", "project", "project/web"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "project/cli") || strings.Contains(got, hierarchy.UntaggedKey) {
		t.Fatalf("expected limited rows without the untagged bucket:\n%s", got)
	}
}
