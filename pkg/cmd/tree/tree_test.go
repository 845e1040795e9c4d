package tree

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/vaultlens/internal/config"
	"github.com/Paintersrp/vaultlens/internal/state"
)

func writeNote(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func sampleVault(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeNote(t, dir, "a.md", "---\ntags: [project/cli/parser]\n---\n")
	writeNote(t, dir, "notes/b.md", "Web notes #project/web")
	writeNote(t, dir, "c.md", "# Loose\n")
	writeNote(t, dir, "d.md", "#solo/deep/leaf")
	return dir
}

// runTree executes the command beneath a parent that opens the vault after
// flag parsing, the same order the real root command uses.
func runTree(t *testing.T, configYAML string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := config.Parse([]byte(configYAML))
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	st := &state.State{Config: cfg}
	t.Cleanup(func() { st.Close() })

	parent := &cobra.Command{
		Use: "vaultlens",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return st.Open("")
		},
	}
	parent.AddCommand(NewCmdTree(st))

	var out bytes.Buffer
	parent.SetOut(&out)
	parent.SetErr(&out)
	parent.SetArgs(append([]string{"tree", "--plain"}, args...))
	err = parent.Execute()
	return out.String(), err
}

func TestTreeCollapsesChains(t *testing.T) {
	out, err := runTree(t, "vaultdir: "+sampleVault(t)+"\n")
	if err != nil {
		t.Fatalf("tree returned error: %v", err)
	}

	want := strings.Join([]string{
		"(untagged) (1)",
		"project (2)",
		"├── cli/parser (1)",
		"└── web (1)",
		"solo/deep/leaf (1)",
		"",
	}, "\n")
	if out != want {
		t.Fatalf("unexpected tree:\n%s\nwant:\n%s", out, want)
	}
}

func TestTreeNoCollapseWithFiles(t *testing.T) {
	out, err := runTree(t, "vaultdir: "+sampleVault(t)+"\n", "--no-collapse", "--files")
	if err != nil {
		t.Fatalf("tree returned error: %v", err)
	}

	for _, line := range []string{
		"(untagged) (1)",
		"└── c.md",
		"├── cli (1)",
		"│   └── parser (1)",
		"│       └── a.md",
		"    └── notes/b.md",
		"solo (1)",
	} {
		if !strings.Contains(out, line+"\n") {
			t.Fatalf("expected line %q in:\n%s", line, out)
		}
	}
}

func TestTreeFilterShowsMatchingNotes(t *testing.T) {
	out, err := runTree(t, "vaultdir: "+sampleVault(t)+"\n", "--filter", "WEB")
	if err != nil {
		t.Fatalf("tree returned error: %v", err)
	}

	want := "project/web (1)\n└── notes/b.md\n"
	if out != want {
		t.Fatalf("unexpected filtered tree:\n%s\nwant:\n%s", out, want)
	}
}

func TestTreeSortAndScopeFromWorkspaceAndFlags(t *testing.T) {
	vault := sampleVault(t)

	out, err := runTree(t, "vaultdir: "+vault+"\ntree:\n  sort: count\n")
	if err != nil {
		t.Fatalf("tree returned error: %v", err)
	}
	if !strings.HasPrefix(out, "project (2)\n") {
		t.Fatalf("expected count sort from workspace, got:\n%s", out)
	}

	out, err = runTree(t, "vaultdir: "+vault+"\n", "--filter", "untagged", "--scope", "tags-only")
	if err != nil {
		t.Fatalf("tree returned error: %v", err)
	}
	if out != "(untagged) (1)\n" {
		t.Fatalf("expected only the untagged bucket, got:\n%s", out)
	}
}

func TestTreeRejectsUnknownSort(t *testing.T) {
	if _, err := runTree(t, "vaultdir: "+sampleVault(t)+"\n", "--sort", "sideways"); err == nil {
		t.Fatalf("expected unknown sort mode to fail")
	}
}

func TestTreeEmptyResult(t *testing.T) {
	out, err := runTree(t, "vaultdir: "+sampleVault(t)+"\n", "--filter", "nothing-matches")
	if err != nil {
		t.Fatalf("tree returned error: %v", err)
	}
	if strings.TrimSpace(out) != "(no matching tags)" {
		t.Fatalf("unexpected output %q", out)
	}
}
