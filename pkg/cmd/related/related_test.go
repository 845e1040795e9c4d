package related

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

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

func newTestState(t *testing.T, configYAML string) *state.State {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := config.Parse([]byte(configYAML))
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	st := &state.State{Config: cfg}
	if err := st.Open(""); err != nil {
		t.Fatalf("failed to open state: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func exampleVault(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeNote(t, dir, "A.md", "---\ntitle: Alpha\ntags: [x]\n---\n")
	writeNote(t, dir, "B.md", "---\ntitle: Alphb\ntags: [x/y]\n---\n")
	writeNote(t, dir, "C.md", "# Gamma\n")
	return dir
}

func execute(t *testing.T, st *state.State, args ...string) (string, error) {
	t.Helper()
	cmd := NewCmdRelated(st)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRelatedRanksAndExplains(t *testing.T) {
	st := newTestState(t, "vaultdir: "+exampleVault(t)+"\n")

	out, err := execute(t, st, "Alpha", "--explain", "--plain")
	if err != nil {
		t.Fatalf("related returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected two results with breakdowns, got %q", out)
	}
	if lines[0] != "1. 1.80  B.md  Alphb" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "tag 1.00 · title 0.80 · path 0.00 · link 0.00") {
		t.Fatalf("unexpected breakdown %q", lines[1])
	}
	if lines[2] != "2. 0.20  C.md  Gamma" {
		t.Fatalf("unexpected second line %q", lines[2])
	}
}

func TestRelatedFlagsOverrideWorkspace(t *testing.T) {
	vault := exampleVault(t)
	st := newTestState(t, "vaultdir: "+vault+"\nrelated:\n  limit: 1\n  weights:\n    tag: 3\n")

	out, err := execute(t, st, "A.md", "--plain")
	if err != nil {
		t.Fatalf("related returned error: %v", err)
	}
	if strings.TrimSpace(out) != "1. 3.80  B.md  Alphb" {
		t.Fatalf("expected workspace limit and weights, got %q", out)
	}

	out, err = execute(t, st, "A.md", "--plain", "--weight-tag", "0", "--min-score", "0.5", "--limit", "0")
	if err != nil {
		t.Fatalf("related returned error: %v", err)
	}
	if strings.TrimSpace(out) != "1. 0.80  B.md  Alphb" {
		t.Fatalf("expected flag overrides, got %q", out)
	}
}

func TestRelatedCopiesPaths(t *testing.T) {
	st := newTestState(t, "vaultdir: "+exampleVault(t)+"\n")

	var copied string
	orig := copyToClipboard
	copyToClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { copyToClipboard = orig })

	out, err := execute(t, st, "a", "--copy", "--plain")
	if err != nil {
		t.Fatalf("related returned error: %v", err)
	}
	if copied != "B.md\nC.md" {
		t.Fatalf("unexpected clipboard contents %q", copied)
	}
	if !strings.Contains(out, "Copied 2 note paths") {
		t.Fatalf("expected copy confirmation, got %q", out)
	}
}

func TestRelatedErrors(t *testing.T) {
	st := newTestState(t, "vaultdir: "+exampleVault(t)+"\n")

	if _, err := execute(t, st, "missing-note"); err == nil {
		t.Fatalf("expected unknown note to fail")
	}
	if _, err := execute(t, st); err == nil || !strings.Contains(err.Error(), "focus note is required") {
		t.Fatalf("expected missing focus error, got %v", err)
	}
	if _, err := execute(t, st, "A.md", "--weight-link", "-1"); err == nil {
		t.Fatalf("expected negative weight to fail")
	}
}

func TestRelatedNoResults(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "only.md", "#solo")
	st := newTestState(t, "vaultdir: "+dir+"\n")

	out, err := execute(t, st, "only", "--plain")
	if err != nil {
		t.Fatalf("related returned error: %v", err)
	}
	if strings.TrimSpace(out) != "(no related notes)" {
		t.Fatalf("unexpected output %q", out)
	}
}
