package root

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Paintersrp/vaultlens/internal/config"
	"github.com/Paintersrp/vaultlens/internal/state"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func execute(t *testing.T, configYAML string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	home := t.TempDir()
	writeFile(t, config.GetConfigPath(home), configYAML)

	st, err := state.NewState(home)
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cmd, err := NewCmdRoot(st)
	if err != nil {
		t.Fatalf("NewCmdRoot returned error: %v", err)
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), err
}

func TestRootOpensConfiguredVault(t *testing.T) {
	vault := t.TempDir()
	writeFile(t, filepath.Join(vault, "a.md"), "#alpha/beta")

	out, err := execute(t, "vaultdir: "+vault+"\n", "tree", "--plain")
	if err != nil {
		t.Fatalf("tree returned error: %v", err)
	}
	if out != "alpha/beta (1)\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRootVaultFlagOverridesConfig(t *testing.T) {
	configured := t.TempDir()
	writeFile(t, filepath.Join(configured, "a.md"), "#configured")
	override := t.TempDir()
	writeFile(t, filepath.Join(override, "b.md"), "#override")

	out, err := execute(t, "vaultdir: "+configured+"\n", "--vault", override, "tree", "--plain")
	if err != nil {
		t.Fatalf("tree returned error: %v", err)
	}
	if out != "override (1)\n" {
		t.Fatalf("expected the flag vault to win, got %q", out)
	}
}

func TestRootWorkspaceFlag(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, "w.md"), "#work")
	home := t.TempDir()
	writeFile(t, filepath.Join(home, "h.md"), "#home")

	cfg := "current_workspace: home\nworkspaces:\n  home:\n    vaultdir: " + home + "\n  work:\n    vaultdir: " + work + "\n"
	out, err := execute(t, cfg, "--workspace", "work", "tree", "--plain")
	if err != nil {
		t.Fatalf("tree returned error: %v", err)
	}
	if out != "work (1)\n" {
		t.Fatalf("expected the work vault, got %q", out)
	}
}

func TestRootRequiresVault(t *testing.T) {
	_, err := execute(t, "", "tags")
	if !errors.Is(err, config.ErrNoWorkspace) {
		t.Fatalf("expected ErrNoWorkspace, got %v", err)
	}

	out, err := execute(t, "", "workspace", "list")
	if err != nil {
		t.Fatalf("workspace list returned error: %v", err)
	}
	if !strings.Contains(out, "* default") {
		t.Fatalf("unexpected workspace list %q", out)
	}
}
