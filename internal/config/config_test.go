package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/vaultlens/internal/config"
)

func writeConfig(t *testing.T, home string, data any) {
	t.Helper()

	configPath := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("failed to create config directory: %v", err)
	}

	var raw []byte
	switch v := data.(type) {
	case string:
		raw = []byte(v)
	default:
		var err error
		raw, err = yaml.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal config data: %v", err)
		}
	}

	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	resetViper(t)
	home := t.TempDir()
	writeConfig(t, home, "")

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.CurrentWorkspace != "default" {
		t.Fatalf("expected default workspace, got %q", cfg.CurrentWorkspace)
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		t.Fatalf("ActiveWorkspace returned error: %v", err)
	}
	if ws.Related.Weights.Tag != 1 || ws.Related.Weights.Link != 1 {
		t.Fatalf("expected default weights, got %+v", ws.Related.Weights)
	}
	if ws.Tree.Sort != "alphabetical" || ws.Tree.Scope != "tags-and-files" {
		t.Fatalf("unexpected tree defaults: %+v", ws.Tree)
	}
	if !ws.Tree.CollapseEnabled() {
		t.Fatalf("expected collapse to default to true")
	}
	if ws.Watch.DebounceMs != 150 {
		t.Fatalf("expected 150ms debounce, got %d", ws.Watch.DebounceMs)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected warn log level, got %q", cfg.Log.Level)
	}
}

func TestLoadWorkspacesKeepsDefaultsForOmittedKeys(t *testing.T) {
	resetViper(t)
	home := t.TempDir()
	writeConfig(t, home, `
current_workspace: work
workspaces:
  work:
    vaultdir: /notes/work
    ignore: [archive, "templates/**"]
    related:
      weights:
        tag: 2.5
    tree:
      sort: count
      collapse: false
  personal:
    vaultdir: /notes/personal
`)

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		t.Fatalf("ActiveWorkspace returned error: %v", err)
	}
	if ws.VaultDir != "/notes/work" {
		t.Fatalf("unexpected vault dir %q", ws.VaultDir)
	}
	if ws.Related.Weights.Tag != 2.5 || ws.Related.Weights.Title != 1 {
		t.Fatalf("expected tag weight override with default title weight, got %+v", ws.Related.Weights)
	}
	if ws.Tree.Sort != "count" || ws.Tree.Scope != "tags-and-files" {
		t.Fatalf("unexpected tree config %+v", ws.Tree)
	}
	if ws.Tree.CollapseEnabled() {
		t.Fatalf("expected collapse to be disabled")
	}
	if len(ws.Ignore) != 2 {
		t.Fatalf("expected ignore patterns, got %v", ws.Ignore)
	}

	names := cfg.WorkspaceNames()
	if strings.Join(names, ",") != "personal,work" {
		t.Fatalf("unexpected workspace names %v", names)
	}

	if err := cfg.ActivateWorkspace("personal"); err != nil {
		t.Fatalf("ActivateWorkspace returned error: %v", err)
	}
	if got := viper.GetString("vaultdir"); got != "/notes/personal" {
		t.Fatalf("expected viper default to follow active workspace, got %q", got)
	}
}

func TestLoadMigratesLegacyConfig(t *testing.T) {
	resetViper(t)
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"vaultdir": filepath.Join(home, "vault"),
		"ignore":   []string{"private"},
		"log":      map[string]any{"level": "debug"},
	})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		t.Fatalf("ActiveWorkspace returned error: %v", err)
	}
	if ws.VaultDir != filepath.Join(home, "vault") {
		t.Fatalf("expected legacy vault dir, got %q", ws.VaultDir)
	}
	if len(ws.Ignore) != 1 || ws.Ignore[0] != "private" {
		t.Fatalf("expected legacy ignore list, got %v", ws.Ignore)
	}
	if ws.Related.Weights.Path != 1 {
		t.Fatalf("expected default weights after migration, got %+v", ws.Related.Weights)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected legacy log level, got %q", cfg.Log.Level)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want string
	}{
		"sort mode": {
			yaml: "vaultdir: /v\ntree:\n  sort: alphabetically-descending\n",
			want: "Tree.Sort",
		},
		"scope": {
			yaml: "vaultdir: /v\ntree:\n  scope: everything\n",
			want: "Tree.Scope",
		},
		"negative weight": {
			yaml: "vaultdir: /v\nrelated:\n  weights:\n    link: -1\n",
			want: "Related.Weights.Link",
		},
		"metrics address": {
			yaml: "vaultdir: /v\nwatch:\n  metrics_addr: not-an-address\n",
			want: "Watch.MetricsAddr",
		},
		"log level": {
			yaml: "vaultdir: /v\nlog:\n  level: loud\n",
			want: "Level",
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			resetViper(t)
			home := t.TempDir()
			writeConfig(t, home, tc.yaml)

			_, err := config.Load(home)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadUnknownCurrentWorkspace(t *testing.T) {
	resetViper(t)
	home := t.TempDir()
	writeConfig(t, home, "current_workspace: missing\nworkspaces:\n  main:\n    vaultdir: /v\n")

	_, err := config.Load(home)
	if !errors.Is(err, config.ErrNoWorkspace) {
		t.Fatalf("expected ErrNoWorkspace, got %v", err)
	}
}

func TestRequireVault(t *testing.T) {
	resetViper(t)
	cfg, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	_, err = cfg.RequireVault()
	var initErr *config.ConfigInitError
	if !errors.As(err, &initErr) || !errors.Is(err, config.ErrNoWorkspace) {
		t.Fatalf("expected ConfigInitError wrapping ErrNoWorkspace, got %v", err)
	}
}

func TestApplyOverridesPrefersViperValues(t *testing.T) {
	resetViper(t)
	cfg, err := config.Parse([]byte("vaultdir: /from/config\ntree:\n  sort: count\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	viper.Set("vaultdir", "/from/flag")
	viper.Set("log.level", "info")
	if err := cfg.ApplyOverrides(); err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}

	ws, _ := cfg.ActiveWorkspace()
	if ws.VaultDir != "/from/flag" {
		t.Fatalf("expected flag override, got %q", ws.VaultDir)
	}
	if ws.Tree.Sort != "count" {
		t.Fatalf("expected config sort to survive, got %q", ws.Tree.Sort)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected log level override, got %q", cfg.Log.Level)
	}

	viper.Set("tree.sort", "backwards")
	if err := cfg.ApplyOverrides(); err == nil {
		t.Fatalf("expected invalid override to be rejected")
	}
}

func TestEnsureConfigExistsAndSave(t *testing.T) {
	resetViper(t)
	home := t.TempDir()

	if err := config.EnsureConfigExists(home); err != nil {
		t.Fatalf("EnsureConfigExists returned error: %v", err)
	}

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if err := cfg.AddWorkspace("research", nil, true); err != nil {
		t.Fatalf("AddWorkspace returned error: %v", err)
	}
	if err := cfg.AddWorkspace("research", nil, false); err == nil {
		t.Fatalf("expected duplicate workspace to be rejected")
	}

	reloaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if reloaded.CurrentWorkspace != "research" {
		t.Fatalf("expected saved current workspace, got %q", reloaded.CurrentWorkspace)
	}
	if len(reloaded.Workspaces) != 2 {
		t.Fatalf("expected two workspaces, got %v", reloaded.WorkspaceNames())
	}
}

func TestSwitchAndRemoveWorkspace(t *testing.T) {
	resetViper(t)
	home := t.TempDir()
	writeConfig(t, home, "current_workspace: a\nworkspaces:\n  a:\n    vaultdir: /a\n  b:\n    vaultdir: /b\n")

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if err := cfg.SwitchWorkspace("b"); err != nil {
		t.Fatalf("SwitchWorkspace returned error: %v", err)
	}
	reloaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if reloaded.CurrentWorkspace != "b" {
		t.Fatalf("expected persisted switch, got %q", reloaded.CurrentWorkspace)
	}

	if err := reloaded.RemoveWorkspace("zzz"); !errors.Is(err, config.ErrNoWorkspace) {
		t.Fatalf("expected ErrNoWorkspace, got %v", err)
	}
	if err := reloaded.RemoveWorkspace("b"); err != nil {
		t.Fatalf("RemoveWorkspace returned error: %v", err)
	}
	if reloaded.CurrentWorkspace != "a" {
		t.Fatalf("expected fallback to remaining workspace, got %q", reloaded.CurrentWorkspace)
	}
	if err := reloaded.RemoveWorkspace("a"); err == nil {
		t.Fatalf("expected removing the last workspace to fail")
	}
}

func TestWorkspaceCloneIsIndependent(t *testing.T) {
	resetViper(t)
	cfg, err := config.Parse([]byte("vaultdir: /v\nignore: [archive]\ntree:\n  collapse: false\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	ws, _ := cfg.ActiveWorkspace()

	clone := ws.Clone()
	clone.Ignore[0] = "changed"
	*clone.Tree.Collapse = true

	if ws.Ignore[0] != "archive" || ws.Tree.CollapseEnabled() {
		t.Fatalf("expected original workspace to be untouched, got %+v", ws)
	}
}
