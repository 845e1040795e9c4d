package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/vaultlens/internal/related"
)

type RelatedConfig struct {
	Weights  related.Weights `yaml:"weights"   json:"weights"`
	MinScore float64         `yaml:"min_score" json:"min_score" validate:"gte=0"`
	Limit    int             `yaml:"limit"     json:"limit"     validate:"gte=0"`
}

type TreeConfig struct {
	Sort     string `yaml:"sort"     json:"sort"     validate:"omitempty,oneof=alphabetical count created-newest created-oldest modified-newest modified-oldest"`
	Scope    string `yaml:"scope"    json:"scope"    validate:"omitempty,oneof=tags-and-files tags-only files-only"`
	Locale   string `yaml:"locale"   json:"locale"   validate:"omitempty,bcp47_language_tag"`
	Collapse *bool  `yaml:"collapse" json:"collapse"`
}

// CollapseEnabled reports whether single-child chains are merged when
// rendering. It defaults to true.
func (t TreeConfig) CollapseEnabled() bool {
	return t.Collapse == nil || *t.Collapse
}

type WatchConfig struct {
	DebounceMs  int    `yaml:"debounce_ms"  json:"debounce_ms"  validate:"gte=0"`
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr" validate:"omitempty,hostname_port"`
}

type LogConfig struct {
	Level  string `yaml:"level"  json:"level"  validate:"omitempty,oneof=trace debug info warn error disabled off"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

type Workspace struct {
	VaultDir string        `yaml:"vaultdir" json:"vault_dir"`
	Ignore   []string      `yaml:"ignore"   json:"ignore"`
	Related  RelatedConfig `yaml:"related"  json:"related"`
	Tree     TreeConfig    `yaml:"tree"     json:"tree"`
	Watch    WatchConfig   `yaml:"watch"    json:"watch"`
}

type Config struct {
	Workspaces       map[string]*Workspace `yaml:"workspaces"        json:"workspaces"`
	CurrentWorkspace string                `yaml:"current_workspace" json:"current_workspace"`
	Log              LogConfig             `yaml:"log"               json:"log"`

	active *Workspace `yaml:"-"`
	path   string     `yaml:"-"`
}

const (
	defaultWorkspaceName = "default"
	defaultSort          = "alphabetical"
	defaultScope         = "tags-and-files"
	defaultDebounceMs    = 150
	defaultLimit         = 10
	defaultLogLevel      = "warn"
)

// legacyConfig is the flat single-vault layout, without workspaces.
type legacyConfig struct {
	VaultDir string        `yaml:"vaultdir"`
	Ignore   []string      `yaml:"ignore"`
	Related  RelatedConfig `yaml:"related"`
	Tree     TreeConfig    `yaml:"tree"`
	Watch    WatchConfig   `yaml:"watch"`
	Log      LogConfig     `yaml:"log"`
}

func newWorkspace() *Workspace {
	ws := &Workspace{
		Ignore: []string{},
		Related: RelatedConfig{
			Weights: related.DefaultWeights(),
			Limit:   defaultLimit,
		},
		Tree:  TreeConfig{Sort: defaultSort, Scope: defaultScope},
		Watch: WatchConfig{DebounceMs: defaultDebounceMs},
	}
	return ws
}

// UnmarshalYAML starts from the defaults so that omitted keys keep them.
func (ws *Workspace) UnmarshalYAML(value *yaml.Node) error {
	type plain Workspace
	raw := plain(*newWorkspace())
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*ws = Workspace(raw)
	return nil
}

func (ws *Workspace) ensureDefaults() {
	if ws.Ignore == nil {
		ws.Ignore = []string{}
	}
	ws.VaultDir = strings.TrimSpace(ws.VaultDir)
	if ws.Tree.Sort == "" {
		ws.Tree.Sort = defaultSort
	}
	if ws.Tree.Scope == "" {
		ws.Tree.Scope = defaultScope
	}
	if ws.Watch.DebounceMs == 0 {
		ws.Watch.DebounceMs = defaultDebounceMs
	}
}

func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes a configuration document, migrating the flat legacy layout
// and validating the active workspace.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(strings.TrimSpace(string(data))) == 0 {
		cfg.Workspaces = map[string]*Workspace{
			defaultWorkspaceName: newWorkspace(),
		}
		cfg.CurrentWorkspace = defaultWorkspaceName
	} else {
		raw := make(map[string]interface{})
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}

		if _, ok := raw["workspaces"]; ok {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else {
			legacy := legacyConfig{
				Related: newWorkspace().Related,
			}
			if err := yaml.Unmarshal(data, &legacy); err != nil {
				return nil, err
			}
			cfg = migrateLegacyConfig(&legacy)
		}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}

	if err := cfg.ensureInitialized(); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func migrateLegacyConfig(legacy *legacyConfig) *Config {
	ws := newWorkspace()
	ws.VaultDir = legacy.VaultDir
	if legacy.Ignore != nil {
		ws.Ignore = legacy.Ignore
	}
	ws.Related = legacy.Related
	ws.Tree = legacy.Tree
	ws.Watch = legacy.Watch
	ws.ensureDefaults()

	return &Config{
		Workspaces: map[string]*Workspace{
			defaultWorkspaceName: ws,
		},
		CurrentWorkspace: defaultWorkspaceName,
		Log:              legacy.Log,
		active:           ws,
	}
}

func (cfg *Config) ensureInitialized() error {
	if cfg.Workspaces == nil {
		cfg.Workspaces = make(map[string]*Workspace)
	}

	if cfg.CurrentWorkspace == "" {
		if len(cfg.Workspaces) == 0 {
			cfg.Workspaces[defaultWorkspaceName] = newWorkspace()
			cfg.CurrentWorkspace = defaultWorkspaceName
		} else {
			cfg.CurrentWorkspace = cfg.WorkspaceNames()[0]
		}
	}

	return cfg.setActiveWorkspace(cfg.CurrentWorkspace)
}

func (cfg *Config) setActiveWorkspace(name string) error {
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty: %w", ErrNoWorkspace)
	}
	ws, ok := cfg.Workspaces[name]
	if !ok {
		return fmt.Errorf("workspace %q does not exist: %w", name, ErrNoWorkspace)
	}
	if ws == nil {
		ws = newWorkspace()
		cfg.Workspaces[name] = ws
	}

	ws.ensureDefaults()
	cfg.CurrentWorkspace = name
	cfg.active = ws

	cfg.syncViperWithActiveWorkspace()

	return nil
}

func (cfg *Config) syncViperWithActiveWorkspace() {
	if cfg.active == nil {
		return
	}

	syncWorkspaceWithViper(cfg.active)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.pretty", cfg.Log.Pretty)
}

// syncWorkspaceWithViper publishes the workspace as viper defaults. Bound
// flags and environment variables take precedence over them.
func syncWorkspaceWithViper(ws *Workspace) {
	viper.SetDefault("vaultdir", ws.VaultDir)
	viper.SetDefault("tree.sort", ws.Tree.Sort)
	viper.SetDefault("tree.scope", ws.Tree.Scope)
	viper.SetDefault("tree.locale", ws.Tree.Locale)
	viper.SetDefault("watch.debounce_ms", ws.Watch.DebounceMs)
	viper.SetDefault("watch.metrics_addr", ws.Watch.MetricsAddr)
}

// ApplyOverrides copies values that viper resolved from flags or the
// environment back onto the active workspace and validates the result.
func (cfg *Config) ApplyOverrides() error {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}

	ws.VaultDir = strings.TrimSpace(viper.GetString("vaultdir"))
	ws.Tree.Sort = viper.GetString("tree.sort")
	ws.Tree.Scope = viper.GetString("tree.scope")
	ws.Tree.Locale = viper.GetString("tree.locale")
	ws.Watch.DebounceMs = viper.GetInt("watch.debounce_ms")
	ws.Watch.MetricsAddr = viper.GetString("watch.metrics_addr")
	cfg.Log.Level = viper.GetString("log.level")
	cfg.Log.Pretty = viper.GetBool("log.pretty")

	return Validate(cfg)
}

func (cfg *Config) ActiveWorkspace() (*Workspace, error) {
	if cfg.active != nil {
		return cfg.active, nil
	}

	if cfg.CurrentWorkspace == "" {
		return nil, ErrNoWorkspace
	}

	if err := cfg.setActiveWorkspace(cfg.CurrentWorkspace); err != nil {
		return nil, err
	}

	return cfg.active, nil
}

func (cfg *Config) WorkspaceNames() []string {
	names := make([]string, 0, len(cfg.Workspaces))
	for name := range cfg.Workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SwitchWorkspace activates name and persists the choice.
func (cfg *Config) SwitchWorkspace(name string) error {
	if err := cfg.setActiveWorkspace(name); err != nil {
		return err
	}
	return cfg.Save()
}

func (cfg *Config) ActivateWorkspace(name string) error {
	return cfg.setActiveWorkspace(name)
}

func (cfg *Config) AddWorkspace(name string, ws *Workspace, makeCurrent bool) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}

	if cfg.Workspaces == nil {
		cfg.Workspaces = make(map[string]*Workspace)
	}

	if _, exists := cfg.Workspaces[trimmed]; exists {
		return fmt.Errorf("workspace %q already exists", trimmed)
	}

	if ws == nil {
		ws = newWorkspace()
	}
	ws.ensureDefaults()
	cfg.Workspaces[trimmed] = ws

	if cfg.CurrentWorkspace == "" || makeCurrent {
		if err := cfg.setActiveWorkspace(trimmed); err != nil {
			return err
		}
	}

	return cfg.Save()
}

func (cfg *Config) RemoveWorkspace(name string) error {
	if len(cfg.Workspaces) <= 1 {
		return fmt.Errorf("cannot remove the last workspace")
	}

	if _, exists := cfg.Workspaces[name]; !exists {
		return fmt.Errorf("workspace %q does not exist: %w", name, ErrNoWorkspace)
	}

	delete(cfg.Workspaces, name)

	if cfg.CurrentWorkspace == name {
		cfg.active = nil
		cfg.CurrentWorkspace = ""
		if err := cfg.ensureInitialized(); err != nil {
			return err
		}
	}

	return cfg.Save()
}

// Clone returns a deep copy of the workspace settings.
func (ws *Workspace) Clone() *Workspace {
	if ws == nil {
		return newWorkspace()
	}
	clone := *ws
	clone.Ignore = append([]string{}, ws.Ignore...)
	if ws.Tree.Collapse != nil {
		collapse := *ws.Tree.Collapse
		clone.Tree.Collapse = &collapse
	}
	return &clone
}

func (cfg *Config) GetConfigPath() string {
	if cfg.path != "" {
		return cfg.path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return GetConfigPath(homeDir)
}

func (cfg *Config) Save() error {
	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}
