package state

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Paintersrp/vaultlens/internal/config"
	"github.com/Paintersrp/vaultlens/internal/constants"
	"github.com/Paintersrp/vaultlens/internal/logger"
	"github.com/Paintersrp/vaultlens/internal/metrics"
	indexsvc "github.com/Paintersrp/vaultlens/internal/services/index"
)

type State struct {
	Config        *config.Config
	Workspace     *config.Workspace
	WorkspaceName string
	Home          string
	Vault         string
	Logger        zerolog.Logger
	Metrics       *metrics.Metrics
	Index         *indexsvc.Service
}

// NewState loads the configuration under home. The vault itself is opened
// later by Open, once command line overrides are known.
func NewState(home string) (*State, error) {
	if home == "" {
		var err error
		home, err = GetHomeDir()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return nil, err
	}

	return &State{
		Config:        cfg,
		Workspace:     ws,
		WorkspaceName: cfg.CurrentWorkspace,
		Home:          home,
		Vault:         ws.VaultDir,
		Logger:        zerolog.Nop(),
	}, nil
}

// Open applies flag and environment overrides, then wires the logger,
// metrics and index service for the active workspace.
func (s *State) Open(workspaceOverride string) error {
	if s == nil || s.Config == nil {
		return config.ErrNoWorkspace
	}
	if s.Index != nil {
		return nil
	}

	if workspaceOverride != "" {
		if err := s.Config.ActivateWorkspace(workspaceOverride); err != nil {
			return err
		}
	}
	if err := s.Config.ApplyOverrides(); err != nil {
		return err
	}

	ws, err := s.Config.RequireVault()
	if err != nil {
		return err
	}

	s.Workspace = ws
	s.WorkspaceName = s.Config.CurrentWorkspace
	s.Vault = ws.VaultDir
	s.Logger = logger.New(logger.Config{
		Level:  s.Config.Log.Level,
		Pretty: s.Config.Log.Pretty,
	}).With().Str("workspace", s.WorkspaceName).Logger()
	s.Metrics = metrics.New()
	s.Index = indexsvc.NewService(
		ws.VaultDir,
		indexsvc.WithWeights(ws.Related.Weights),
		indexsvc.WithIgnore(ws.Ignore...),
		indexsvc.WithLocale(ws.Tree.Locale),
		indexsvc.WithLogger(logger.Component(s.Logger, "index")),
		indexsvc.WithMetrics(s.Metrics),
	)

	return nil
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

func LoadConfig(home string) (*config.Config, error) {
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	err := config.EnsureConfigExists(home)
	if err != nil {
		return nil, err
	}

	return config.Load(home)
}

// Close releases resources associated with the state, including the shared
// index service.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Index != nil {
		if err := s.Index.Close(); err != nil && !errors.Is(err, indexsvc.ErrClosed) {
			errs = append(errs, err)
		}
		s.Index = nil
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
