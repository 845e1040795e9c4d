package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Paintersrp/vaultlens/internal/constants"
)

func GetConfigPath(homeDir string) string {
	return filepath.Join(
		homeDir,
		constants.ConfigDir,
		constants.ConfigFile+"."+constants.ConfigFileType,
	)
}

// EnsureConfigExists creates an empty configuration file when none exists yet.
func EnsureConfigExists(homeDir string) error {
	configPath := GetConfigPath(homeDir)
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		file, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		file.Close()
	} else if err != nil {
		return fmt.Errorf("failed to check config file existence: %w", err)
	}

	return nil
}

// RequireVault reports a ConfigInitError when the active workspace has no
// vault directory.
func (cfg *Config) RequireVault() (*Workspace, error) {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return nil, err
	}

	if ws.VaultDir == "" {
		return nil, &ConfigInitError{
			msg: fmt.Sprintf(
				"workspace %q has no vault directory; set vaultdir in %s or pass --vault",
				cfg.CurrentWorkspace,
				cfg.GetConfigPath(),
			),
		}
	}

	return ws, nil
}
