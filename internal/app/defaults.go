package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - OPPMAP_CONFIG_PATH: config file location (default: ~/.config/oppmap.toml)
//   - OPPMAP_HOME: base directory for oppmap data (default: ~/.local/share/oppmap)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking OPPMAP_CONFIG_PATH
// first, then falling back to the default ~/.config/oppmap.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("OPPMAP_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "oppmap.toml"), nil
}

// getBaseDir returns the base directory for oppmap data, checking
// OPPMAP_HOME first, then falling back to the XDG default
// ~/.local/share/oppmap.
func getBaseDir() (string, error) {
	if path := os.Getenv("OPPMAP_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "oppmap"), nil
}
