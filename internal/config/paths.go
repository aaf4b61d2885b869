package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qntmpulse/pulse/internal/constants"
)

// GlobalConfigDir returns the path to the global pulse configuration
// directory, typically ~/.pulse on Unix systems.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, constants.PulseHome), nil
}

// ProjectConfigDir returns the relative path to the project configuration
// directory, always .pulse relative to the working directory.
func ProjectConfigDir() string {
	return constants.PulseHome
}

// GlobalConfigPath returns the full path to the global configuration file,
// typically ~/.pulse/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the relative path to the project configuration
// file, always .pulse/config.yaml.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.ConfigFileName)
}

// LogsDir returns the global log directory, typically ~/.pulse/logs.
func LogsDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}
