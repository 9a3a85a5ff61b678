package config

import (
	"os"
	"path/filepath"

	"github.com/webmend/webmend/internal/constants"
	"github.com/webmend/webmend/internal/errors"
)

// GlobalConfigDir returns the path to the global webmend configuration
// directory, typically ~/.webmend on Unix systems.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.WebmendHome), nil
}

// ProjectConfigDir returns the relative path to the project configuration
// directory, always .webmend relative to the working directory.
func ProjectConfigDir() string {
	return constants.WebmendHome
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), "config.yaml")
}

// LogDir returns the directory where rotating log files are written.
func LogDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}

// SessionsDir returns the directory where per-session script files are staged.
func SessionsDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.SessionsDir), nil
}
