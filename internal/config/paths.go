package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".console"

// DataDir returns the base data directory for the console.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// ConfigPath returns the path to the TOML configuration file.
func ConfigPath() (string, error) {
	return dataPath("config.toml")
}

// TokenPath returns the default path to the bearer token file.
func TokenPath() (string, error) {
	return dataPath("token")
}

// ViewStatePath returns the path to the JSON view-state file used by the
// file storage backend.
func ViewStatePath() (string, error) {
	return dataPath("view_state.json")
}

// DBPath returns the path to the bbolt database.
func DBPath() (string, error) {
	return dataPath("console.db")
}

// UILogPath returns the path the terminal UI logs to.
func UILogPath() (string, error) {
	return dataPath("ui.log")
}

func dataPath(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}
