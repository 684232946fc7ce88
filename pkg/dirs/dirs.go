package dirs

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDataDir returns the application data directory, creating it if needed.
func GetDataDir() (string, error) {
	var dataDir string

	configDir, err := os.UserConfigDir()
	if err == nil {
		dataDir = filepath.Join(configDir, "browser-mini")
	} else {
		// Fallback to a directory next to the executable
		exePath, err := os.Executable()
		if err == nil {
			dataDir = filepath.Join(filepath.Dir(exePath), "browser-mini-data")
		}
	}

	if dataDir == "" {
		return "", fmt.Errorf("failed to find data directory path")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}

// ProfilePath returns the location of the persisted profile document.
func ProfilePath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "profile.json"), nil
}
