package fsutil

import (
	"os"
	"path/filepath"
)

// AppName is the name of the application used in paths.
const AppName = "apod"

// GetCacheDir returns the platform-specific cache directory for the application.
// On Linux: ~/.cache/apod/
// On macOS: ~/Library/Caches/apod/
// On Windows: %LOCALAPPDATA%\apod\
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetConfigDir returns the platform-specific configuration directory for the application.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
