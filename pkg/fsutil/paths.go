package fsutil

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns the ggufy configuration directory.
// GGUFY_CONFIG_DIR takes precedence over the platform default:
// On Linux: ~/.config/ggufy/
// On macOS: ~/Library/Application Support/ggufy/
// On Windows: %AppData%\ggufy\
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Abs(dir)
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// GetCacheDir returns the ggufy artifact cache directory.
// GGUFY_CACHE_DIR takes precedence over the platform default:
// On Linux: ~/.cache/ggufy/
// On macOS: ~/Library/Caches/ggufy/
// On Windows: %LocalAppData%\ggufy\
func GetCacheDir() (string, error) {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return filepath.Abs(dir)
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}
