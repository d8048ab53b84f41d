// Package fsutil provides file system helpers and the permission constants
// used for the ggufy config and cache trees.
package fsutil

// File and directory permission constants.
const (
	FileModeDefault = 0o644 // -rw-r--r--: artifacts and sidecars
	FileModeSecure  = 0o600 // -rw-------: files holding credentials
	FileModeExec    = 0o755 // -rwxr-xr-x

	DirModeDefault = 0o755 // drwxr-xr-x
	DirModeSecure  = 0o750 // drwxr-x---
	DirModePrivate = 0o700 // drwx------: the config directory
)

const (
	// AppName is the directory name used below the user config and cache roots.
	AppName = "ggufy"

	// EnvConfigDir overrides the config directory.
	EnvConfigDir = "GGUFY_CONFIG_DIR"
	// EnvCacheDir overrides the cache directory.
	EnvCacheDir = "GGUFY_CACHE_DIR"
)
