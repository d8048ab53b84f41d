package config

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/fsutil"
)

// Environment names the two directories ggufy owns. It is resolved once
// at startup and passed to every operation explicitly.
type Environment struct {
	ConfigDir string
	CacheDir  string
}

// ConfigPath returns the config file location.
func (e Environment) ConfigPath() string {
	return filepath.Join(e.ConfigDir, FileName)
}

// Validate checks that both directories are set.
func (e Environment) Validate() error {
	if e.ConfigDir == "" {
		return errors.ErrConfigDirectory
	}
	if e.CacheDir == "" {
		return errors.ErrCacheDirectory
	}
	return nil
}

// Resolve builds the Environment and loads its config file.
//
// The config directory is configDir, else GGUFY_CONFIG_DIR, else the user
// config directory. The cache directory is cacheDir, else GGUFY_CACHE_DIR,
// else settings.cache_dir from the config file, else the user cache
// directory.
func Resolve(configDir, cacheDir string) (Environment, *Config, error) {
	var env Environment
	var err error

	if configDir != "" {
		env.ConfigDir, err = filepath.Abs(configDir)
	} else {
		env.ConfigDir, err = fsutil.GetConfigDir()
	}
	if err != nil {
		return Environment{}, nil, errors.Wrap(err, "failed to determine config directory")
	}

	cfg, err := LoadConfig(env.ConfigPath())
	if err != nil {
		return Environment{}, nil, err
	}

	switch {
	case cacheDir != "":
		env.CacheDir, err = filepath.Abs(cacheDir)
	case os.Getenv(fsutil.EnvCacheDir) == "" && cfg.Settings.CacheDir != "":
		env.CacheDir, err = filepath.Abs(cfg.Settings.CacheDir)
	default:
		env.CacheDir, err = fsutil.GetCacheDir()
	}
	if err != nil {
		return Environment{}, nil, errors.Wrap(err, "failed to determine cache directory")
	}

	return env, cfg, nil
}
