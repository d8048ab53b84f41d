// Package config provides configuration management for ggufy. It loads
// and saves the YAML config file holding the hub token and settings, and
// resolves the Environment (config and cache directories) every command
// operates on.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/fsutil"
	"github.com/glorpus-work/ggufy/pkg/hub"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file inside the config directory.
const FileName = "config.yaml"

// Config represents the application configuration.
type Config struct {
	// Token is the hub access token written by "ggufy login".
	Token string `yaml:"token,omitempty"`

	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	Endpoint    string        `yaml:"endpoint"`
	CacheDir    string        `yaml:"cache_dir,omitempty"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
	LogLevel    string        `yaml:"log_level"`
	LatestOrder string        `yaml:"latest_order"`
	UserAgent   string        `yaml:"user_agent,omitempty"`
	Engine      EngineConfig  `yaml:"engine"`
}

// EngineConfig describes the external inference engine used by "ggufy run".
type EngineConfig struct {
	Command     string   `yaml:"command"`
	Args        []string `yaml:"args,omitempty"`
	ContextSize int      `yaml:"context_size"`
	MaxTokens   int      `yaml:"max_tokens"`
}

// Default configuration values.
const (
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultLockTimeout   = 10 * time.Minute
	DefaultLogLevel      = "info"
	DefaultEngineCommand = "llama-cli"
	DefaultContextSize   = 4096
	DefaultMaxTokens     = 200

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			Endpoint:    hub.DefaultEndpoint,
			HTTPTimeout: DefaultHTTPTimeout,
			LockTimeout: DefaultLockTimeout,
			LogLevel:    DefaultLogLevel,
			LatestOrder: string(hub.OrderLexical),
			Engine: EngineConfig{
				Command:     DefaultEngineCommand,
				ContextSize: DefaultContextSize,
				MaxTokens:   DefaultMaxTokens,
			},
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig atomically writes the configuration to path. The file holds
// a credential and is therefore readable by the owner only.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath, fsutil.DirModePrivate); err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	data, err := c.ToYAML()
	if err != nil {
		return err
	}

	if err := fsutil.WriteFileAtomic(absPath, data, fsutil.FileModeSecure); err != nil {
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	var sb strings.Builder
	encoder := yaml.NewEncoder(&sb)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return []byte(sb.String()), nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	s := c.Settings
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.LockTimeout < 0 {
		return errors.ErrLockTimeoutNegative
	}
	if u, err := url.Parse(s.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q: %w", s.Endpoint, errors.ErrInvalidEndpoint)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("%q: %w", s.LogLevel, errors.ErrInvalidLogLevel)
	}
	if _, err := hub.ParseOrder(s.LatestOrder); err != nil {
		return err
	}
	if s.Engine.ContextSize < 0 || s.Engine.MaxTokens < 0 {
		return fmt.Errorf("engine context_size and max_tokens cannot be negative")
	}
	return nil
}

// Order returns the configured latest-artifact order.
func (c *Config) Order() hub.Order {
	o, err := hub.ParseOrder(c.Settings.LatestOrder)
	if err != nil {
		return hub.OrderLexical
	}
	return o
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig().Settings

	if c.Settings.Endpoint == "" {
		c.Settings.Endpoint = defaults.Endpoint
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.HTTPTimeout
	}
	if c.Settings.LockTimeout == 0 {
		c.Settings.LockTimeout = defaults.LockTimeout
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.LogLevel
	}
	if c.Settings.LatestOrder == "" {
		c.Settings.LatestOrder = defaults.LatestOrder
	}
	if c.Settings.Engine.Command == "" {
		c.Settings.Engine.Command = defaults.Engine.Command
	}
	if c.Settings.Engine.ContextSize == 0 {
		c.Settings.Engine.ContextSize = defaults.Engine.ContextSize
	}
	if c.Settings.Engine.MaxTokens == 0 {
		c.Settings.Engine.MaxTokens = defaults.Engine.MaxTokens
	}
}
