package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/ggufy/pkg/errors"
)

// Keys lists the settings accepted by SetValue and GetValue.
var Keys = []string{
	"endpoint",
	"cache_dir",
	"http_timeout",
	"lock_timeout",
	"log_level",
	"latest_order",
	"user_agent",
	"engine.command",
	"engine.args",
	"engine.context_size",
	"engine.max_tokens",
}

// SetValue sets a configuration value by key. The result is validated;
// on error the config is left unchanged.
func (c *Config) SetValue(key, value string) error {
	next := *c
	next.Settings.Engine.Args = append([]string(nil), c.Settings.Engine.Args...)
	s := &next.Settings

	switch key {
	case "endpoint":
		s.Endpoint = value
	case "cache_dir":
		s.CacheDir = value
	case "http_timeout", "lock_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		if key == "http_timeout" {
			s.HTTPTimeout = d
		} else {
			s.LockTimeout = d
		}
	case "log_level":
		s.LogLevel = strings.ToLower(value)
	case "latest_order":
		s.LatestOrder = strings.ToLower(value)
	case "user_agent":
		s.UserAgent = value
	case "engine.command":
		s.Engine.Command = value
	case "engine.args":
		s.Engine.Args = strings.Fields(value)
	case "engine.context_size", "engine.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		if key == "engine.context_size" {
			s.Engine.ContextSize = n
		} else {
			s.Engine.MaxTokens = n
		}
	default:
		return fmt.Errorf("%s: %w", key, errors.ErrUnknownConfigKey)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// GetValue returns the value of key as a string.
func (c *Config) GetValue(key string) (string, error) {
	v, ok := c.ToMap()[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, errors.ErrUnknownConfigKey)
	}
	return v, nil
}

// ToMap returns all settings keyed as in Keys, plus a masked token entry.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	s := c.Settings
	return map[string]string{
		"token":               MaskToken(c.Token),
		"endpoint":            s.Endpoint,
		"cache_dir":           s.CacheDir,
		"http_timeout":        s.HTTPTimeout.String(),
		"lock_timeout":        s.LockTimeout.String(),
		"log_level":           s.LogLevel,
		"latest_order":        s.LatestOrder,
		"user_agent":          s.UserAgent,
		"engine.command":      s.Engine.Command,
		"engine.args":         strings.Join(s.Engine.Args, " "),
		"engine.context_size": strconv.Itoa(s.Engine.ContextSize),
		"engine.max_tokens":   strconv.Itoa(s.Engine.MaxTokens),
	}
}

// MaskToken hides all but the last four characters of token.
func MaskToken(token string) string {
	const visible = 4
	switch {
	case token == "":
		return ""
	case len(token) <= visible:
		return strings.Repeat("*", len(token))
	default:
		return strings.Repeat("*", len(token)-visible) + token[len(token)-visible:]
	}
}
