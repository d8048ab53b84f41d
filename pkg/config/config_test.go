package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/fsutil"
	"github.com/glorpus-work/ggufy/pkg/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, hub.DefaultEndpoint, cfg.Settings.Endpoint)
	assert.Equal(t, hub.OrderLexical, cfg.Order())
	assert.Equal(t, 4096, cfg.Settings.Engine.ContextSize)
	assert.Equal(t, 200, cfg.Settings.Engine.MaxTokens)
	assert.Empty(t, cfg.Token)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `token: hf_abcdef
settings:
  log_level: debug
  http_timeout: 5s
  latest_order: version
  engine:
    command: /opt/llama/llama-cli
    args: ["--temp", "0.2"]`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "hf_abcdef", cfg.Token)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, DefaultLockTimeout, cfg.Settings.LockTimeout, "defaults fill missing values")
	assert.Equal(t, hub.OrderVersion, cfg.Order())
	assert.Equal(t, "/opt/llama/llama-cli", cfg.Settings.Engine.Command)
	assert.Equal(t, []string{"--temp", "0.2"}, cfg.Settings.Engine.Args)
	assert.Equal(t, DefaultContextSize, cfg.Settings.Engine.ContextSize)
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestLoadConfigFromReader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected error
	}{
		{name: "malformed yaml", content: "settings: [", expected: errors.ErrConfigParse},
		{name: "negative timeout", content: "settings:\n  http_timeout: -1s", expected: errors.ErrHTTPTimeoutNegative},
		{name: "bad log level", content: "settings:\n  log_level: loud", expected: errors.ErrInvalidLogLevel},
		{name: "bad order", content: "settings:\n  latest_order: random", expected: errors.ErrInvalidLatestOrder},
		{name: "bad endpoint", content: "settings:\n  endpoint: not-a-url", expected: errors.ErrInvalidEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token = "hf_secret"
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.LockTimeout = time.Minute

	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.SaveConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "token: hf_secret")
	assert.Contains(t, string(data), "lock_timeout: 1m0s")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(configPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(fsutil.FileModeSecure), info.Mode().Perm())
	}

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	assert.ErrorIs(t, cfg.SaveConfig(""), errors.ErrEmptyConfigPath)
}

func TestSetGetValue(t *testing.T) {
	tests := []struct {
		key      string
		value    string
		expected string
	}{
		{key: "log_level", value: "WARN", expected: "warn"},
		{key: "http_timeout", value: "45s", expected: "45s"},
		{key: "lock_timeout", value: "2m", expected: "2m0s"},
		{key: "latest_order", value: "version", expected: "version"},
		{key: "cache_dir", value: "/data/models", expected: "/data/models"},
		{key: "endpoint", value: "http://mirror.local", expected: "http://mirror.local"},
		{key: "engine.command", value: "llama-server", expected: "llama-server"},
		{key: "engine.args", value: "--temp 0.7  --top-k 40", expected: "--temp 0.7 --top-k 40"},
		{key: "engine.context_size", value: "8192", expected: "8192"},
		{key: "engine.max_tokens", value: "512", expected: "512"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := DefaultConfig()
			require.NoError(t, cfg.SetValue(tt.key, tt.value))
			got, err := cfg.GetValue(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSetValue_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
		err   error
	}{
		{key: "nope", value: "x", err: errors.ErrUnknownConfigKey},
		{key: "log_level", value: "chatty", err: errors.ErrInvalidLogLevel},
		{key: "latest_order", value: "newest", err: errors.ErrInvalidLatestOrder},
		{key: "http_timeout", value: "-5s", err: errors.ErrHTTPTimeoutNegative},
		{key: "http_timeout", value: "soon"},
		{key: "engine.context_size", value: "big"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.SetValue(tt.key, tt.value)
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
			assert.Equal(t, DefaultConfig(), cfg, "failed updates must not modify the config")
		})
	}

	_, err := DefaultConfig().GetValue("nope")
	assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)
}

func TestToMap_MasksToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token = "hf_abcdefgh1234"

	m := cfg.ToMap()
	assert.Equal(t, "***********1234", m["token"])
	for _, key := range Keys {
		_, ok := m[key]
		assert.True(t, ok, key)
	}
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "***", MaskToken("abc"))
	assert.Equal(t, "**cdef", MaskToken("abcdef"))
}
