package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glorpus-work/ggufy/internal/logger"
	"github.com/glorpus-work/ggufy/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// testEnv points the CLI globals at temporary directories.
type testEnv struct {
	configDir string
	cacheDir  string
	metrics   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	e := &testEnv{
		configDir: filepath.Join(base, "config"),
		cacheDir:  filepath.Join(base, "cache"),
	}
	verbose := false
	ConfigDir = &e.configDir
	CacheDir = &e.cacheDir
	Verbose = &verbose
	MetricsFile = &e.metrics

	logger.SetOutput(io.Discard)
	t.Cleanup(func() {
		logger.SetOutput(nil)
		ConfigDir, CacheDir, Verbose, MetricsFile = nil, nil, nil, nil
	})
	return e
}

func (e *testEnv) writeConfig(t *testing.T, mutate func(*config.Config)) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Settings.HTTPTimeout = 5 * time.Second
	cfg.Settings.LockTimeout = 5 * time.Second
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.SaveConfig(filepath.Join(e.configDir, config.FileName)))
}

// execute runs cmd with args and returns what it wrote to stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
