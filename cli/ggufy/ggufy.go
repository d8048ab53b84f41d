package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/ggufy/internal/cli"
	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configDir   string
	cacheDir    string
	verbose     bool
	metricsFile string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ggufy",
		Short: "Fetch and cache GGUF models",
		Long: `ggufy downloads GGUF model files from the Hugging Face hub into a local
cache and hands them to an inference engine:
- pull, run: resolve hf.co/owner/collection[:file] references
- list, verify, remove, purge: manage the cache
- login, config: manage the token and settings`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default: $GGUFY_CONFIG_DIR or the user config dir)")
	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "model cache directory (default: $GGUFY_CACHE_DIR, settings.cache_dir or the user cache dir)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the command")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errors.ErrInvalidArguments, err)
	})

	// Set up CLI pkg variables
	cli.ConfigDir = &configDir
	cli.CacheDir = &cacheDir
	cli.Verbose = &verbose
	cli.MetricsFile = &metricsFile

	// Add subcommands
	cmd.AddCommand(
		cli.NewLoginCmd(),
		cli.NewPullCmd(),
		cli.NewRunCmd(),
		cli.NewListCmd(),
		cli.NewVerifyCmd(),
		cli.NewRemoveCmd(),
		cli.NewPurgeCmd(),
		cli.NewCacheCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
