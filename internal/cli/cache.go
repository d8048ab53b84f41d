package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/ggufy/pkg/cache"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the model cache",
		Long:  "Show the location and the disk usage of the model cache",
	}

	cmd.AddCommand(
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the size and the number of entries of the model cache",
		Args:  exactArgs(0),
		RunE:  runCacheInfo,
	}

	return cmd
}

func newCacheDirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		Args:  exactArgs(0),
		RunE:  runCacheDir,
	}

	return cmd
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	env, _, err := loadEnvironment()
	if err != nil {
		return err
	}

	var manager cache.Manager = cache.NewManager(env.CacheDir)
	info, err := manager.GetInfo()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Cache Directory: %s\n", info.Directory)
	_, _ = fmt.Fprintf(out, "Total Size: %s (%d files)\n", humanize.IBytes(uint64(info.TotalSize)), info.Files)
	_, _ = fmt.Fprintf(out, "Models: %d (%d without metadata)\n", info.Entries, info.Unknown)
	return nil
}

func runCacheDir(cmd *cobra.Command, _ []string) error {
	env, _, err := loadEnvironment()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), cache.NewManager(env.CacheDir).GetDirectory())
	return nil
}
