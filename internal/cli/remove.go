package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/ggufy/internal/logger"
	"github.com/glorpus-work/ggufy/pkg/orchestrator"
	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the remove command.
func NewRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove REFERENCE...",
		Aliases: []string{"rm"},
		Short:   "Remove models from the cache",
		Long: `Remove cached artifacts together with their metadata and lock files.
A reference without a file removes every cached file of the repository.`,
		Args: minimumArgs(1),
		RunE: runRemove,
	}

	return cmd
}

func runRemove(cmd *cobra.Command, refs []string) error {
	env, cfg, err := loadEnvironment()
	if err != nil {
		return err
	}

	orch := &orchestrator.Orchestrator{Log: logger.GetLogger(), LockTimeout: cfg.Settings.LockTimeout}
	var freed int64
	for _, ref := range refs {
		removed, err := orch.Remove(cmd.Context(), env, ref)
		if err != nil {
			return err
		}
		for _, l := range removed {
			freed += l.Size
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s:%s\n", l.RepoName, l.FileName)
		}
	}

	logger.Success("Cache entries removed", logger.Fields{"freed": humanize.IBytes(uint64(freed))})
	return nil
}
