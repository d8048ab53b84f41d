package cli

import (
	"fmt"

	"github.com/glorpus-work/ggufy/internal/logger"
	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/orchestrator"
	"github.com/spf13/cobra"
)

// NewPurgeCmd creates the purge command.
func NewPurgeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all ggufy data",
		Long: `Delete the configuration directory, including the stored token, and the
whole model cache. This cannot be undone.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPurge(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runPurge(cmd *cobra.Command, yes bool) error {
	env, _, err := loadEnvironment()
	if err != nil {
		return err
	}

	if !yes {
		question := fmt.Sprintf("This deletes %s and %s.\nContinue?", env.ConfigDir, env.CacheDir)
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), question)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrAborted
		}
	}

	orch := &orchestrator.Orchestrator{Log: logger.GetLogger()}
	if err := orch.Purge(env); err != nil {
		return err
	}

	logger.Success("All ggufy data deleted", logger.Fields{"config_dir": env.ConfigDir, "cache_dir": env.CacheDir})
	return nil
}
