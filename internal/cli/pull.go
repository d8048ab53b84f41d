package cli

import (
	"fmt"

	"github.com/glorpus-work/ggufy/internal/logger"
	"github.com/spf13/cobra"
)

// NewPullCmd creates the pull command.
func NewPullCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "pull REFERENCE...",
		Short: "Download models into the cache",
		Long: `Resolve one or more model references and make sure each artifact is cached.
A reference has the form hf.co/owner/collection[:file]; without a file the
latest .gguf artifact of the repository is used. The local path of every
artifact is printed on stdout.`,
		Example: `  ggufy pull hf.co/TheBloke/Llama-2-7B-GGUF:llama-2-7b.Q4_K_M.gguf
  ggufy pull hf.co/TheBloke/Llama-2-7B-GGUF`,
		Args: minimumArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(cmd, args, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Discard cached and partial copies and download again")

	return cmd
}

func runPull(cmd *cobra.Command, refs []string, force bool) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	for _, ref := range refs {
		res, err := s.orch.Resolve(cmd.Context(), s.env, ref, s.cfg.Token, force)
		if err != nil {
			return err
		}
		if res.CacheHit {
			logger.Debug("already cached", logger.Fields{"reference": res.Reference.String()})
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.LocalPath)
	}
	return nil
}
