package cli

import (
	"github.com/glorpus-work/ggufy/pkg/config"
	"github.com/glorpus-work/ggufy/pkg/engine"
	"github.com/spf13/cobra"
)

// newEngine builds the inference engine for "run". Tests replace it.
var newEngine = func(cmd *cobra.Command, cfg config.EngineConfig) engine.Engine {
	e := engine.NewExecEngine(cfg.Command, cfg.Args)
	e.Stdin = cmd.InOrStdin()
	e.Stdout = cmd.OutOrStdout()
	e.Stderr = cmd.ErrOrStderr()
	return e
}

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var (
		contextSize int
		maxTokens   int
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "run REFERENCE [-- ENGINE_ARGS...]",
		Short: "Run a model with the configured inference engine",
		Long: `Resolve a model reference like "pull" does, then start the inference
engine configured under settings.engine on the cached file. Arguments after
"--" are passed to the engine unchanged.`,
		Args: minimumArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], args[1:], contextSize, maxTokens, force)
		},
	}

	cmd.Flags().IntVarP(&contextSize, "context-size", "c", 0, "Context size in tokens (default from config)")
	cmd.Flags().IntVarP(&maxTokens, "max-tokens", "t", 0, "Maximum number of tokens to generate (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Download the model again before running it")

	return cmd
}

func runRun(cmd *cobra.Command, ref string, extra []string, contextSize, maxTokens int, force bool) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.orch.Resolve(cmd.Context(), s.env, ref, s.cfg.Token, force)
	if err != nil {
		return err
	}

	engineCfg := s.cfg.Settings.Engine
	if contextSize <= 0 {
		contextSize = engineCfg.ContextSize
	}
	if maxTokens <= 0 {
		maxTokens = engineCfg.MaxTokens
	}

	return newEngine(cmd, engineCfg).Run(cmd.Context(), engine.Request{
		ModelPath:   res.LocalPath,
		ContextSize: contextSize,
		MaxTokens:   maxTokens,
		ExtraArgs:   extra,
	})
}
