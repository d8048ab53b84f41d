package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/glorpus-work/ggufy/internal/logger"
	"github.com/glorpus-work/ggufy/pkg/config"
	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/fsutil"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change ggufy settings",
		Long: `Read and write the YAML settings file kept in the config directory.
Keys use the names shown by "ggufy config show", for example endpoint,
http_timeout, latest_order or engine.command.`,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Replace an existing settings file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print every setting; the token is masked",
			Args:  exactArgs(0),
			RunE:  showConfig,
		},
		&cobra.Command{
			Use:     "get KEY",
			Short:   "Print one setting",
			Example: "  ggufy config get endpoint",
			Args:    exactArgs(1),
			RunE:    getConfig,
		},
		&cobra.Command{
			Use:     "set KEY VALUE",
			Short:   "Change one setting",
			Example: "  ggufy config set latest_order version\n  ggufy config set engine.command /opt/llama.cpp/llama-cli",
			Args:    exactArgs(2),
			RunE:    setConfig,
		},
		initCmd,
	)

	return cmd
}

func showConfig(cmd *cobra.Command, _ []string) error {
	env, cfg, err := loadEnvironment()
	if err != nil {
		return err
	}

	values := cfg.ToMap()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	for _, k := range keys {
		v := values[k]
		if v == "" {
			v = NoValue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", k, v)
	}
	_, _ = fmt.Fprintln(tw)
	_, _ = fmt.Fprintf(tw, "config file\t%s\n", env.ConfigPath())
	_, _ = fmt.Fprintf(tw, "cache directory\t%s\n", env.CacheDir)
	return tw.Flush()
}

func getConfig(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadEnvironment()
	if err != nil {
		return err
	}

	value, err := cfg.GetValue(args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func setConfig(_ *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	env, cfg, err := loadEnvironment()
	if err != nil {
		return err
	}

	if err := cfg.SetValue(key, value); err != nil {
		return fmt.Errorf("cannot set %s: %w", key, err)
	}
	if err := cfg.SaveConfig(env.ConfigPath()); err != nil {
		return err
	}

	logger.Success("Setting saved", logger.Fields{"key": key, "value": value, "file": env.ConfigPath()})
	return nil
}

func initConfig(_ *cobra.Command, force bool) error {
	env, _, err := loadEnvironment()
	if err != nil {
		return err
	}

	path := env.ConfigPath()
	if fsutil.FileExists(path) && !force {
		return fmt.Errorf("%s: %w (use --force to replace it)", path, errors.ErrConfigFileExists)
	}
	if err := config.DefaultConfig().SaveConfig(path); err != nil {
		return err
	}

	logger.Success("Settings file written", logger.Fields{"file": path})
	return nil
}
