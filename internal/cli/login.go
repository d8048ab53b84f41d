package cli

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/ggufy/internal/logger"
	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/spf13/cobra"
)

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a hub access token",
		Long: `Store an access token in the ggufy configuration file.
The token is sent with every hub request. Without --token it is read from stdin.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token (read from stdin when omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, token string) error {
	env, cfg, err := loadEnvironment()
	if err != nil {
		return err
	}

	if token == "" {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Token: ")
		if token, err = readLine(cmd.InOrStdin()); err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.ErrNoToken
	}

	cfg.Token = token
	if err := cfg.SaveConfig(env.ConfigPath()); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	logger.Success("Token saved", logger.Fields{"path": env.ConfigPath()})
	return nil
}
