package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/ikolcov/learnit/internal/auth"
	"github.com/ikolcov/learnit/internal/config"
	"github.com/ikolcov/learnit/internal/models"
)

const (
	envFileFlag = "env-file"
	userFlag    = "user"
	ttlFlag     = "ttl"
)

var tokenFlags = map[string]cobraflags.Flag{
	envFileFlag: &cobraflags.StringFlag{
		Name:  envFileFlag,
		Value: ".env",
		Usage: "File with environment variables loaded before the process environment",
	},
	userFlag: &cobraflags.StringFlag{
		Name:  userFlag,
		Value: "",
		Usage: "User id to issue the token for (required)",
	},
	ttlFlag: &cobraflags.StringFlag{
		Name:  ttlFlag,
		Value: "1h",
		Usage: "Token lifetime, 0 for a token that never expires",
	},
}

func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an access token for a user id",
		Long: `Print an access token signed with ACCESS_TOKEN_SECRET.

Intended for local development: production tokens are issued by the
authentication service.

Example:
  learnit token --user 64b7f0c2e4b0a1a2b3c4d5e6 --ttl 24h`,
		RunE: tokenCommand,
	}

	cobraflags.RegisterMap(cmd, tokenFlags)
	return cmd
}

func tokenCommand(cmd *cobra.Command, _ []string) error {
	userId := tokenFlags[userFlag].GetString()
	if userId == "" {
		return errors.New("--user is required")
	}
	ttl, err := time.ParseDuration(tokenFlags[ttlFlag].GetString())
	if err != nil {
		return fmt.Errorf("parse --ttl: %w", err)
	}

	cfg, err := config.Load(tokenFlags[envFileFlag].GetString())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	token, err := auth.NewVerifier(cfg.AccessTokenSecret).Issue(models.UserID(userId), ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
