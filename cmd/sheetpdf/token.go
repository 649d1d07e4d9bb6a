package main

import (
	"fmt"
	"time"

	"github.com/soderasen-au/go-common/util"
	"github.com/spf13/cobra"

	"github.com/soderasen-au/go-sheetpdf/server"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or verify bearer tokens for the HTTP endpoints",
	}

	var (
		name string
		ttl  time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue <subject>",
		Short: "Sign a token with server.jwt_secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := setup()
			if err != nil {
				return err
			}
			if cfg.Server.JwtSecret == "" {
				return fmt.Errorf("server.jwt_secret is not configured")
			}
			claims := server.NewClaims(cfg.Server.JwtIssuer, args[0], name, ttl)
			token, res := claims.Sign([]byte(cfg.Server.JwtSecret))
			if res != nil {
				return res
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nPayload:\n%s\n\nJWT:\nBearer %s\n\n", util.Jsonify(claims), token)
			return nil
		},
	}
	issue.Flags().StringVar(&name, "name", "", "Display name claim")
	issue.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	verify := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token against server.jwt_secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := setup()
			if err != nil {
				return err
			}
			claims, res := server.ParseToken(args[0], []byte(cfg.Server.JwtSecret), cfg.Server.JwtIssuer)
			if res != nil {
				return res
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nPayload:\n%s\n\n", util.Jsonify(claims))
			return nil
		},
	}

	cmd.AddCommand(issue, verify)
	return cmd
}
