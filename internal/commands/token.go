package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

func newTokenCommand(opts *options) *cobra.Command {
	var member models.Member

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a member (development only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := auth.NewJWTManager(opts.cfg.JWTSecret, opts.cfg.TokenTTL).Generate(&member)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&member.ID, "user", 0, "member ID (required)")
	cmd.Flags().StringVar(&member.Email, "email", "", "email claim")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
