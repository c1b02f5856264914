package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/models"
)

func newMemberCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage members",
	}
	cmd.AddCommand(newMemberAddCommand(opts))
	return cmd
}

func newMemberAddCommand(opts *options) *cobra.Command {
	var member models.Member

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member, or update the name and email of an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if member.ID <= 0 {
				return errors.New("--id must be a positive number")
			}
			member.Name = strings.TrimSpace(member.Name)
			if member.Name == "" {
				return errors.New("--name must not be empty")
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.UpsertMember(cmd.Context(), &member); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "member %d: %s\n", member.ID, member.Name)
			return nil
		},
	}

	cmd.Flags().Int64Var(&member.ID, "id", 0, "member ID (required)")
	cmd.Flags().StringVar(&member.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&member.Email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
