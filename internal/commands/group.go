package commands

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

func newGroupCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}
	cmd.AddCommand(
		newGroupCreateCommand(opts),
		newGroupShowCommand(opts),
		newGroupAddMemberCommand(opts),
	)
	return cmd
}

func newGroupCreateCommand(opts *options) *cobra.Command {
	var name, currency string
	var members []int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group of existing members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if currency == "" {
				currency = opts.cfg.DefaultCurrency
			}
			code, err := money.NormalizeCurrency(currency)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				return errors.New("--members must list at least one member ID")
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			group := &models.Group{Name: name, Currency: code, MemberIDs: members}
			if err := store.CreateGroup(cmd.Context(), group); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), group.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "group name (required)")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency (default: DEFAULT_CURRENCY from config)")
	cmd.Flags().Int64SliceVar(&members, "members", nil, "member IDs in display order, e.g. 1,2,3")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newGroupShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <group-id>",
		Short: "Print a group and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			group, err := store.GetGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			members, err := store.GetMembers(cmd.Context(), group.MemberIDs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", group.Name, group.Currency)
			fmt.Fprintf(out, "id: %s\n\n", group.ID)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL")
			for _, id := range group.MemberIDs {
				m, ok := members[id]
				if !ok {
					m = &models.Member{ID: id}
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", m.ID, m.Name, m.Email)
			}
			return w.Flush()
		},
	}
}

func newGroupAddMemberCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add-member <group-id> <member-id>",
		Short: "Append an existing member to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || userID <= 0 {
				return fmt.Errorf("invalid member ID %q", args[1])
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.AddGroupMember(cmd.Context(), args[0], userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "member %d added to %s\n", userID, args[0])
			return nil
		},
	}
}
