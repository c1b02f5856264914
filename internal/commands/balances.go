package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/money"
)

func newBalancesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balances <group-id>",
		Short: "Replay a group's history and print every member's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			group, err := store.GetGroup(ctx, args[0])
			if err != nil {
				return err
			}
			expenses, err := store.ListExpensesByGroup(ctx, group.ID)
			if err != nil {
				return err
			}
			settlements, err := store.ListSettlementsByGroup(ctx, group.ID)
			if err != nil {
				return err
			}
			members, err := store.GetMembers(ctx, group.MemberIDs)
			if err != nil {
				return err
			}

			balances, err := calculator.CalculateGroupBalances(group.MemberIDs, expenses, settlements)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "ID\tNAME\tPAID\tOWED\tNET\t")
			for _, b := range balances {
				var name string
				if m, ok := members[b.UserID]; ok {
					name = m.Name
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n", b.UserID, name,
					money.Format(b.TotalPaid, group.Currency),
					money.Format(b.TotalOwed, group.Currency),
					money.Format(b.NetBalance, group.Currency),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			debts := calculator.SimplifyDebts(balances)
			if len(debts) == 0 {
				fmt.Fprintln(out, "\nall settled up")
				return nil
			}
			fmt.Fprintln(out, "\nsuggested settlements:")
			for _, d := range debts {
				fmt.Fprintf(out, "  %d -> %d  %s %s\n", d.From, d.To, money.Format(d.Amount, group.Currency), group.Currency)
			}
			return nil
		},
	}
}
