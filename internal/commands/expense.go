package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/money"
)

func newExpenseCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Inspect recorded expenses",
	}
	cmd.AddCommand(newExpenseShowCommand(opts))
	return cmd
}

func newExpenseShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <expense-id>",
		Short: "Print an expense and its shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := store.GetExpense(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s paid by %d (%s)\n", money.Format(e.Amount, e.Currency), e.Currency, e.PayerID, e.SplitType)
			if e.Note != "" {
				fmt.Fprintf(out, "note: %s\n", e.Note)
			}
			fmt.Fprintf(out, "recorded by %d at %s\n", e.CreatedBy, time.Unix(e.CreatedAt, 0).UTC().Format(time.RFC3339))
			for _, s := range e.Shares {
				fmt.Fprintf(out, "  %d owes %s\n", s.UserID, money.Format(s.Amount, e.Currency))
			}
			return nil
		},
	}
}
