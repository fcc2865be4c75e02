package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/grassjelly/internal/group"
	"github.com/cleared-dev/grassjelly/internal/report"
)

func newExpenseCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record, cancel and list settled expenses",
	}
	cmd.AddCommand(
		newExpenseAddCommand(o),
		newExpenseCancelCommand(o),
		newExpenseListCommand(o),
	)
	return cmd
}

func newExpenseAddCommand(o *rootOptions) *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense split equally and update balances",
		Args:  cobra.NoArgs,
		RunE: withGroup(o, func(cmd *cobra.Command, _ []string, e *env, groupName string) error {
			b, err := f.bill()
			if err != nil {
				return err
			}
			expenseID, err := e.svc.RecordExpense(cmd.Context(), groupName, b)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s: %q (%s)\n", expenseID, b.Description, b.Amount.StringFixed(2))
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func newExpenseCancelCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a settled expense, reversing its balance changes",
		Args:  cobra.ExactArgs(1),
		RunE: withGroup(o, func(cmd *cobra.Command, args []string, e *env, groupName string) error {
			if err := e.svc.CancelExpense(cmd.Context(), groupName, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s\n", args[0])
			return nil
		}),
	}
}

func newExpenseListCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List settled expenses in recording order",
		Args:  cobra.NoArgs,
		RunE: withGroup(o, func(cmd *cobra.Command, _ []string, e *env, groupName string) error {
			opts, err := e.reportOptions()
			if err != nil {
				return err
			}
			return e.svc.View(cmd.Context(), groupName, func(g *group.Group) error {
				s := report.Build(g, opts)
				if len(s.History) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No expenses yet.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tPAID BY\tAMOUNT\tDESCRIPTION\tSPLIT AMONG")
				for _, r := range s.History {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Date, r.PaidBy, r.Amount, r.Description, strings.Join(r.SplitAmong, ", "))
				}
				return tw.Flush()
			})
		}),
	}
}
