package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/grassjelly/internal/group"
	"github.com/cleared-dev/grassjelly/internal/importer"
	"github.com/cleared-dev/grassjelly/internal/model"
	"github.com/cleared-dev/grassjelly/internal/tracker"
)

// entryFlags are shared by `bill add` and `expense add`.
type entryFlags struct {
	description string
	amount      string
	paidBy      string
	split       []string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "what the money was spent on (required)")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "total amount, at most 2 decimal places (required)")
	cmd.Flags().StringVarP(&f.paidBy, "paid-by", "p", "", "participant who paid (required)")
	cmd.Flags().StringSliceVarP(&f.split, "split", "s", nil, "comma separated participants sharing the cost (required)")
	for _, name := range []string{"description", "amount", "paid-by", "split"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (f *entryFlags) bill() (model.Bill, error) {
	amount, err := tracker.ParseAmount(f.amount)
	if err != nil {
		return model.Bill{}, err
	}
	return model.Bill{
		Description: f.description,
		Amount:      amount,
		PaidBy:      f.paidBy,
		SplitAmong:  f.split,
	}, nil
}

func newBillCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Stage bills and commit them together",
	}
	cmd.AddCommand(
		newBillAddCommand(o),
		newBillListCommand(o),
		newBillDiscardCommand(o),
		newBillClearCommand(o),
		newBillCommitCommand(o),
		newBillImportCommand(o),
	)
	return cmd
}

func newBillAddCommand(o *rootOptions) *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Stage a bill; balances are unchanged until commit",
		Args:  cobra.NoArgs,
		RunE: withGroup(o, func(cmd *cobra.Command, _ []string, e *env, groupName string) error {
			b, err := f.bill()
			if err != nil {
				return err
			}
			if err := e.svc.StageBills(cmd.Context(), groupName, b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Staged %q (%s)\n", b.Description, b.Amount.StringFixed(2))
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func newBillListCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending bills",
		Args:  cobra.NoArgs,
		RunE: withGroup(o, func(cmd *cobra.Command, _ []string, e *env, groupName string) error {
			return e.svc.View(cmd.Context(), groupName, func(g *group.Group) error {
				bills := g.PendingBills()
				if len(bills) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No pending bills.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tDESCRIPTION\tAMOUNT\tPAID BY\tSPLIT AMONG")
				for i, b := range bills {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, b.Description, b.Amount.StringFixed(2), b.PaidBy, strings.Join(b.SplitAmong, ", "))
				}
				return tw.Flush()
			})
		}),
	}
}

func newBillDiscardCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "discard <n>",
		Short: "Drop the n-th pending bill (as numbered by bill list)",
		Args:  cobra.ExactArgs(1),
		RunE: withGroup(o, func(cmd *cobra.Command, args []string, e *env, groupName string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bill number %q: %w", args[0], err)
			}
			if err := e.svc.DiscardBill(cmd.Context(), groupName, n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Discarded bill %d\n", n)
			return nil
		}),
	}
}

func newBillClearCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every pending bill",
		Args:  cobra.NoArgs,
		RunE: withGroup(o, func(cmd *cobra.Command, _ []string, e *env, groupName string) error {
			n, err := e.svc.ClearBills(cmd.Context(), groupName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d pending bills\n", n)
			return nil
		}),
	}
}

func newBillCommitCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Settle every pending bill as expenses, all or nothing",
		Args:  cobra.NoArgs,
		RunE: withGroup(o, func(cmd *cobra.Command, _ []string, e *env, groupName string) error {
			ids, err := e.svc.CommitBills(cmd.Context(), groupName)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending bills.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Committed %d bills: %s\n", len(ids), strings.Join(ids, ", "))
			return nil
		}),
	}
}

func newBillImportCommand(o *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Stage bills from a CSV file (description,amount,paid_by,split_among)",
		Args:  cobra.ExactArgs(1),
		RunE: withGroup(o, func(cmd *cobra.Command, args []string, e *env, groupName string) error {
			parser, err := importer.DefaultRegistry().Get(format)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()

			bills, err := parser.Parse(f)
			if err != nil {
				return err
			}
			if len(bills) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bills found.")
				return nil
			}
			if err := e.svc.StageBills(cmd.Context(), groupName, bills...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Staged %d bills from %s\n", len(bills), args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&format, "format", "csv", "file format: csv or tsv")
	return cmd
}
