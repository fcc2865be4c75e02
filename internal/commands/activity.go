package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/grassjelly/internal/activity"
)

func newActivityCommand(o *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the change log of a group",
		Args:  cobra.NoArgs,
		RunE: withEnv(o, func(cmd *cobra.Command, _ []string, e *env) error {
			entries, err := activity.Read(e.cfg.Store.Dir)
			if err != nil {
				return err
			}
			if !all {
				name, err := e.group()
				if err != nil {
					return err
				}
				entries = activity.ForGroup(entries, name)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No activity yet.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tGROUP\tACTION\tDETAILS\tEXPENSES")
			for _, a := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					a.Timestamp.Local().Format(time.DateTime), a.Group, a.Action, a.Details, strings.Join(a.ExpenseIDs, ","))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "show every group")
	return cmd
}
