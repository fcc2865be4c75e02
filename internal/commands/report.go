package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/grassjelly/internal/group"
	"github.com/cleared-dev/grassjelly/internal/report"
)

func newBalancesCommand(o *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show who owes whom",
		Args:  cobra.NoArgs,
		RunE: withGroup(o, func(cmd *cobra.Command, _ []string, e *env, groupName string) error {
			opts, err := e.reportOptions()
			if err != nil {
				return err
			}
			return e.svc.View(cmd.Context(), groupName, func(g *group.Group) error {
				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(g.NetBalances())
				}
				s := report.Build(g, opts)
				if len(s.Owed) == 0 {
					fmt.Fprintln(out, "Everyone is settled up.")
					return nil
				}
				for _, d := range s.Owed {
					fmt.Fprintf(out, "%s owes %s %s\n", d.Ower, d.OwedTo, d.Display)
				}
				return nil
			})
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full balance matrix as JSON")
	return cmd
}

func newReportCommand(o *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the balances and expense history",
		Args:  cobra.NoArgs,
		RunE: withGroup(o, func(cmd *cobra.Command, _ []string, e *env, groupName string) error {
			write, err := reportWriter(format)
			if err != nil {
				return err
			}
			opts, err := e.reportOptions()
			if err != nil {
				return err
			}

			var s report.Summary
			if err := e.svc.View(cmd.Context(), groupName, func(g *group.Group) error {
				s = report.Build(g, opts)
				return nil
			}); err != nil {
				return err
			}

			if output == "" || output == "-" {
				return write(cmd.OutOrStdout(), s)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating report file: %w", err)
			}
			if err := write(f, s); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing report file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		}),
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func reportWriter(format string) (func(io.Writer, report.Summary) error, error) {
	switch format {
	case "markdown", "md":
		return report.WriteMarkdown, nil
	case "csv":
		return report.WriteCSV, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want markdown or csv)", format)
	}
}
