package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/grassjelly/internal/group"
	"github.com/cleared-dev/grassjelly/internal/importer"
)

func newImportCommand(o *rootOptions) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import every group from a legacy JSON data file",
		Long: `Import reads the single-file format of the earlier ledger (every
calculator in one JSON document). Expenses are replayed in order, so balances
are recomputed and every expense gets a fresh ID.`,
		Args: cobra.ExactArgs(1),
		RunE: withEnv(o, func(cmd *cobra.Command, args []string, e *env) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening legacy file: %w", err)
			}
			defer f.Close()

			loc, err := e.cfg.Location()
			if err != nil {
				return err
			}
			policy, err := group.ParseRemovalPolicy(e.cfg.Ledger.RemovalPolicy)
			if err != nil {
				return err
			}
			res, err := importer.ReadLegacy(f, loc, group.WithRemovalPolicy(policy))
			if err != nil {
				return err
			}
			for _, s := range res.Skipped {
				e.log.Warn("skipped legacy entry", "entry", s)
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", s)
			}

			names, err := e.svc.Import(cmd.Context(), res.Groups, overwrite)
			for _, n := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "Imported group %q\n", n)
			}
			if err != nil {
				return err
			}

			if res.Current != "" && e.cfg.DefaultGroup == "" {
				return setDefaultGroup(cmd, o.configPath, res.Current)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace groups that already exist")
	return cmd
}
