package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/grassjelly/internal/buildinfo"
	"github.com/cleared-dev/grassjelly/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "grassjelly",
		Short:   "Shared expense ledger for groups",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "path to the config file")
	rootCmd.PersistentFlags().StringVarP(&opts.groupName, "group", "g", "", "group to operate on (defaults to default_group)")

	rootCmd.AddCommand(
		newInitCommand(),
		newGroupCommand(opts),
		newParticipantCommand(opts),
		newBillCommand(opts),
		newExpenseCommand(opts),
		newBalancesCommand(opts),
		newReportCommand(opts),
		newActivityCommand(opts),
		newImportCommand(opts),
		newServeCommand(opts),
	)

	return rootCmd
}
