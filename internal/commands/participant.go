package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/grassjelly/internal/group"
)

func newParticipantCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "participant",
		Aliases: []string{"friend"},
		Short:   "Manage the people in a group",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>...",
			Short: "Register participants",
			Args:  cobra.MinimumNArgs(1),
			RunE: withGroup(o, func(cmd *cobra.Command, args []string, e *env, groupName string) error {
				for _, name := range args {
					canon, added, err := e.svc.AddParticipant(cmd.Context(), groupName, name)
					if err != nil {
						return err
					}
					if added {
						fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", canon)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "%s is already in the group\n", canon)
					}
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove <name>",
			Short: "Unregister a participant",
			Args:  cobra.ExactArgs(1),
			RunE: withGroup(o, func(cmd *cobra.Command, args []string, e *env, groupName string) error {
				if err := e.svc.RemoveParticipant(cmd.Context(), groupName, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List participants in registration order",
			Args:  cobra.NoArgs,
			RunE: withGroup(o, func(cmd *cobra.Command, _ []string, e *env, groupName string) error {
				return e.svc.View(cmd.Context(), groupName, func(g *group.Group) error {
					names := g.Participants()
					if len(names) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No participants yet.")
					}
					for _, n := range names {
						fmt.Fprintln(cmd.OutOrStdout(), n)
					}
					return nil
				})
			}),
		},
	)
	return cmd
}
