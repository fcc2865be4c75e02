package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/grassjelly/internal/config"
	"github.com/cleared-dev/grassjelly/internal/group"
)

func newGroupCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Create, list and delete groups",
	}
	cmd.AddCommand(
		newGroupCreateCommand(o),
		newGroupListCommand(o),
		newGroupDeleteCommand(o),
		newGroupUseCommand(o),
	)
	return cmd
}

func newGroupCreateCommand(o *rootOptions) *cobra.Command {
	var use bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty group",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(o, func(cmd *cobra.Command, args []string, e *env) error {
			name, err := e.svc.CreateGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created group %q\n", name)
			if use || e.cfg.DefaultGroup == "" {
				return setDefaultGroup(cmd, o.configPath, name)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&use, "use", false, "make the new group the default")
	return cmd
}

func newGroupListCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups; the default is marked with *",
		Args:  cobra.NoArgs,
		RunE: withEnv(o, func(cmd *cobra.Command, _ []string, e *env) error {
			names, err := e.svc.ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No groups yet.")
				return nil
			}
			for _, n := range names {
				mark := " "
				if n == e.cfg.DefaultGroup {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, n)
			}
			return nil
		}),
	}
}

func newGroupDeleteCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a group and its whole history",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(o, func(cmd *cobra.Command, args []string, e *env) error {
			if err := e.svc.DeleteGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %q\n", args[0])
			return nil
		}),
	}
}

func newGroupUseCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Select the group used when --group is not given",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(o, func(cmd *cobra.Command, args []string, e *env) error {
			if err := e.svc.View(cmd.Context(), args[0], func(*group.Group) error { return nil }); err != nil {
				return err
			}
			return setDefaultGroup(cmd, o.configPath, args[0])
		}),
	}
}

// setDefaultGroup rewrites default_group in the config file, creating the
// file when it does not exist yet.
func setDefaultGroup(cmd *cobra.Command, path, name string) error {
	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return err
	}
	cfg.DefaultGroup = name
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Now using group %q\n", name)
	return nil
}
