package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/grassjelly/internal/config"
	"github.com/cleared-dev/grassjelly/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var (
		backend string
		policy  string
		useGit  bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default()
			cfg.Store.Backend = backend
			cfg.Ledger.RemovalPolicy = policy
			cfg.Git.AutoCommit = useGit
			if err := runInit(absDir, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized grassjelly ledger at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "file", "store backend: file, redis or postgres")
	cmd.Flags().StringVar(&policy, "removal-policy", "strict", "participant removal policy: strict or lenient")
	cmd.Flags().BoolVar(&useGit, "git", false, "commit every change to a git repository")

	return cmd
}

func runInit(dir string, cfg *config.Config) error {
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	for _, d := range []string{"groups", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}

	gitignore := "logs/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if !cfg.Git.AutoCommit {
		return nil
	}
	git := &gitops.Committer{Dir: dir, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
	if _, err := git.Commit("init: grassjelly ledger", config.FileName, ".gitignore"); err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	return nil
}
