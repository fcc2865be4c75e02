package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/grassjelly/internal/activity"
	"github.com/cleared-dev/grassjelly/internal/config"
	"github.com/cleared-dev/grassjelly/internal/gitops"
	"github.com/cleared-dev/grassjelly/internal/group"
	"github.com/cleared-dev/grassjelly/internal/report"
	"github.com/cleared-dev/grassjelly/internal/store"
	"github.com/cleared-dev/grassjelly/internal/tracker"
)

type rootOptions struct {
	configPath string
	groupName  string
}

// env is everything a command needs once the config has been resolved.
type env struct {
	cfg  *config.Config
	log  *slog.Logger
	repo store.Repository
	svc  *tracker.Service
	opts *rootOptions
}

func (o *rootOptions) open(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	policy, err := group.ParseRemovalPolicy(cfg.Ledger.RemovalPolicy)
	if err != nil {
		return nil, err
	}

	storeOpts := store.Options{
		Backend:     store.Backend(cfg.Store.Backend),
		Dir:         cfg.Store.Dir,
		RedisAddr:   cfg.Store.RedisAddr,
		RedisPrefix: cfg.Store.RedisPrefix,
		PostgresDSN: cfg.Store.PostgresDSN,
	}
	if cfg.Git.AutoCommit {
		storeOpts.Git = &gitops.Committer{
			Dir:         cfg.Store.Dir,
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
		}
	}
	repo, err := store.Open(cmd.Context(), storeOpts)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	trackerOpts := tracker.Options{RemovalPolicy: policy, Logger: log}
	if cfg.Store.Dir != "" {
		trackerOpts.Activity = activity.NewLog(cfg.Store.Dir)
	}

	return &env{
		cfg:  cfg,
		log:  log,
		repo: repo,
		svc:  tracker.New(repo, trackerOpts),
		opts: o,
	}, nil
}

func (e *env) Close() {
	if err := e.repo.Close(); err != nil {
		e.log.Warn("closing store", "error", err)
	}
}

// group returns the group selected by --group or the config default.
func (e *env) group() (string, error) {
	name := e.opts.groupName
	if name == "" {
		name = e.cfg.DefaultGroup
	}
	if name == "" {
		return "", errors.New("no group selected: pass --group or run `grassjelly group use <name>`")
	}
	return name, nil
}

func (e *env) reportOptions() (report.Options, error) {
	money, err := report.NewFormatter(e.cfg.Report.Currency)
	if err != nil {
		return report.Options{}, err
	}
	loc, err := e.cfg.Location()
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{Formatter: money, Location: loc}, nil
}

// withEnv opens the environment for the duration of run.
func withEnv(o *rootOptions, run func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := o.open(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		return run(cmd, args, e)
	}
}

// withGroup is withEnv for commands that act on the selected group.
func withGroup(o *rootOptions, run func(cmd *cobra.Command, args []string, e *env, groupName string) error) func(*cobra.Command, []string) error {
	return withEnv(o, func(cmd *cobra.Command, args []string, e *env) error {
		name, err := e.group()
		if err != nil {
			return err
		}
		return run(cmd, args, e, name)
	})
}
