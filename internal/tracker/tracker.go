// Package tracker runs ledger operations against stored groups. Each call
// loads the group snapshot, applies one operation and saves the result only
// when the operation succeeded.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cleared-dev/grassjelly/internal/activity"
	"github.com/cleared-dev/grassjelly/internal/group"
	"github.com/cleared-dev/grassjelly/internal/store"
)

// Recorder receives an entry for every successful mutation.
type Recorder interface {
	Record(entries ...activity.Entry) error
}

// Options configures a Service.
type Options struct {
	RemovalPolicy group.RemovalPolicy
	// Clock stamps new expenses; defaults to time.Now.
	Clock    func() time.Time
	Activity Recorder
	Logger   *slog.Logger
}

// Service is safe for concurrent use. Mutations of the same group are
// serialized; different groups proceed in parallel.
type Service struct {
	repo     store.Repository
	log      *slog.Logger
	activity Recorder
	opts     []group.Option
	locks    keyedMutex
}

// New returns a Service backed by repo.
func New(repo store.Repository, o Options) *Service {
	s := &Service{
		repo:     repo,
		log:      o.Logger,
		activity: o.Activity,
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if o.RemovalPolicy != "" {
		s.opts = append(s.opts, group.WithRemovalPolicy(o.RemovalPolicy))
	}
	if o.Clock != nil {
		s.opts = append(s.opts, group.WithClock(o.Clock))
	}
	return s
}

// GroupName trims a group name and rejects empty ones. Names starting with
// "." are rejected too, since stores treat them as hidden.
func GroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", group.ValidationError{Field: "group", Reason: "name must not be empty"}
	}
	if strings.HasPrefix(name, ".") {
		return "", group.ValidationError{Field: "group", Reason: "name must not start with \".\""}
	}
	return name, nil
}

// CreateGroup stores a new empty group.
func (s *Service) CreateGroup(ctx context.Context, name string) (string, error) {
	name, err := GroupName(name)
	if err != nil {
		return "", err
	}
	unlock := s.locks.lock(name)
	defer unlock()

	if _, err := s.repo.Load(ctx, name); err == nil {
		return "", group.DuplicateError{Kind: "group", Key: name}
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	g := group.New(name, s.opts...)
	if err := s.commit(ctx, g, activity.NewEntry(name, activity.ActionGroupCreate, "")); err != nil {
		return "", err
	}
	s.log.Info("group created", "group", name)
	return name, nil
}

// DeleteGroup removes a stored group with its whole history.
func (s *Service) DeleteGroup(ctx context.Context, name string) error {
	unlock := s.locks.lock(name)
	defer unlock()

	if err := s.repo.Delete(ctx, name); err != nil {
		return notFound(name, err)
	}
	s.record(activity.NewEntry(name, activity.ActionGroupDelete, ""))
	s.log.Info("group deleted", "group", name)
	return nil
}

// ListGroups returns the stored group names, sorted.
func (s *Service) ListGroups(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

// View loads a group for reading. Changes made by fn are not saved.
func (s *Service) View(ctx context.Context, name string, fn func(*group.Group) error) error {
	g, err := s.load(ctx, name)
	if err != nil {
		return err
	}
	return fn(g)
}

// Update loads a group, runs fn and saves the group if fn succeeds. The
// entries fn returns are appended to the activity log once the save
// succeeds.
func (s *Service) Update(ctx context.Context, name string, fn func(*group.Group) ([]activity.Entry, error)) error {
	unlock := s.locks.lock(name)
	defer unlock()

	g, err := s.load(ctx, name)
	if err != nil {
		return err
	}
	entries, err := fn(g)
	if err != nil {
		return err
	}
	return s.commit(ctx, g, entries...)
}

// Import stores groups built elsewhere, such as by the legacy importer.
// Existing groups are left untouched unless overwrite is set.
func (s *Service) Import(ctx context.Context, groups []*group.Group, overwrite bool) ([]string, error) {
	var imported []string
	for _, g := range groups {
		name := g.Name()
		err := func() error {
			if _, err := GroupName(name); err != nil {
				return err
			}
			unlock := s.locks.lock(name)
			defer unlock()
			if !overwrite {
				if _, err := s.repo.Load(ctx, name); err == nil {
					return group.DuplicateError{Kind: "group", Key: name}
				} else if !errors.Is(err, store.ErrNotFound) {
					return err
				}
			}
			details := fmt.Sprintf("imported %d expenses", len(g.History()))
			return s.commit(ctx, g, activity.NewEntry(name, activity.ActionGroupCreate, details))
		}()
		if err != nil {
			return imported, fmt.Errorf("importing group %q: %w", name, err)
		}
		imported = append(imported, name)
	}
	return imported, nil
}

func (s *Service) load(ctx context.Context, name string) (*group.Group, error) {
	snap, err := s.repo.Load(ctx, name)
	if err != nil {
		return nil, notFound(name, err)
	}
	g, err := group.Restore(snap, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("restoring group %q: %w", name, err)
	}
	return g, nil
}

// commit saves g and then records entries, so a failed save leaves no
// activity behind.
func (s *Service) commit(ctx context.Context, g *group.Group, entries ...activity.Entry) error {
	if err := s.repo.Save(ctx, g.Snapshot()); err != nil {
		return fmt.Errorf("saving group %q: %w", g.Name(), err)
	}
	s.record(entries...)
	return nil
}

// record never fails the operation; a lost activity entry is logged.
func (s *Service) record(entries ...activity.Entry) {
	if s.activity == nil || len(entries) == 0 {
		return
	}
	if err := s.activity.Record(entries...); err != nil {
		s.log.Warn("recording activity", "error", err)
	}
}

func notFound(name string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return group.NotFoundError{Kind: "group", Key: name}
	}
	return err
}
