// Package store persists group snapshots. The core never does I/O; the
// tracker loads a snapshot by group name, applies one operation and saves
// the result through a Repository.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/grassjelly/internal/gitops"
	"github.com/cleared-dev/grassjelly/internal/group"
)

// ErrNotFound is returned when no group is stored under a name.
var ErrNotFound = errors.New("group not found")

// Repository loads and saves group snapshots keyed by group name.
type Repository interface {
	Load(ctx context.Context, name string) (group.Snapshot, error)
	Save(ctx context.Context, s group.Snapshot) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Backend names a Repository implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend     Backend
	Dir         string
	RedisAddr   string
	RedisPrefix string
	PostgresDSN string
	// Git, when set, commits the file store after every change.
	Git *gitops.Committer
}

// Open returns the Repository described by opts.
func Open(ctx context.Context, opts Options) (Repository, error) {
	switch Backend(strings.ToLower(string(opts.Backend))) {
	case "", BackendFile:
		return NewFileStore(opts.Dir, opts.Git)
	case BackendRedis:
		return DialRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
	case BackendPostgres:
		return ConnectPostgres(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

func decode(name string, data []byte) (group.Snapshot, error) {
	s, err := group.DecodeSnapshot(data)
	if err != nil {
		return group.Snapshot{}, fmt.Errorf("decoding group %q: %w", name, err)
	}
	if s.Name != name {
		return group.Snapshot{}, fmt.Errorf("decoding group %q: snapshot is named %q", name, s.Name)
	}
	return s, nil
}
