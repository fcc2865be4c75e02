package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cleared-dev/grassjelly/internal/gitops"
	"github.com/cleared-dev/grassjelly/internal/group"
)

// groupsDir is the subdirectory holding one JSON file per group.
const groupsDir = "groups"

// FileStore keeps each group in <dir>/groups/<escaped name>.json.
type FileStore struct {
	dir string
	git *gitops.Committer
}

// NewFileStore creates the store directory if needed. git may be nil.
func NewFileStore(dir string, git *gitops.Committer) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, groupsDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &FileStore{dir: dir, git: git}, nil
}

func (s *FileStore) relPath(name string) string {
	return filepath.Join(groupsDir, url.PathEscape(name)+".json")
}

// Load reads a group snapshot.
func (s *FileStore) Load(_ context.Context, name string) (group.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, s.relPath(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return group.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return group.Snapshot{}, fmt.Errorf("reading group %q: %w", name, err)
	}
	return decode(name, data)
}

// Save writes the snapshot through a temp file and rename, then commits it
// when git is enabled.
func (s *FileStore) Save(_ context.Context, snap group.Snapshot) error {
	data, err := group.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	rel := s.relPath(snap.Name)
	path := filepath.Join(s.dir, rel)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing group %q: %w", snap.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing group %q: %w", snap.Name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing group %q: %w", snap.Name, err)
	}
	return s.commit("save: "+snap.Name, rel)
}

// Delete removes a group file.
func (s *FileStore) Delete(_ context.Context, name string) error {
	rel := s.relPath(name)
	err := os.Remove(filepath.Join(s.dir, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting group %q: %w", name, err)
	}
	return s.commit("delete: "+name, rel)
}

// List returns the stored group names, sorted.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, groupsDir))
	if err != nil {
		return nil, fmt.Errorf("reading store dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		base, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || strings.HasPrefix(base, ".") {
			continue
		}
		name, err := url.PathUnescape(base)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) commit(message, rel string) error {
	if s.git == nil {
		return nil
	}
	if _, err := s.git.Commit(message, rel); err != nil {
		return fmt.Errorf("committing %s: %w", rel, err)
	}
	return nil
}
