package gitops

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Committer records changes under Dir as git commits with a fixed identity.
type Committer struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// EnsureRepo runs git init in c.Dir unless it already is a repository.
func (c *Committer) EnsureRepo() error {
	if IsRepo(c.Dir) {
		return nil
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("creating repo dir: %w", err)
	}
	if _, err := c.git("init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// Commit stages paths (relative to c.Dir, deletions included) and commits
// them. It returns the short hash, or "" when there was nothing to commit.
func (c *Committer) Commit(message string, paths ...string) (string, error) {
	if err := c.EnsureRepo(); err != nil {
		return "", err
	}

	add := append([]string{"add", "-A", "--"}, paths...)
	if _, err := c.git(add...); err != nil {
		return "", fmt.Errorf("git add: %w", err)
	}

	// diff --cached --quiet exits 1 when something is staged.
	if _, err := c.git("diff", "--cached", "--quiet"); err == nil {
		return "", nil
	}

	if _, err := c.git("commit", "--quiet", "-m", message); err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}

	out, err := c.git("rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (c *Committer) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME="+c.AuthorName,
		"GIT_AUTHOR_EMAIL="+c.AuthorEmail,
		"GIT_COMMITTER_NAME="+c.AuthorName,
		"GIT_COMMITTER_EMAIL="+c.AuthorEmail,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return string(out), nil
}
