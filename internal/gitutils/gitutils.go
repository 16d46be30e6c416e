// Package gitutils shells out to the git binary for the handful of
// operations the repository sanitizer needs. The engine never touches
// this package.
package gitutils

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrEmptyCommit means a commit was requested but nothing changed.
var ErrEmptyCommit = errors.New("nothing to commit, working tree clean")

// Git runs git commands rooted at a repository working tree.
type Git struct {
	Root string
}

// New returns a Git rooted at the given working tree.
func New(root string) *Git {
	return &Git{Root: root}
}

func (g *Git) run(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", g.Root}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// TrackedFiles lists repo-relative paths of all files git tracks.
func (g *Git) TrackedFiles() ([]string, error) {
	out, err := g.run("ls-files", "-z")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, p := range strings.Split(out, "\x00") {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// IsClean reports whether the working tree has no uncommitted changes
// and no untracked files.
func (g *Git) IsClean() (bool, error) {
	out, err := g.run("status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// BranchExists reports whether a local branch exists.
func (g *Git) BranchExists(branch string) (bool, error) {
	_, err := g.run("rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	if err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreatePRBranch creates a timestamped branch off target that a pull
// request can be opened from, and returns its name.
func (g *Git) CreatePRBranch(target string) (string, error) {
	name := target + "-pr-" + time.Now().Format("2006/01/02_15.04.05")
	if _, err := g.run("branch", name, target); err != nil {
		return "", err
	}
	return name, nil
}

// CommitOnBranch points HEAD at the branch without touching the working
// tree, stages everything including removals, and commits. Returns
// ErrEmptyCommit if the commit would be empty.
func (g *Git) CommitOnBranch(branch, message string) error {
	if _, err := g.run("symbolic-ref", "HEAD", "refs/heads/"+branch); err != nil {
		return err
	}
	if _, err := g.run("add", "--all", "--force"); err != nil {
		return err
	}
	out, err := g.run("commit", "-m", message)
	if err != nil {
		if strings.Contains(out, "nothing to commit") {
			return ErrEmptyCommit
		}
		return err
	}
	return nil
}
