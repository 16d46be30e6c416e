// Package repo applies the sanitization engine to every tracked file in
// a working tree and decides whether anything is written or committed.
package repo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/repobee/sanitizer/internal/engine"
	"github.com/repobee/sanitizer/internal/format"
	"github.com/repobee/sanitizer/internal/gitutils"
	"github.com/repobee/sanitizer/internal/syntax"
)

// VCS is the slice of git the sanitizer needs. *gitutils.Git implements it.
type VCS interface {
	TrackedFiles() ([]string, error)
	IsClean() (bool, error)
	BranchExists(branch string) (bool, error)
	CreatePRBranch(target string) (string, error)
	CommitOnBranch(branch, message string) error
}

// Options controls one repository sanitization run.
type Options struct {
	Mode          engine.Mode
	TargetBranch  string
	CommitMessage string
	NoCommit      bool // write files, skip all VCS mutation
	Force         bool // bypass clean-tree and no-op-commit checks
	PRBranch      bool // commit to a timestamped branch off the target
	Jobs          int  // parallel file workers; <=0 means NumCPU
}

// Change is one pending file mutation, computed before anything is applied.
type Change struct {
	RelPath  string
	Decision engine.Decision
	Text     string
	FileMode fs.FileMode
}

// Summary describes what a successful run did.
type Summary struct {
	Written   int
	Deleted   int
	Skipped   int
	Branch    string
	Committed bool
}

// Sanitizer orchestrates engine runs over a working tree.
type Sanitizer struct {
	Root string
	VCS  VCS
	Opts Options
}

// New builds a Sanitizer rooted at a git working tree.
func New(root string, opts Options) *Sanitizer {
	return &Sanitizer{Root: root, VCS: gitutils.New(root), Opts: opts}
}

// Check validates every tracked file without writing anything. The
// returned slice is empty when the tree is valid.
func (s *Sanitizer) Check(ctx context.Context) ([]format.FileErrors, error) {
	_, fileErrs, _, err := s.scan(ctx)
	return fileErrs, err
}

// Run validates the whole tree and, only if every file is valid, applies
// all changes and commits them. Any file error means no file is written
// and no commit occurs.
func (s *Sanitizer) Run(ctx context.Context) (Summary, []format.FileErrors, error) {
	var sum Summary

	if !s.Opts.Force {
		clean, err := s.VCS.IsClean()
		if err != nil {
			return sum, nil, err
		}
		if !clean {
			return sum, nil, errors.New(
				"working tree has uncommitted changes (use --force to override)")
		}
	}

	if !s.Opts.NoCommit {
		if s.Opts.TargetBranch == "" {
			return sum, nil, errors.New("a target branch is required unless --no-commit is given")
		}
		exists, err := s.VCS.BranchExists(s.Opts.TargetBranch)
		if err != nil {
			return sum, nil, err
		}
		if !exists {
			return sum, nil, fmt.Errorf("no such branch: %s", s.Opts.TargetBranch)
		}
	}

	changes, fileErrs, skipped, err := s.scan(ctx)
	if err != nil {
		return sum, nil, err
	}
	sum.Skipped = skipped
	if len(fileErrs) > 0 {
		return sum, fileErrs, nil
	}

	for _, c := range changes {
		abs := filepath.Join(s.Root, c.RelPath)
		switch c.Decision {
		case engine.DecisionDelete:
			if err := os.Remove(abs); err != nil {
				return sum, nil, fmt.Errorf("removing %s: %w", c.RelPath, err)
			}
			sum.Deleted++
		case engine.DecisionRewrite:
			if err := os.WriteFile(abs, []byte(c.Text), c.FileMode); err != nil {
				return sum, nil, fmt.Errorf("writing %s: %w", c.RelPath, err)
			}
			sum.Written++
		}
	}

	if s.Opts.NoCommit {
		return sum, nil, nil
	}

	branch := s.Opts.TargetBranch
	if s.Opts.PRBranch {
		branch, err = s.VCS.CreatePRBranch(s.Opts.TargetBranch)
		if err != nil {
			return sum, nil, err
		}
	}
	sum.Branch = branch

	msg := s.Opts.CommitMessage
	if msg == "" {
		msg = "Sanitize repository"
	}
	if err := s.VCS.CommitOnBranch(branch, msg); err != nil {
		if errors.Is(err, gitutils.ErrEmptyCommit) && s.Opts.Force {
			return sum, nil, nil
		}
		return sum, nil, err
	}
	sum.Committed = true
	return sum, nil, nil
}

// scan runs the engine over every tracked file in parallel. Results are
// collected per file and merged once every worker has finished, so a
// failing file never blocks the full defect report.
func (s *Sanitizer) scan(ctx context.Context) ([]Change, []format.FileErrors, int, error) {
	paths, err := s.VCS.TrackedFiles()
	if err != nil {
		return nil, nil, 0, err
	}

	jobs := s.Opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	var (
		mu       sync.Mutex
		changes  []Change
		fileErrs []format.FileErrors
		skipped  int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, relpath := range paths {
		relpath := relpath
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			abs := filepath.Join(s.Root, relpath)
			info, err := os.Stat(abs)
			if err != nil {
				return fmt.Errorf("stat %s: %w", relpath, err)
			}
			data, err := os.ReadFile(abs)
			if err != nil {
				return fmt.Errorf("reading %s: %w", relpath, err)
			}
			text := string(data)
			if isBinary(data) || !syntax.Dirty(text) {
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}

			result, errs := engine.SanitizeText(text, s.Opts.Mode)

			mu.Lock()
			defer mu.Unlock()
			if len(errs) > 0 {
				fileErrs = append(fileErrs, format.FileErrors{RelPath: relpath, Errors: errs})
				return nil
			}
			changes = append(changes, Change{
				RelPath:  relpath,
				Decision: result.Decision,
				Text:     result.Text,
				FileMode: info.Mode().Perm(),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, 0, err
	}

	// Worker completion order is nondeterministic; reports are not.
	sort.Slice(changes, func(i, j int) bool { return changes[i].RelPath < changes[j].RelPath })
	sort.Slice(fileErrs, func(i, j int) bool { return fileErrs[i].RelPath < fileErrs[j].RelPath })

	return changes, fileErrs, skipped, nil
}

// DirtyFile is a tracked text file containing marker syntax.
type DirtyFile struct {
	RelPath string
	Text    string
}

// DirtyFiles lists every tracked file the engine would touch, with its
// content. Used by the review UI; applies nothing.
func (s *Sanitizer) DirtyFiles() ([]DirtyFile, error) {
	paths, err := s.VCS.TrackedFiles()
	if err != nil {
		return nil, err
	}

	var dirty []DirtyFile
	for _, relpath := range paths {
		data, err := os.ReadFile(filepath.Join(s.Root, relpath))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", relpath, err)
		}
		if isBinary(data) {
			continue
		}
		if text := string(data); syntax.Dirty(text) {
			dirty = append(dirty, DirtyFile{RelPath: relpath, Text: text})
		}
	}
	return dirty, nil
}

// isBinary uses a NUL byte in the leading bytes as the binary heuristic.
func isBinary(data []byte) bool {
	probe := data
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
