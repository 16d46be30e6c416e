package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repobee/sanitizer/internal/engine"
	"github.com/repobee/sanitizer/internal/gitutils"
)

// stubVCS is a test double over a plain directory.
type stubVCS struct {
	files      []string
	clean      bool
	branches   map[string]bool
	committed  []string // branch names commits landed on
	emptyNext  bool
	prBranches []string
}

func (s *stubVCS) TrackedFiles() ([]string, error) { return s.files, nil }
func (s *stubVCS) IsClean() (bool, error)          { return s.clean, nil }
func (s *stubVCS) BranchExists(b string) (bool, error) {
	return s.branches[b], nil
}
func (s *stubVCS) CreatePRBranch(target string) (string, error) {
	name := target + "-pr-test"
	s.prBranches = append(s.prBranches, name)
	return name, nil
}
func (s *stubVCS) CommitOnBranch(branch, message string) error {
	if s.emptyNext {
		return gitutils.ErrEmptyCommit
	}
	s.committed = append(s.committed, branch)
	return nil
}

func writeFiles(t *testing.T, root string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
		paths = append(paths, rel)
	}
	return paths
}

func newTestSanitizer(t *testing.T, files map[string]string, opts Options) (*Sanitizer, *stubVCS) {
	t.Helper()
	root := t.TempDir()
	vcs := &stubVCS{
		files:    writeFiles(t, root, files),
		clean:    true,
		branches: map[string]bool{"student": true},
	}
	return &Sanitizer{Root: root, VCS: vcs, Opts: opts}, vcs
}

const validFile = `header
// REPOBEE-SANITIZER-START
// answer()
// REPOBEE-SANITIZER-REPLACE-WITH
// todo()
// REPOBEE-SANITIZER-END
footer`

func TestRun_WritesDeletesAndSkips(t *testing.T) {
	s, _ := newTestSanitizer(t, map[string]string{
		"src/task.go":  validFile,
		"src/gone.txt": "REPOBEE-SANITIZER-SHRED\n",
		"README.md":    "no markers at all\n",
	}, Options{Mode: engine.ModeSanitize, NoCommit: true})

	summary, fileErrs, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, fileErrs)

	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, 1, summary.Skipped)

	got, err := os.ReadFile(filepath.Join(s.Root, "src/task.go"))
	require.NoError(t, err)
	assert.Equal(t, "header\ntodo()\nfooter", string(got))

	_, err = os.Stat(filepath.Join(s.Root, "src/gone.txt"))
	assert.True(t, os.IsNotExist(err), "shredded file must be removed")

	untouched, err := os.ReadFile(filepath.Join(s.Root, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "no markers at all\n", string(untouched))
}

func TestRun_AnyErrorBlocksEveryWrite(t *testing.T) {
	s, _ := newTestSanitizer(t, map[string]string{
		"good.txt": validFile,
		"bad.txt":  "REPOBEE-SANITIZER-START\nnever closed",
	}, Options{Mode: engine.ModeSanitize, NoCommit: true})

	summary, fileErrs, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, fileErrs, 1)
	assert.Equal(t, "bad.txt", fileErrs[0].RelPath)
	assert.Equal(t, 0, summary.Written)

	// The valid file must not have been touched either.
	got, err := os.ReadFile(filepath.Join(s.Root, "good.txt"))
	require.NoError(t, err)
	assert.Equal(t, validFile, string(got))
}

func TestRun_DirtyTreeRefusedWithoutForce(t *testing.T) {
	s, vcs := newTestSanitizer(t, map[string]string{
		"a.txt": validFile,
	}, Options{Mode: engine.ModeSanitize, NoCommit: true})
	vcs.clean = false

	_, _, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uncommitted changes")

	s.Opts.Force = true
	_, fileErrs, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fileErrs)
}

func TestRun_CommitFlow(t *testing.T) {
	t.Run("commits to the target branch", func(t *testing.T) {
		s, vcs := newTestSanitizer(t, map[string]string{
			"a.txt": validFile,
		}, Options{Mode: engine.ModeSanitize, TargetBranch: "student"})

		summary, fileErrs, err := s.Run(context.Background())
		require.NoError(t, err)
		require.Empty(t, fileErrs)
		assert.True(t, summary.Committed)
		assert.Equal(t, []string{"student"}, vcs.committed)
	})

	t.Run("missing branch is an error", func(t *testing.T) {
		s, _ := newTestSanitizer(t, map[string]string{
			"a.txt": validFile,
		}, Options{Mode: engine.ModeSanitize, TargetBranch: "nope"})

		_, _, err := s.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no such branch")
	})

	t.Run("pr flag commits to a derived branch", func(t *testing.T) {
		s, vcs := newTestSanitizer(t, map[string]string{
			"a.txt": validFile,
		}, Options{Mode: engine.ModeSanitize, TargetBranch: "student", PRBranch: true})

		summary, _, err := s.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "student-pr-test", summary.Branch)
		assert.Equal(t, []string{"student-pr-test"}, vcs.committed)
	})

	t.Run("empty commit is an error unless forced", func(t *testing.T) {
		s, vcs := newTestSanitizer(t, map[string]string{
			"a.txt": validFile,
		}, Options{Mode: engine.ModeSanitize, TargetBranch: "student"})
		vcs.emptyNext = true

		_, _, err := s.Run(context.Background())
		require.ErrorIs(t, err, gitutils.ErrEmptyCommit)

		s.Opts.Force = true
		summary, _, err := s.Run(context.Background())
		require.NoError(t, err)
		assert.False(t, summary.Committed)
	})
}

func TestCheck_ReportsWithoutWriting(t *testing.T) {
	s, _ := newTestSanitizer(t, map[string]string{
		"bad.txt": "REPOBEE-SANITIZER-END\n",
	}, Options{Mode: engine.ModeSanitize})

	fileErrs, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, fileErrs, 1)

	got, err := os.ReadFile(filepath.Join(s.Root, "bad.txt"))
	require.NoError(t, err)
	assert.Equal(t, "REPOBEE-SANITIZER-END\n", string(got), "check never writes")
}

func TestScan_SkipsBinaryFiles(t *testing.T) {
	s, _ := newTestSanitizer(t, map[string]string{
		"blob.bin": "REPOBEE-SANITIZER-START\x00never closed",
	}, Options{Mode: engine.ModeSanitize, NoCommit: true})

	summary, fileErrs, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fileErrs, "binary files are never validated")
	assert.Equal(t, 1, summary.Skipped)
}

func TestDirtyFiles(t *testing.T) {
	s, _ := newTestSanitizer(t, map[string]string{
		"dirty.txt": validFile,
		"clean.txt": "nothing here\n",
	}, Options{Mode: engine.ModeSanitize})

	dirty, err := s.DirtyFiles()
	require.NoError(t, err)
	require.Len(t, dirty, 1)
	assert.Equal(t, "dirty.txt", dirty[0].RelPath)
	assert.Equal(t, validFile, dirty[0].Text)
}
