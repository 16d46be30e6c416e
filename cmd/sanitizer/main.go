package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/repobee/sanitizer/internal/config"
	"github.com/repobee/sanitizer/internal/engine"
	"github.com/repobee/sanitizer/internal/format"
	"github.com/repobee/sanitizer/internal/repo"
	"github.com/repobee/sanitizer/internal/ui"
)

var version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:   "sanitizer",
	Short: "Keep a solution repo and its student version in one source tree",
	Long: `Maintains two views of one source tree: the full version with
REPOBEE-SANITIZER markers embedded, and the sanitized version derived
from it. Code between START and END markers is removed; an optional
REPLACE-WITH body is surfaced with its comment prefix stripped.`,
}

var sanitizeFileCmd = &cobra.Command{
	Use:   "sanitize-file <infile> [outfile]",
	Short: "Sanitize a single file",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSanitizeFile,
}

var sanitizeRepoCmd = &cobra.Command{
	Use:   "sanitize-repo",
	Short: "Sanitize every tracked file and commit to the target branch",
	Args:  cobra.NoArgs,
	RunE:  runSanitizeRepo,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate marker syntax in every tracked file, writing nothing",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively preview what sanitization would do",
	Args:  cobra.NoArgs,
	RunE:  runReview,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(sanitizeFileCmd)
	rootCmd.AddCommand(sanitizeRepoCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(reviewCmd)

	rootCmd.PersistentFlags().StringP("mode", "m", "", "Transformation mode: sanitize, strip")
	rootCmd.PersistentFlags().StringP("repo-root", "r", "", "Repository root (default: current directory)")

	sanitizeFileCmd.Flags().Bool("strip", false, "Strip markers only (shorthand for -m strip)")

	sanitizeRepoCmd.Flags().StringP("target-branch", "t", "", "Branch to commit sanitized results to")
	sanitizeRepoCmd.Flags().Bool("no-commit", false, "Write files but skip all git operations")
	sanitizeRepoCmd.Flags().Bool("force", false, "Bypass the clean-tree and empty-commit checks")
	sanitizeRepoCmd.Flags().Bool("pr", false, "Commit to a timestamped branch off the target branch")
	sanitizeRepoCmd.Flags().StringP("message", "M", "", "Commit message")
	sanitizeRepoCmd.Flags().IntP("jobs", "j", 0, "Parallel file workers (0 = one per CPU)")

	viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode"))
	viper.BindPFlag("target_branch", sanitizeRepoCmd.Flags().Lookup("target-branch"))
	viper.BindPFlag("commit_message", sanitizeRepoCmd.Flags().Lookup("message"))
	viper.BindPFlag("jobs", sanitizeRepoCmd.Flags().Lookup("jobs"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
	ui.RefreshStyles()
}

func resolveMode(cmd *cobra.Command) (engine.Mode, error) {
	if strip, _ := cmd.Flags().GetBool("strip"); strip {
		config.SetMode("strip")
	}
	name := config.GetMode()
	mode, ok := engine.ParseMode(name)
	if !ok {
		return 0, fmt.Errorf("unknown mode: %s (supported: sanitize, strip)", name)
	}
	return mode, nil
}

func resolveRoot(cmd *cobra.Command) (string, error) {
	if r, _ := cmd.Flags().GetString("repo-root"); r != "" {
		config.SetRepoRoot(r)
	}
	return filepath.Abs(config.GetRepoRoot())
}

func runSanitizeFile(cmd *cobra.Command, args []string) error {
	mode, err := resolveMode(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	result, errs := engine.SanitizeText(string(data), mode)
	if len(errs) > 0 {
		fmt.Fprintln(os.Stderr, format.Report([]format.FileErrors{
			{RelPath: args[0], Errors: errs},
		}))
		return fmt.Errorf("%d syntax error(s) in %s", len(errs), args[0])
	}

	if result.Decision == engine.DecisionDelete {
		fmt.Fprintf(os.Stderr, "%s is marked for deletion; nothing written\n", args[0])
		return nil
	}

	if len(args) == 2 {
		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		return os.WriteFile(args[1], []byte(result.Text), info.Mode().Perm())
	}
	fmt.Print(result.Text)
	return nil
}

func repoSanitizer(cmd *cobra.Command, mode engine.Mode) (*repo.Sanitizer, error) {
	root, err := resolveRoot(cmd)
	if err != nil {
		return nil, err
	}

	noCommit, _ := cmd.Flags().GetBool("no-commit")
	force, _ := cmd.Flags().GetBool("force")
	pr, _ := cmd.Flags().GetBool("pr")

	return repo.New(root, repo.Options{
		Mode:          mode,
		TargetBranch:  config.GetTargetBranch(),
		CommitMessage: config.GetCommitMessage(),
		NoCommit:      noCommit,
		Force:         force,
		PRBranch:      pr,
		Jobs:          config.GetJobs(),
	}), nil
}

func runSanitizeRepo(cmd *cobra.Command, args []string) error {
	mode, err := resolveMode(cmd)
	if err != nil {
		return err
	}
	s, err := repoSanitizer(cmd, mode)
	if err != nil {
		return err
	}

	summary, fileErrs, err := s.Run(context.Background())
	if err != nil {
		return err
	}
	if len(fileErrs) > 0 {
		fmt.Fprintln(os.Stderr, format.Report(fileErrs))
		return fmt.Errorf("nothing applied: %d file(s) failed validation", len(fileErrs))
	}

	fmt.Printf("Sanitized %d file(s), deleted %d, skipped %d clean\n",
		summary.Written, summary.Deleted, summary.Skipped)
	if summary.Committed {
		fmt.Printf("Committed to %s\n", summary.Branch)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	mode, err := resolveMode(cmd)
	if err != nil {
		return err
	}
	s, err := repoSanitizer(cmd, mode)
	if err != nil {
		return err
	}

	fileErrs, err := s.Check(context.Background())
	if err != nil {
		return err
	}
	if len(fileErrs) > 0 {
		fmt.Fprintln(os.Stderr, format.Report(fileErrs))
		return fmt.Errorf("%d file(s) failed validation", len(fileErrs))
	}
	fmt.Println("All tracked files pass syntax validation.")
	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	mode, err := resolveMode(cmd)
	if err != nil {
		return err
	}
	s, err := repoSanitizer(cmd, mode)
	if err != nil {
		return err
	}

	files, err := s.DirtyFiles()
	if err != nil {
		return err
	}
	return ui.Run(files, mode)
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
