package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	RepoRoot      string `mapstructure:"repo_root"`
	Mode          string `mapstructure:"mode"`
	TargetBranch  string `mapstructure:"target_branch"`
	CommitMessage string `mapstructure:"commit_message"`
	Jobs          int    `mapstructure:"jobs"`
	ColorErrors   string `mapstructure:"color_errors"`
	ColorStatus   string `mapstructure:"color_status"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	viper.SetDefault("repo_root", ".")
	viper.SetDefault("mode", "sanitize")
	viper.SetDefault("target_branch", "")
	viper.SetDefault("commit_message", "Sanitize repository")
	viper.SetDefault("jobs", 0) // 0 means one worker per CPU
	viper.SetDefault("color_errors", "1")
	viper.SetDefault("color_status", "6")

	viper.SetConfigName("sanitizer")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "sanitizer"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SANITIZER")
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// GetRepoRoot returns the repository root with tilde expansion
func GetRepoRoot() string {
	return expandTilde(viper.GetString("repo_root"))
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetMode returns the transformation mode name
func GetMode() string {
	return viper.GetString("mode")
}

// GetTargetBranch returns the branch sanitized results are committed to
func GetTargetBranch() string {
	return viper.GetString("target_branch")
}

// GetCommitMessage returns the commit message for sanitize-repo
func GetCommitMessage() string {
	return viper.GetString("commit_message")
}

// GetJobs returns the parallel worker count
func GetJobs() int {
	return viper.GetInt("jobs")
}

// GetColorErrors returns the error report accent color
func GetColorErrors() string {
	return viper.GetString("color_errors")
}

// GetColorStatus returns the status line color
func GetColorStatus() string {
	return viper.GetString("color_status")
}

// SetMode sets the transformation mode at runtime
func SetMode(mode string) {
	viper.Set("mode", mode)
	C.Mode = mode
}

// SetRepoRoot sets the repository root at runtime
func SetRepoRoot(path string) {
	viper.Set("repo_root", path)
	C.RepoRoot = path
}
