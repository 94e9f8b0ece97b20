// Command relgraph builds the file-level reference graph of a repository
// and answers queries against it (SPEC_FULL.md §6).
package main

import (
	"os"

	"github.com/spf13/cobra"

	"relgraph/internal/config"
	"relgraph/internal/rlog"
)

var version = "dev"

var (
	repoPathFlag string
	strictFlag   bool
	logFormat    string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:     "relgraph",
	Short:   "File-level reference graph for code navigation",
	Long:    "relgraph analyzes a repository with tree-sitter and git history and emits a weighted, directed graph of file-to-file reference relationships.",
	Version: version,
}

func init() {
	rootCmd.SetVersionTemplate("relgraph version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoPathFlag, "repo", ".", "repository root")
	rootCmd.PersistentFlags().BoolVar(&strictFlag, "strict", false, "enable strict-mode REF uniqueness pruning")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "human", "log format: human or json")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "human", "output format: human or json")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(repoPathFlag)
	if err != nil {
		return config.Config{}, err
	}
	cfg.RepoPath = repoPathFlag
	cfg.Strict = cfg.Strict || strictFlag
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *rlog.Logger {
	format := rlog.FormatHuman
	if cfg.LogFormat == "json" {
		format = rlog.FormatJSON
	}
	level := rlog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = rlog.LevelDebug
	case "warn":
		level = rlog.LevelWarn
	case "error":
		level = rlog.LevelError
	}
	return rlog.New(os.Stderr, level, format)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
