// Package config loads the relgraph configuration of spec.md §6 from a
// .relgraph.toml file, RELGRAPH_-prefixed environment variables, and CLI
// flags, in increasing precedence — the same viper-driven layering
// SimplyLiz-CodeMCP's internal/config applies to its own JSON config,
// adapted here to TOML since spec.md names no wire format and TOML is
// the pack's own config file format (BurntSushi/toml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"relgraph/internal/errs"
)

// Config is the complete construction/runtime configuration of spec.md §6.
// Fields carry both a viper `mapstructure` tag (for reading .relgraph.toml
// back in) and a `toml` tag (so WriteDefaultConfig, which encodes with
// BurntSushi/toml directly rather than through viper, emits the same key
// names).
type Config struct {
	RepoPath string `mapstructure:"repo_path" toml:"repo_path"`

	Strict bool `mapstructure:"strict" toml:"strict"`

	Depth                int     `mapstructure:"depth" toml:"depth"`
	CommitSizeLimitRatio float64 `mapstructure:"commit_size_limit_ratio" toml:"commit_size_limit_ratio"`
	FollowRenames        bool    `mapstructure:"follow_renames" toml:"follow_renames"`

	ExcludeFileRegex   string `mapstructure:"exclude_file_regex" toml:"exclude_file_regex"`
	ExcludeAuthorRegex string `mapstructure:"exclude_author_regex" toml:"exclude_author_regex"`

	CacheDir     string `mapstructure:"cache_dir" toml:"cache_dir"`
	CacheEnabled bool   `mapstructure:"cache_enabled" toml:"cache_enabled"`
	CacheMemSize int    `mapstructure:"cache_mem_size" toml:"cache_mem_size"`

	Languages []string `mapstructure:"languages" toml:"languages"`

	LogFormat string `mapstructure:"log_format" toml:"log_format"`
	LogLevel  string `mapstructure:"log_level" toml:"log_level"`
}

// Default returns the configuration spec.md §6 names as defaults.
func Default() Config {
	return Config{
		RepoPath:             ".",
		Strict:               false,
		Depth:                0,
		CommitSizeLimitRatio: 0.2,
		FollowRenames:        true,
		CacheDir:             "",
		CacheEnabled:         true,
		CacheMemSize:         512,
		Languages:            nil,
		LogFormat:            "human",
		LogLevel:             "info",
	}
}

// Load reads .relgraph.toml from repoRoot, overlays RELGRAPH_-prefixed
// environment variables, and returns the merged Config. A missing config
// file is not an error — defaults apply.
func Load(repoRoot string) (Config, error) {
	v := viper.New()
	def := Default()
	def.RepoPath = repoRoot
	v.SetDefault("repo_path", def.RepoPath)
	v.SetDefault("strict", def.Strict)
	v.SetDefault("depth", def.Depth)
	v.SetDefault("commit_size_limit_ratio", def.CommitSizeLimitRatio)
	v.SetDefault("follow_renames", def.FollowRenames)
	v.SetDefault("cache_dir", filepath.Join(repoRoot, ".relgraph", "cache"))
	v.SetDefault("cache_enabled", def.CacheEnabled)
	v.SetDefault("cache_mem_size", def.CacheMemSize)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("log_level", def.LogLevel)

	v.SetConfigName(".relgraph")
	v.SetConfigType("toml")
	v.AddConfigPath(repoRoot)

	v.SetEnvPrefix("RELGRAPH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, errs.New(errs.ConfigError, repoRoot, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.New(errs.ConfigError, repoRoot, fmt.Errorf("unmarshal: %w", err))
	}
	return cfg, nil
}

// WriteDefaultConfig encodes Default() (minus repo_path, which Load always
// derives from its caller) as .relgraph.toml under dir, failing if the file
// already exists. It encodes directly with BurntSushi/toml rather than
// going through viper (viper has no write-back path for a struct),
// mirroring Load's own choice of TOML as the config file format.
func WriteDefaultConfig(dir string) (string, error) {
	path := filepath.Join(dir, ".relgraph.toml")
	if _, err := os.Stat(path); err == nil {
		return path, errs.New(errs.ConfigError, path, fmt.Errorf("already exists"))
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return path, errs.New(errs.ConfigError, path, err)
	}
	defer f.Close()

	// repo_path is supplied by Load's caller (the directory it was asked to
	// load), never by the file itself, so the scaffold omits that one field
	// rather than writing a "" that would shadow Load's default.
	type scaffold struct {
		Strict bool `toml:"strict"`

		Depth                int     `toml:"depth"`
		CommitSizeLimitRatio float64 `toml:"commit_size_limit_ratio"`
		FollowRenames        bool    `toml:"follow_renames"`

		ExcludeFileRegex   string `toml:"exclude_file_regex"`
		ExcludeAuthorRegex string `toml:"exclude_author_regex"`

		CacheDir     string `toml:"cache_dir"`
		CacheEnabled bool   `toml:"cache_enabled"`
		CacheMemSize int    `toml:"cache_mem_size"`

		Languages []string `toml:"languages"`

		LogFormat string `toml:"log_format"`
		LogLevel  string `toml:"log_level"`
	}

	def := Default()
	out := scaffold{
		Strict:               def.Strict,
		Depth:                def.Depth,
		CommitSizeLimitRatio: def.CommitSizeLimitRatio,
		FollowRenames:        def.FollowRenames,
		ExcludeFileRegex:     def.ExcludeFileRegex,
		ExcludeAuthorRegex:   def.ExcludeAuthorRegex,
		CacheDir:             def.CacheDir,
		CacheEnabled:         def.CacheEnabled,
		CacheMemSize:         def.CacheMemSize,
		Languages:            def.Languages,
		LogFormat:            def.LogFormat,
		LogLevel:             def.LogLevel,
	}
	if err := toml.NewEncoder(f).Encode(out); err != nil {
		return path, errs.New(errs.ConfigError, path, fmt.Errorf("encode: %w", err))
	}
	return path, nil
}
