// Package config layers provisionfs settings from defaults, an optional
// YAML file, PROVISIONFS_* environment variables and command-line flags.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. PROVISIONFS_PORT.
const EnvPrefix = "PROVISIONFS"

// Flag names.
const (
	FlagPort              = "port"
	FlagDir               = "dir"
	FlagLogLevel          = "log-level"
	FlagDryRun            = "dry-run"
	FlagSkipOrchestration = "skip-orchestration"
	FlagConfig            = "config"
)

// Config holds the settings of one provisioning run.
type Config struct {
	// Port is the host port published for the application container.
	Port int `mapstructure:"port"`
	// Dir is the project root; relative paths are resolved against the cwd.
	Dir string `mapstructure:"dir"`
	// LogLevel is a zerolog level name.
	LogLevel string `mapstructure:"log_level"`
	// DryRun keeps every write in memory and only logs commands.
	DryRun bool `mapstructure:"dry_run"`
	// SkipOrchestration stops after provisioning the tree.
	SkipOrchestration bool `mapstructure:"skip_orchestration"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Port:     3838,
		Dir:      ".",
		LogLevel: "warn",
	}
}

// RegisterFlags adds the settings flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	d := DefaultConfig()
	flags.IntP(FlagPort, "p", d.Port, "host port to publish the application on")
	flags.StringP(FlagDir, "d", d.Dir, "project root directory")
	flags.String(FlagLogLevel, d.LogLevel, "log level (trace, debug, info, warn, error)")
	flags.Bool(FlagDryRun, d.DryRun, "report what would change without writing or running commands")
	flags.Bool(FlagSkipOrchestration, d.SkipOrchestration, "only provision files, do not touch containers")
	flags.String(FlagConfig, "", "path to a YAML config file")
}

// Load resolves the settings. configFile may be empty; a named file that
// cannot be read is an error. flags may be nil.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("port", defaults.Port)
	v.SetDefault("dir", defaults.Dir)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("dry_run", defaults.DryRun)
	v.SetDefault("skip_orchestration", defaults.SkipOrchestration)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range map[string]string{
			"port":               FlagPort,
			"dir":                FlagDir,
			"log_level":          FlagLogLevel,
			"dry_run":            FlagDryRun,
			"skip_orchestration": FlagSkipOrchestration,
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project dir %s: %w", cfg.Dir, err)
	}
	cfg.Dir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the run cannot use.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.Dir == "" {
		return fmt.Errorf("project dir cannot be empty")
	}
	return nil
}
