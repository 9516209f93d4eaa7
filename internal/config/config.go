// Package config provides configuration management for tagreport.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (TAGREPORT_*)
// 3. Project config (.tagreport.yaml in cwd, or $TAGREPORT_CONFIG)
// 4. Home config (~/.tagreport/config.yaml)
// 5. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corey/tagreport/internal/domain/keyspace"
	"github.com/corey/tagreport/internal/domain/resolver"
	"gopkg.in/yaml.v3"
)

// Config holds all tagreport configuration.
type Config struct {
	// Input is the JSON dump of the tag database.
	Input string `yaml:"input" json:"input"`

	// Output is where the report is written.
	Output string `yaml:"output" json:"output"`

	// DB is a bbolt file to read the dump from instead of Input.
	DB string `yaml:"db" json:"db"`

	// Dataset names the bbolt dataset used with DB.
	Dataset string `yaml:"dataset" json:"dataset"`

	// Priority orders tag-id prefix rules: "longest" or "insertion".
	Priority string `yaml:"priority" json:"priority"`

	// Merge is the duplicate-key policy: "last_write_wins" or "strict".
	Merge string `yaml:"merge" json:"merge"`

	// Sentinel is the report entry excluded from scoring.
	Sentinel string `yaml:"sentinel" json:"sentinel"`

	// NoSentinel scores every report entry, the sentinel included.
	NoSentinel bool `yaml:"no_sentinel" json:"no_sentinel"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default config values.
const (
	DefaultInput    = "db.json"
	DefaultOutput   = "analysis.json"
	DefaultDataset  = "default"
	DefaultSentinel = "popular"
	DefaultLogLevel = "warn"

	envPrefix = "TAGREPORT_"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Input:    DefaultInput,
		Output:   DefaultOutput,
		Dataset:  DefaultDataset,
		Priority: string(resolver.PriorityLongest),
		Merge:    string(keyspace.LastWriteWins),
		Sentinel: DefaultSentinel,
		LogLevel: DefaultLogLevel,
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
// A config file that exists but cannot be parsed is an error.
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, err := loadFromPath(homeConfigPath())
	if err != nil {
		return nil, err
	}
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, err := loadFromPath(projectConfigPath())
	if err != nil {
		return nil, err
	}
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if _, err := resolver.ParsePriority(c.Priority); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := keyspace.ParseMergePolicy(c.Merge); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	return nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tagreport", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv(envPrefix + "CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".tagreport.yaml")
}

// loadFromPath loads config from a YAML file. A missing file yields nil, nil.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	mergeStr(&cfg.Input, os.Getenv(envPrefix+"INPUT"))
	mergeStr(&cfg.Output, os.Getenv(envPrefix+"OUTPUT"))
	mergeStr(&cfg.DB, os.Getenv(envPrefix+"DB"))
	mergeStr(&cfg.Dataset, os.Getenv(envPrefix+"DATASET"))
	mergeStr(&cfg.Priority, os.Getenv(envPrefix+"PRIORITY"))
	mergeStr(&cfg.Merge, os.Getenv(envPrefix+"MERGE"))
	mergeStr(&cfg.Sentinel, os.Getenv(envPrefix+"SENTINEL"))
	mergeStr(&cfg.LogLevel, os.Getenv(envPrefix+"LOG_LEVEL"))
	if v, err := strconv.ParseBool(os.Getenv(envPrefix + "NO_SENTINEL")); err == nil && v {
		cfg.NoSentinel = true
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Input, src.Input)
	mergeStr(&dst.Output, src.Output)
	mergeStr(&dst.DB, src.DB)
	mergeStr(&dst.Dataset, src.Dataset)
	mergeStr(&dst.Priority, src.Priority)
	mergeStr(&dst.Merge, src.Merge)
	mergeStr(&dst.Sentinel, src.Sentinel)
	mergeStr(&dst.LogLevel, src.LogLevel)
	if src.NoSentinel {
		dst.NoSentinel = true
	}
	return dst
}

// ScoreSentinel returns the entry name to exclude from scoring, empty when
// NoSentinel is set.
func (c *Config) ScoreSentinel() string {
	if c.NoSentinel {
		return ""
	}
	return c.Sentinel
}

// YAML renders the configuration for display.
func (c *Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
