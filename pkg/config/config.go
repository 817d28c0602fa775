package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml"
)

// Formats accepted by output.format.
var Formats = []string{"text", "markdown", "json", "yaml", "toon"}

// Body policies accepted by dry.body_policy.
var BodyPolicies = []string{"compact", "tokens"}

// Config holds all configuration options for dryscan.
type Config struct {
	// Similarity thresholds
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// Method body comparison
	DRY DRYConfig `koanf:"dry" toml:"dry"`

	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Logging settings
	Log LogConfig `koanf:"log" toml:"log"`
}

// ThresholdConfig holds the maximum edit distances still reported as similar.
type ThresholdConfig struct {
	TypeSimilarity int `koanf:"type_similarity" toml:"type_similarity"`
	DRYViolation   int `koanf:"dry_violation" toml:"dry_violation"`
}

// DRYConfig controls method body normalization.
type DRYConfig struct {
	BodyPolicy string `koanf:"body_policy" toml:"body_policy"` // compact, tokens
}

// AnalysisConfig controls which passes run and how files are processed.
type AnalysisConfig struct {
	Types       bool  `koanf:"types" toml:"types"`
	Methods     bool  `koanf:"methods" toml:"methods"`
	Workers     int   `koanf:"workers" toml:"workers"` // 0 = number of CPUs
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, markdown, json, yaml, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// LogConfig controls the log sink. An empty File logs to stderr.
type LogConfig struct {
	Level      string `koanf:"level" toml:"level"`
	File       string `koanf:"file" toml:"file"`
	MaxSize    int    `koanf:"max_size" toml:"max_size"` // megabytes
	MaxBackups int    `koanf:"max_backups" toml:"max_backups"`
	MaxAge     int    `koanf:"max_age" toml:"max_age"` // days
	Compress   bool   `koanf:"compress" toml:"compress"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			TypeSimilarity: 2,
			DRYViolation:   0,
		},
		DRY: DRYConfig{
			BodyPolicy: "compact",
		},
		Analysis: AnalysisConfig{
			Types:       true,
			Methods:     true,
			Workers:     0,
			MaxFileSize: 1 << 20,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.Designer.cs",
				"*.g.cs",
				"*.g.i.cs",
				"AssemblyInfo.cs",
			},
			Dirs: []string{
				"bin",
				"obj",
				".git",
				".vs",
				".idea",
				".dryscan",
				"target",
				"build",
				"node_modules",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// ConfigNames are the file names searched by Find, in priority order.
var ConfigNames = []string{
	"dryscan.toml",
	"dryscan.yaml",
	"dryscan.yml",
	"dryscan.json",
	".dryscan.toml",
	".dryscan.yaml",
	".dryscan.yml",
	".dryscan.json",
}

// Find returns the first config file present in dir or dir/.dryscan, or ""
// if there is none.
func Find(dir string) string {
	for _, d := range []string{dir, filepath.Join(dir, ".dryscan")} {
		for _, name := range ConfigNames {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads the config found in the current directory, falling back
// to defaults when none exists. A config file that exists but fails to load
// is an error.
func LoadOrDefault() (*Config, error) {
	path := Find(".")
	if path == "" {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if !slices.Contains(BodyPolicies, strings.ToLower(c.DRY.BodyPolicy)) {
		return fmt.Errorf("dry.body_policy %q must be one of %s", c.DRY.BodyPolicy, strings.Join(BodyPolicies, ", "))
	}
	if !slices.Contains(Formats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("output.format %q must be one of %s", c.Output.Format, strings.Join(Formats, ", "))
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative, got %d", c.Analysis.Workers)
	}
	return nil
}

// EncodeTOML renders the config as a TOML document.
func (c *Config) EncodeTOML() ([]byte, error) {
	return gotoml.Marshal(*c)
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
