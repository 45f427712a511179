package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsongraph/internal/errors"
	"github.com/mcncl/jsongraph/internal/graph"
)

// Config represents the complete configuration for jsongraph
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Layout  graph.Layout  `yaml:"layout"`
	Context ContextConfig `yaml:"context"`
	Output  OutputConfig  `yaml:"output"`
	Check   CheckConfig   `yaml:"check"`
	Server  ServerConfig  `yaml:"server"`
	Dev     DevConfig     `yaml:"dev"`
}

// InputConfig controls how input text is decoded
type InputConfig struct {
	Format string `yaml:"format"` // auto, json, yaml or toml
}

// ContextConfig controls the source excerpt attached to diagnostics
type ContextConfig struct {
	LinesBefore int `yaml:"lines_before"`
	LinesAfter  int `yaml:"lines_after"`
}

// OutputConfig controls how results are written
type OutputConfig struct {
	Format string `yaml:"format"` // text, json, msgpack, dot or outline
	Color  string `yaml:"color"`  // auto, always or never
}

// CheckConfig controls multi-file validation
type CheckConfig struct {
	Jobs    int           `yaml:"jobs"`
	Exclude []ExcludeRule `yaml:"exclude"`
}

// ExcludeRule skips files whose path matches Pattern during directory walks
type ExcludeRule struct {
	Pattern string `yaml:"pattern"`
	Comment string `yaml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// ServerConfig controls the HTTP server
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
}

var (
	inputFormats  = []string{"auto", "json", "yaml", "yml", "toml"}
	outputFormats = []string{"text", "json", "msgpack", "dot", "outline"}
	colorModes    = []string{"auto", "always", "never"}
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Input: InputConfig{
			Format: "auto",
		},
		Layout: graph.DefaultLayout,
		Context: ContextConfig{
			LinesBefore: 2,
			LinesAfter:  1,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
		Check: CheckConfig{
			Jobs:    4,
			Exclude: []ExcludeRule{},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Dev: DevConfig{
			Debug:    false,
			LogLevel: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("failed to parse config file", err)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, errors.NewConfigError("failed to compile patterns", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return FindConfigFileFrom(currentDir)
}

// FindConfigFileFrom searches dir and its parents for a config file
func FindConfigFileFrom(dir string) string {
	configNames := []string{".jsongraph.yml", ".jsongraph.yaml", "jsongraph.yml", "jsongraph.yaml"}

	currentDir := dir
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks that every setting is usable
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.NewConfigError(fmt.Sprintf(format, args...), errors.ErrInvalidInput)
	}

	if !slices.Contains(inputFormats, strings.ToLower(c.Input.Format)) {
		return invalid("input.format must be one of %s, got %q", strings.Join(inputFormats, ", "), c.Input.Format)
	}
	if !slices.Contains(outputFormats, strings.ToLower(c.Output.Format)) {
		return invalid("output.format must be one of %s, got %q", strings.Join(outputFormats, ", "), c.Output.Format)
	}
	if !slices.Contains(colorModes, strings.ToLower(c.Output.Color)) {
		return invalid("output.color must be one of %s, got %q", strings.Join(colorModes, ", "), c.Output.Color)
	}
	if c.Layout.HorizontalSpacing <= 0 || c.Layout.VerticalSpacing <= 0 {
		return invalid("layout spacing must be positive")
	}
	if c.Context.LinesBefore < 0 || c.Context.LinesAfter < 0 {
		return invalid("context lines must not be negative")
	}
	if c.Check.Jobs < 1 {
		return invalid("check.jobs must be at least 1, got %d", c.Check.Jobs)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return invalid("server.max_body_bytes must be positive")
	}
	if _, err := log.ParseLevel(c.Dev.LogLevel); err != nil {
		return invalid("dev.log_level: %v", err)
	}
	return nil
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Check.Exclude {
		rule := &c.Check.Exclude[i]
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", rule.Pattern, err)
		}
		rule.regex = regex
	}
	return nil
}

// MatchesPath checks if this exclude rule matches the given path
func (r *ExcludeRule) MatchesPath(path string) bool {
	if r.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(r.Pattern)
		if err != nil {
			return false
		}
		r.regex = regex
	}
	return r.regex.MatchString(filepath.ToSlash(path))
}

// IsExcluded reports whether any exclude rule matches path
func (c *Config) IsExcluded(path string) bool {
	for i := range c.Check.Exclude {
		if c.Check.Exclude[i].MatchesPath(path) {
			return true
		}
	}
	return false
}

// UseColor resolves the color mode against whether output is a terminal
func (c *Config) UseColor(isTerminal bool) bool {
	switch strings.ToLower(c.Output.Color) {
	case "always":
		return true
	case "never":
		return false
	default:
		return isTerminal
	}
}

// Overrides are values given on the command line. Zero values leave the
// config untouched.
type Overrides struct {
	Format       string
	OutputFormat string
	Color        string
	Jobs         int
	Addr         string
	Debug        bool
}

// ApplyOverrides copies every non-zero override into the config
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Format != "" {
		c.Input.Format = o.Format
	}
	if o.OutputFormat != "" {
		c.Output.Format = o.OutputFormat
	}
	if o.Color != "" {
		c.Output.Color = o.Color
	}
	if o.Jobs > 0 {
		c.Check.Jobs = o.Jobs
	}
	if o.Addr != "" {
		c.Server.Addr = o.Addr
	}
	if o.Debug {
		c.Dev.Debug = true
		c.Dev.LogLevel = "debug"
	}
}

// LoadConfigWithCLI loads config with CLI argument precedence.
// An empty configPath falls back to the nearest config file, then to defaults.
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg := NewConfig()
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg.ApplyOverrides(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
