// Package config defines the configuration types for mdstream.
// These types are pure data structures; loading and merging live in
// internal/configloader.
package config

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// OutputFormat specifies how commands print trees and operations.
type OutputFormat string

const (
	FormatTree OutputFormat = "tree"
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
)

// Default values.
const (
	DefaultFlushThreshold = 9
	DefaultCacheSize      = 10
	DefaultServeAddr      = "127.0.0.1:8765"
	DefaultReadLimit      = 1 << 20
	DefaultLogLevel       = "info"
)

// StreamConfig controls the streaming patcher.
type StreamConfig struct {
	// FlushThreshold is the buffered weight that triggers a lex.
	FlushThreshold int `yaml:"flush_threshold,omitempty"`
}

// CacheConfig controls the process-wide lex cache.
type CacheConfig struct {
	// Size is the number of cached lex results.
	Size int `yaml:"size,omitempty"`
}

// FeatureConfig toggles an optional grammar feature.
type FeatureConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// CodeConfig controls code block handling.
type CodeConfig struct {
	// DetectLanguage guesses the language of code blocks without an info
	// string.
	DetectLanguage *bool `yaml:"detect_language,omitempty"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`

	// Path is the HTTP path metrics are served on by the serve command.
	Path string `yaml:"path,omitempty"`
}

// ServeConfig controls the serve command.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr,omitempty"`

	// ReadLimit bounds a single client message in bytes.
	ReadLimit int64 `yaml:"read_limit,omitempty"`
}

// Config is the root configuration structure.
type Config struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`

	Stream    StreamConfig  `yaml:"stream,omitempty"`
	Cache     CacheConfig   `yaml:"cache,omitempty"`
	Latex     FeatureConfig `yaml:"latex,omitempty"`
	Citations FeatureConfig `yaml:"citations,omitempty"`
	Code      CodeConfig    `yaml:"code,omitempty"`
	Metrics   MetricsConfig `yaml:"metrics,omitempty"`
	Serve     ServeConfig   `yaml:"serve,omitempty"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Flavor:    FlavorGFM,
		LogLevel:  DefaultLogLevel,
		Stream:    StreamConfig{FlushThreshold: DefaultFlushThreshold},
		Cache:     CacheConfig{Size: DefaultCacheSize},
		Latex:     FeatureConfig{Enabled: Bool(true)},
		Citations: FeatureConfig{Enabled: Bool(true)},
		Code:      CodeConfig{DetectLanguage: Bool(true)},
		Metrics:   MetricsConfig{Enabled: Bool(false), Path: "/metrics"},
		Serve:     ServeConfig{Addr: DefaultServeAddr, ReadLimit: DefaultReadLimit},
		Format:    FormatTree,
		Jobs:      0, // 0 means use GOMAXPROCS
	}
}

// LatexEnabled reports whether LaTeX math is parsed.
func (c *Config) LatexEnabled() bool {
	return BoolValue(c.Latex.Enabled, true)
}

// CitationsEnabled reports whether citations are parsed.
func (c *Config) CitationsEnabled() bool {
	return BoolValue(c.Citations.Enabled, true)
}

// DetectLanguage reports whether code block languages are guessed.
func (c *Config) DetectLanguage() bool {
	return BoolValue(c.Code.DetectLanguage, true)
}

// MetricsEnabled reports whether metrics are collected.
func (c *Config) MetricsEnabled() bool {
	return BoolValue(c.Metrics.Enabled, false)
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// BoolValue returns *p, or def when p is nil.
func BoolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
