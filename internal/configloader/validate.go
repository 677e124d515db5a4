package configloader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/config"
)

// maxCacheSize bounds cache.size; larger caches only hold stale snapshots.
const maxCacheSize = 10_000

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	// Field is the YAML path of the field, such as "stream.flush_threshold".
	Field string

	// Value is the rejected value.
	Value any

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationResult holds the findings of Validate.
type ValidationResult struct {
	// Errors prevent the configuration from loading.
	Errors []ValidationError

	// Warnings are reported but do not stop loading.
	Warnings []ValidationError
}

// Valid reports whether there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// check inspects one field. It returns nil when the field is acceptable.
type check struct {
	warning bool
	run     func(cfg *config.Config) *ValidationError
}

func invalid(field string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

// checks run in order; their findings keep that order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var checks = []check{
	{run: func(cfg *config.Config) *ValidationError {
		valid := []config.Flavor{config.FlavorGFM, config.FlavorCommonMark}
		if cfg.Flavor == "" || slices.Contains(valid, cfg.Flavor) {
			return nil
		}
		return invalid("flavor", cfg.Flavor, "invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor)
	}},
	{run: func(cfg *config.Config) *ValidationError {
		valid := []config.OutputFormat{config.FormatTree, config.FormatYAML, config.FormatJSON}
		if cfg.Format == "" || slices.Contains(valid, cfg.Format) {
			return nil
		}
		return invalid("format", cfg.Format, "invalid format %q; must be one of: tree, yaml, json", cfg.Format)
	}},
	{run: func(cfg *config.Config) *ValidationError {
		if _, ok := logging.ParseLevel(cfg.LogLevel); ok || cfg.LogLevel == "" {
			return nil
		}
		return invalid("log_level", cfg.LogLevel,
			"invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel)
	}},
	{run: func(cfg *config.Config) *ValidationError {
		if cfg.Jobs >= 0 {
			return nil
		}
		return invalid("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}},
	{run: func(cfg *config.Config) *ValidationError {
		if cfg.Stream.FlushThreshold >= 0 {
			return nil
		}
		return invalid("stream.flush_threshold", cfg.Stream.FlushThreshold, "flush_threshold must be >= 0")
	}},
	{run: func(cfg *config.Config) *ValidationError {
		if cfg.Cache.Size >= 0 {
			return nil
		}
		return invalid("cache.size", cfg.Cache.Size, "cache size must be >= 0")
	}},
	{warning: true, run: func(cfg *config.Config) *ValidationError {
		if cfg.Cache.Size <= maxCacheSize {
			return nil
		}
		return invalid("cache.size", cfg.Cache.Size, "cache size %d is unusually large", cfg.Cache.Size)
	}},
	{run: func(cfg *config.Config) *ValidationError {
		if cfg.Serve.ReadLimit >= 0 {
			return nil
		}
		return invalid("serve.read_limit", cfg.Serve.ReadLimit, "read_limit must be >= 0")
	}},
	{run: func(cfg *config.Config) *ValidationError {
		if cfg.Metrics.Path == "" || strings.HasPrefix(cfg.Metrics.Path, "/") {
			return nil
		}
		return invalid("metrics.path", cfg.Metrics.Path, "metrics path must start with /")
	}},
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	for _, c := range checks {
		finding := c.run(cfg)
		switch {
		case finding == nil:
		case c.warning:
			result.Warnings = append(result.Warnings, *finding)
		default:
			result.Errors = append(result.Errors, *finding)
		}
	}
	return result
}
