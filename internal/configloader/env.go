package configloader

import (
	"fmt"
	"os"
	"strconv"

	"github.com/yaklabco/mdstream/pkg/config"
)

// envVarPrefix is the prefix for all mdstream environment variables.
const envVarPrefix = "MDSTREAM_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FLAVOR":                 {"flavor", envTypeString, "Markdown flavor: gfm or commonmark"},
	"LOG_LEVEL":              {"log_level", envTypeString, "Log level: debug, info, warn or error"},
	"FORMAT":                 {"format", envTypeString, "Output format: tree, yaml or json"},
	"JOBS":                   {"jobs", envTypeInt, "Number of parallel workers (0 = auto)"},
	"STREAM_FLUSH_THRESHOLD": {"stream.flush_threshold", envTypeInt, "Buffered weight that triggers a lex"},
	"CACHE_SIZE":             {"cache.size", envTypeInt, "Number of cached lex results"},
	"LATEX_ENABLED":          {"latex.enabled", envTypeBool, "Parse LaTeX math: true or false"},
	"CITATIONS_ENABLED":      {"citations.enabled", envTypeBool, "Parse citations: true or false"},
	"CODE_DETECT_LANGUAGE":   {"code.detect_language", envTypeBool, "Guess code block languages: true or false"},
	"METRICS_ENABLED":        {"metrics.enabled", envTypeBool, "Collect Prometheus metrics: true or false"},
	"METRICS_PATH":           {"metrics.path", envTypeString, "HTTP path for metrics"},
	"SERVE_ADDR":             {"serve.addr", envTypeString, "Listen address of the serve command"},
	"SERVE_READ_LIMIT":       {"serve.read_limit", envTypeInt, "Largest accepted client message in bytes"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with MDSTREAM_ (e.g., MDSTREAM_FLAVOR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "log_level":
		cfg.LogLevel = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "metrics.path":
		cfg.Metrics.Path = value
	case "serve.addr":
		cfg.Serve.Addr = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "latex.enabled":
		cfg.Latex.Enabled = config.Bool(value)
	case "citations.enabled":
		cfg.Citations.Enabled = config.Bool(value)
	case "code.detect_language":
		cfg.Code.DetectLanguage = config.Bool(value)
	case "metrics.enabled":
		cfg.Metrics.Enabled = config.Bool(value)
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	case "stream.flush_threshold":
		cfg.Stream.FlushThreshold = value
	case "cache.size":
		cfg.Cache.Size = value
	case "serve.read_limit":
		cfg.Serve.ReadLimit = int64(value)
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.description
	}
	return vars
}
