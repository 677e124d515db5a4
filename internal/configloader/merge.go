package configloader

import "github.com/yaklabco/mdstream/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointer toggles: override overwrites base if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	if override.Stream.FlushThreshold != 0 {
		result.Stream.FlushThreshold = override.Stream.FlushThreshold
	}
	if override.Cache.Size != 0 {
		result.Cache.Size = override.Cache.Size
	}

	result.Latex.Enabled = mergeBool(result.Latex.Enabled, override.Latex.Enabled)
	result.Citations.Enabled = mergeBool(result.Citations.Enabled, override.Citations.Enabled)
	result.Code.DetectLanguage = mergeBool(result.Code.DetectLanguage, override.Code.DetectLanguage)
	result.Metrics.Enabled = mergeBool(result.Metrics.Enabled, override.Metrics.Enabled)

	if override.Metrics.Path != "" {
		result.Metrics.Path = override.Metrics.Path
	}
	if override.Serve.Addr != "" {
		result.Serve.Addr = override.Serve.Addr
	}
	if override.Serve.ReadLimit != 0 {
		result.Serve.ReadLimit = override.Serve.ReadLimit
	}

	return result
}

func mergeBool(base, override *bool) *bool {
	if override == nil {
		return base
	}
	v := *override
	return &v
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
