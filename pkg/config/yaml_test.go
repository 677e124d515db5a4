package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/pkg/config"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	assert.Equal(t, config.FlavorGFM, cfg.Flavor)
	assert.Equal(t, 9, cfg.Stream.FlushThreshold)
	assert.Equal(t, 10, cfg.Cache.Size)
	assert.True(t, cfg.LatexEnabled())
	assert.True(t, cfg.CitationsEnabled())
	assert.True(t, cfg.DetectLanguage())
	assert.False(t, cfg.MetricsEnabled())
}

func TestConfig_Accessors_NilPointers(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	assert.True(t, cfg.LatexEnabled())
	assert.True(t, cfg.CitationsEnabled())
	assert.True(t, cfg.DetectLanguage())
	assert.False(t, cfg.MetricsEnabled())
}

func TestConfigClone(t *testing.T) {
	t.Parallel()

	t.Run("nil config returns nil", func(t *testing.T) {
		t.Parallel()

		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies feature toggles", func(t *testing.T) {
		t.Parallel()

		original := config.NewConfig()
		clone := original.Clone()
		require.NotSame(t, original, clone)

		*clone.Latex.Enabled = false
		assert.True(t, original.LatexEnabled())
		assert.False(t, clone.LatexEnabled())
	})

	t.Run("copies CLI-only fields", func(t *testing.T) {
		t.Parallel()

		original := config.NewConfig()
		original.Format = config.FormatJSON
		original.Jobs = 3

		clone := original.Clone()
		assert.Equal(t, config.FormatJSON, clone.Format)
		assert.Equal(t, 3, clone.Jobs)
	})
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	original := config.NewConfig()
	original.Stream.FlushThreshold = 20
	original.Citations.Enabled = config.Bool(false)

	data, err := original.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "flush_threshold: 20")
	assert.NotContains(t, string(data), "format", "CLI fields are not persisted")

	parsed, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, 20, parsed.Stream.FlushThreshold)
	assert.False(t, parsed.CitationsEnabled())
	assert.True(t, parsed.LatexEnabled())
}

func TestFromYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, cfg *config.Config)
	}{
		{
			name:  "empty document",
			input: "",
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Empty(t, cfg.Flavor)
				assert.Nil(t, cfg.Latex.Enabled)
			},
		},
		{
			name:  "nested keys",
			input: "flavor: commonmark\nserve:\n  addr: \":9000\"\ncode:\n  detect_language: false\n",
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, config.FlavorCommonMark, cfg.Flavor)
				assert.Equal(t, ":9000", cfg.Serve.Addr)
				assert.False(t, cfg.DetectLanguage())
			},
		},
		{
			name:    "unknown key",
			input:   "rules:\n  MD001: {}\n",
			wantErr: true,
		},
		{
			name:    "malformed",
			input:   "flavor: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.FromYAML([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestToYAMLWithHeader(t *testing.T) {
	t.Parallel()

	data, err := config.NewConfig().ToYAMLWithHeader("# header")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# header\n\nflavor: gfm")
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	full := config.GenerateTemplate(true)
	parsed, err := config.FromYAML(full)
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig().Serve.Addr, parsed.Serve.Addr)
	assert.Equal(t, 9, parsed.Stream.FlushThreshold)
	assert.Contains(t, string(full), "# Parse <citation> blocks")

	minimal := string(config.GenerateTemplate(false))
	assert.Contains(t, minimal, "flavor: gfm")
	assert.NotContains(t, minimal, "serve:")
}
