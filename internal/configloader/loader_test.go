package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/yaklabco/mdstream/pkg/config"
)

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}
	if result.Config.Flavor != config.FlavorGFM {
		t.Errorf("expected flavor %q, got %q", config.FlavorGFM, result.Config.Flavor)
	}
	if result.Config.Stream.FlushThreshold != config.DefaultFlushThreshold {
		t.Errorf("expected flush threshold %d, got %d", config.DefaultFlushThreshold, result.Config.Stream.FlushThreshold)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdstream.yml"), `
flavor: commonmark
stream:
  flush_threshold: 32
latex:
  enabled: false
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Flavor != config.FlavorCommonMark {
		t.Errorf("expected flavor %q, got %q", config.FlavorCommonMark, cfg.Flavor)
	}
	if cfg.Stream.FlushThreshold != 32 {
		t.Errorf("expected flush threshold 32, got %d", cfg.Stream.FlushThreshold)
	}
	if cfg.LatexEnabled() {
		t.Error("expected latex to be disabled")
	}
	if !cfg.CitationsEnabled() {
		t.Error("expected citations to keep their default")
	}
	if cfg.Cache.Size != config.DefaultCacheSize {
		t.Errorf("expected default cache size, got %d", cfg.Cache.Size)
	}
	if len(result.LoadedFrom) != 1 {
		t.Errorf("expected 1 loaded file, got %d", len(result.LoadedFrom))
	}
}

func TestLoad_ProjectConfigUpward(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "docs", "guides")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, ".mdstream.yaml"), "cache:\n  size: 4\n")

	result, err := Load(context.Background(), isolated(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Cache.Size != 4 {
		t.Errorf("expected cache size 4, got %d", result.Config.Cache.Size)
	}
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdstream.yml"), "serve:\n  addr: \":1000\"\n")
	customPath := filepath.Join(tmpDir, "custom.yml")
	writeFile(t, customPath, "serve:\n  addr: \":2000\"\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = customPath

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Serve.Addr != ":2000" {
		t.Errorf("expected explicit config to win, got %q", result.Config.Serve.Addr)
	}
	if len(result.LoadedFrom) != 2 {
		t.Errorf("expected 2 loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdstream.yml"), "flavor: commonmark\ncode:\n  detect_language: true\n")

	cli := &config.Config{
		Flavor: config.FlavorGFM,
		Format: config.FormatJSON,
		Jobs:   4,
		Code:   config.CodeConfig{DetectLanguage: config.Bool(false)},
	}
	opts := isolated(tmpDir)
	opts.CLIConfig = cli

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Flavor != config.FlavorGFM {
		t.Errorf("expected CLI flavor, got %q", cfg.Flavor)
	}
	if cfg.Format != config.FormatJSON {
		t.Errorf("expected CLI format, got %q", cfg.Format)
	}
	if cfg.Jobs != 4 {
		t.Errorf("expected 4 jobs, got %d", cfg.Jobs)
	}
	if cfg.DetectLanguage() {
		t.Error("expected CLI to disable language detection")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"invalid flavor", "flavor: invalid\n"},
		{"negative threshold", "stream:\n  flush_threshold: -1\n"},
		{"relative metrics path", "metrics:\n  path: metrics\n"},
		{"unknown key", "severity_default: warning\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, ".mdstream.yml"), tt.content)

			if _, err := Load(context.Background(), isolated(tmpDir)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoad_ValidationErrorType(t *testing.T) {
	t.Parallel()

	opts := isolated(t.TempDir())
	opts.CLIConfig = &config.Config{Format: "xml"}

	_, err := Load(context.Background(), opts)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	if verr.Field != "format" {
		t.Errorf("expected field format, got %q", verr.Field)
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, isolated(t.TempDir())); err == nil {
		t.Fatal("expected context cancellation error")
	}
}

//nolint:paralleltest // t.Setenv forbids t.Parallel.
func TestLoad_Environment(t *testing.T) {
	t.Setenv("MDSTREAM_FLAVOR", "commonmark")
	t.Setenv("MDSTREAM_CITATIONS_ENABLED", "false")
	t.Setenv("MDSTREAM_STREAM_FLUSH_THRESHOLD", "12")

	opts := isolated(t.TempDir())
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Flavor != config.FlavorCommonMark {
		t.Errorf("expected env flavor, got %q", result.Config.Flavor)
	}
	if result.Config.CitationsEnabled() {
		t.Error("expected citations disabled from env")
	}
	if result.Config.Stream.FlushThreshold != 12 {
		t.Errorf("expected threshold 12, got %d", result.Config.Stream.FlushThreshold)
	}
}

//nolint:paralleltest // t.Setenv forbids t.Parallel.
func TestLoadFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("MDSTREAM_CACHE_SIZE", "lots")
	if err := LoadFromEnv(config.NewConfig()); err == nil {
		t.Error("expected error for invalid integer")
	}
}

func TestGetEnvVarName(t *testing.T) {
	t.Parallel()

	if got := GetEnvVarName("serve.addr"); got != "MDSTREAM_SERVE_ADDR" {
		t.Errorf("GetEnvVarName(serve.addr) = %q", got)
	}
	if got := GetEnvVarName("nope"); got != "" {
		t.Errorf("GetEnvVarName(nope) = %q", got)
	}
	if _, ok := ListEnvVars()["MDSTREAM_LATEX_ENABLED"]; !ok {
		t.Error("ListEnvVars is missing MDSTREAM_LATEX_ENABLED")
	}
}

func TestMergeAll(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	mid := &config.Config{Metrics: config.MetricsConfig{Enabled: config.Bool(true)}}
	top := &config.Config{Cache: config.CacheConfig{Size: 3}}

	got := MergeAll(base, mid, top)
	if !got.MetricsEnabled() {
		t.Error("expected metrics enabled")
	}
	if got.Cache.Size != 3 {
		t.Errorf("expected cache size 3, got %d", got.Cache.Size)
	}
	if base.MetricsEnabled() {
		t.Error("merge must not modify base")
	}
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".mdstream.yml")

	backup, err := WriteConfig(ctx, path, []byte("flavor: gfm\n"), false)
	if err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}
	if backup != "" {
		t.Errorf("expected no backup for a new file, got %q", backup)
	}

	if _, err := WriteConfig(ctx, path, []byte("flavor: gfm\n"), false); !errors.Is(err, os.ErrExist) {
		t.Errorf("expected ErrExist, got %v", err)
	}

	backup, err = WriteConfig(ctx, path, []byte("flavor: commonmark\n"), true)
	if err != nil {
		t.Fatalf("forced WriteConfig() error = %v", err)
	}
	saved, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(saved) != "flavor: gfm\n" {
		t.Errorf("backup = %q, want previous content", saved)
	}
	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(current) != "flavor: commonmark\n" {
		t.Errorf("config = %q, want new content", current)
	}
}

func TestFindProjectConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nearest file wins", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		nested := filepath.Join(root, "docs", "guide")
		if err := os.MkdirAll(nested, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
			t.Fatal(err)
		}
		rootConfig := filepath.Join(root, ".mdstream.yml")
		docsConfig := filepath.Join(root, "docs", "mdstream.yaml")
		for _, path := range []string{rootConfig, docsConfig} {
			if err := os.WriteFile(path, []byte("flavor: gfm\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		}

		got, err := FindProjectConfig(ctx, nested)
		if err != nil {
			t.Fatalf("FindProjectConfig() error = %v", err)
		}
		if got != docsConfig {
			t.Errorf("FindProjectConfig() = %q, want %q", got, docsConfig)
		}
	})

	t.Run("worktree marker stops the search", func(t *testing.T) {
		t.Parallel()

		outer := t.TempDir()
		if err := os.WriteFile(filepath.Join(outer, ".mdstream.yml"), []byte("flavor: gfm\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		worktree := filepath.Join(outer, "wt")
		if err := os.Mkdir(worktree, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(worktree, ".git"), []byte("gitdir: ../.git/worktrees/wt\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		got, err := FindProjectConfig(ctx, worktree)
		if err != nil {
			t.Fatalf("FindProjectConfig() error = %v", err)
		}
		if got != "" {
			t.Errorf("expected no config past the worktree root, got %q", got)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		mutate       func(cfg *config.Config)
		wantErrors   []string
		wantWarnings []string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{
			name: "several errors keep field order",
			mutate: func(cfg *config.Config) {
				cfg.LogLevel = "trace"
				cfg.Flavor = "mmd"
				cfg.Metrics.Path = "metrics"
			},
			wantErrors: []string{"flavor", "log_level", "metrics.path"},
		},
		{
			name:         "large cache warns",
			mutate:       func(cfg *config.Config) { cfg.Cache.Size = maxCacheSize + 1 },
			wantWarnings: []string{"cache.size"},
		},
		{
			name:       "negative cache errors",
			mutate:     func(cfg *config.Config) { cfg.Cache.Size = -1 },
			wantErrors: []string{"cache.size"},
		},
	}

	fields := func(findings []ValidationError) []string {
		var out []string
		for _, f := range findings {
			out = append(out, f.Field)
		}
		return out
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			tt.mutate(cfg)
			result := Validate(cfg)

			if got := fields(result.Errors); !slices.Equal(got, tt.wantErrors) {
				t.Errorf("errors = %v, want %v", got, tt.wantErrors)
			}
			if got := fields(result.Warnings); !slices.Equal(got, tt.wantWarnings) {
				t.Errorf("warnings = %v, want %v", got, tt.wantWarnings)
			}
			if result.Valid() != (len(tt.wantErrors) == 0) {
				t.Errorf("Valid() = %v", result.Valid())
			}
		})
	}
}
