package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdstream/internal/configloader"
	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/internal/ui/pretty"
	"github.com/yaklabco/mdstream/pkg/config"
	"github.com/yaklabco/mdstream/pkg/fsutil"
	"github.com/yaklabco/mdstream/pkg/lexcache"
	"github.com/yaklabco/mdstream/pkg/lexer"
	"github.com/yaklabco/mdstream/pkg/mdast"
	"github.com/yaklabco/mdstream/pkg/metrics"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// stdinPath names standard input in file arguments.
const stdinPath = "-"

// documentFlags are the grammar flags shared by commands that parse.
type documentFlags struct {
	flavor      string
	noLatex     bool
	noCitations bool
	noDetect    bool
	format      string
}

func addDocumentFlags(cmd *cobra.Command, flags *documentFlags) {
	cmd.Flags().StringVar(&flags.flavor, "flavor", string(config.FlavorGFM), "Markdown flavor: gfm, commonmark")
	cmd.Flags().BoolVar(&flags.noLatex, "no-latex", false, "disable LaTeX math")
	cmd.Flags().BoolVar(&flags.noCitations, "no-citations", false, "disable citation blocks")
	cmd.Flags().BoolVar(&flags.noDetect, "no-detect", false, "disable code language detection")
	cmd.Flags().StringVar(&flags.format, "format", string(config.FormatTree), "output format: tree, yaml, json")
}

// cliConfig converts the flags the user set into a configuration layer.
func (f *documentFlags) cliConfig(cmd *cobra.Command) *config.Config {
	cfg := &config.Config{}
	if cmd.Flags().Changed("flavor") {
		cfg.Flavor = config.Flavor(f.flavor)
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(f.format)
	}
	if f.noLatex {
		cfg.Latex.Enabled = config.Bool(false)
	}
	if f.noCitations {
		cfg.Citations.Enabled = config.Bool(false)
	}
	if f.noDetect {
		cfg.Code.DetectLanguage = config.Bool(false)
	}
	return cfg
}

// loadConfig resolves the configuration for cmd with cliCfg as the
// highest-precedence layer, and applies the configured log level.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, error) {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	result, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}

	cfg := result.Config
	if debug, _ := cmd.Flags().GetBool("debug"); !debug && cfg.LogLevel != "" {
		logging.SetLevel(cfg.LogLevel)
	}

	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldPaths, result.LoadedFrom)
	}
	logger.Debug("configuration resolved",
		logging.FieldFlavor, cfg.Flavor,
		logging.FieldThreshold, cfg.Stream.FlushThreshold,
		logging.FieldJobs, cfg.Jobs,
	)

	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// engine builds lexers and patchers that share one cache and one metrics
// collector.
type engine struct {
	cfg       *config.Config
	cache     *lexcache.Cache[[]mdast.Node]
	collector *metrics.Collector
}

func newEngine(cfg *config.Config) *engine {
	e := &engine{
		cfg:   cfg,
		cache: lexcache.New[[]mdast.Node](cfg.Cache.Size),
	}
	if cfg.MetricsEnabled() {
		e.collector = metrics.New()
	}
	return e
}

func (e *engine) newLexer() *lexer.Lexer {
	opts := []lexer.Option{
		lexer.WithFlavor(string(e.cfg.Flavor)),
		lexer.WithMath(e.cfg.LatexEnabled()),
		lexer.WithCitations(e.cfg.CitationsEnabled()),
		lexer.WithLanguageDetection(e.cfg.DetectLanguage()),
		lexer.WithCache(e.cache),
	}
	if e.collector != nil {
		opts = append(opts, lexer.WithObserver(e.collector), lexer.WithParseObserver(e.collector))
	}
	return lexer.New(opts...)
}

func (e *engine) patcherOptions() []stream.Option {
	opts := []stream.Option{stream.WithFlushThreshold(e.cfg.Stream.FlushThreshold)}
	if e.collector != nil {
		opts = append(opts, stream.WithObserver(e.collector))
	}
	return opts
}

func (e *engine) newPatcher(consumer stream.Consumer) *stream.Patcher {
	return stream.NewPatcher(e.newLexer(), consumer, e.patcherOptions()...)
}

// readSource reads a file, or standard input for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == stdinPath {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(content), nil
	}

	content, err := fsutil.ReadFile(commandContext(cmd), path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(content), nil
}

// styles returns output styles honoring the --color flag.
func styles(cmd *cobra.Command) *pretty.Styles {
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	return pretty.NewStyles(pretty.IsColorEnabled(colorMode, cmd.OutOrStdout()))
}

// encode writes v as YAML or JSON.
func encode(w io.Writer, format config.OutputFormat, v any) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(config.YAMLIndent())
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("%w: format %q cannot be encoded", ErrInvalidUsage, format)
	}
	return nil
}
