package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/internal/ui/pretty"
	"github.com/yaklabco/mdstream/pkg/config"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

type parseFlags struct {
	documentFlags
	jobs int
}

// parsedFile is the output record of one parsed file.
type parsedFile struct {
	Path  string           `yaml:"path" json:"path"`
	Nodes []map[string]any `yaml:"nodes" json:"nodes"`
}

func newParseCommand() *cobra.Command {
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Parse Markdown files into a syntax tree",
		Long: `Parse Markdown files and print their top-level nodes.

Files are parsed concurrently, each with its own parse state. With no
arguments, or with "-", the document is read from standard input.

Examples:
  mdstream parse README.md                 # Print a tree
  mdstream parse --format json a.md b.md   # JSON, one record per file
  cat answer.md | mdstream parse --no-latex`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, flags)
		},
	}

	addDocumentFlags(cmd, &flags.documentFlags)
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, flags *parseFlags) error {
	cliCfg := flags.cliConfig(cmd)
	cliCfg.Jobs = flags.jobs

	cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{stdinPath}
	}

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	eng := newEngine(cfg)
	logger := logging.Default()
	results := make([][]mdast.Node, len(paths))

	group, ctx := errgroup.WithContext(commandContext(cmd))
	group.SetLimit(jobs)
	for i, path := range paths {
		group.Go(func() error {
			source, err := readSource(cmd, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			nodes, err := eng.newLexer().Lex(ctx, source)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Debug("parsed document",
				logging.FieldPath, path,
				logging.FieldBytes, len(source),
				logging.FieldNodes, len(nodes),
			)
			results[i] = nodes
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	return writeParsed(cmd, cfg.Format, paths, results)
}

func writeParsed(cmd *cobra.Command, format config.OutputFormat, paths []string, results [][]mdast.Node) error {
	out := cmd.OutOrStdout()

	if format != config.FormatTree {
		if len(paths) == 1 {
			return encode(out, format, mdast.ToMaps(results[0]))
		}
		records := make([]parsedFile, len(paths))
		for i, path := range paths {
			records[i] = parsedFile{Path: path, Nodes: mdast.ToMaps(results[i])}
		}
		return encode(out, format, records)
	}

	st := styles(cmd)
	tree := pretty.NewTreeFormatter(st, pretty.TerminalWidth(out))
	for i, path := range paths {
		if len(paths) > 1 {
			if i > 0 {
				if _, err := fmt.Fprintln(out); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}
			if _, err := fmt.Fprintln(out, st.FilePath.Render(path)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
		if _, err := io.WriteString(out, tree.Format(results[i])); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
