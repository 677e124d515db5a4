package cli

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/internal/sink"
	"github.com/yaklabco/mdstream/internal/ui/pretty"
	"github.com/yaklabco/mdstream/pkg/config"
	"github.com/yaklabco/mdstream/pkg/mdast"
	"github.com/yaklabco/mdstream/pkg/stream"
)

const defaultChunkRunes = 3

type replayFlags struct {
	documentFlags
	chunk     int
	rate      float64
	threshold int
	tree      bool
}

// opRecord is the encoded form of one recorded operation.
type opRecord struct {
	Op    string           `yaml:"op" json:"op"`
	Nodes []map[string]any `yaml:"nodes,omitempty" json:"nodes,omitempty"`
}

func newReplayCommand() *cobra.Command {
	flags := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Stream a file through the patcher in small chunks",
		Long: `Split a document into chunks of a few characters and feed them to a
streaming patcher, printing every append, replace and reset it emits.

With --format json each operation is one JSON line, the same messages the
serve command sends over its websocket. With --format yaml the operations are
collected and printed once the document ends.

Examples:
  mdstream replay answer.md
  mdstream replay --chunk 1 --rate 40 --tree answer.md
  mdstream replay --format json answer.md | jq .op`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args, flags)
		},
	}

	addDocumentFlags(cmd, &flags.documentFlags)
	cmd.Flags().IntVar(&flags.chunk, "chunk", defaultChunkRunes, "characters per chunk")
	cmd.Flags().Float64Var(&flags.rate, "rate", 0, "chunks per second (0 = unlimited)")
	cmd.Flags().IntVar(&flags.threshold, "flush-threshold", 0, "buffered weight that triggers a lex (0 = configured)")
	cmd.Flags().BoolVar(&flags.tree, "tree", false, "print the nodes of each operation")

	return cmd
}

func runReplay(cmd *cobra.Command, args []string, flags *replayFlags) error {
	if flags.chunk < 1 {
		return fmt.Errorf("%w: --chunk must be at least 1", ErrInvalidUsage)
	}

	cliCfg := flags.cliConfig(cmd)
	cliCfg.Stream.FlushThreshold = flags.threshold
	cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	path := stdinPath
	if len(args) == 1 {
		path = args[0]
	}
	source, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	var recorder *stream.Recorder
	var consumer stream.Consumer
	switch cfg.Format {
	case config.FormatJSON:
		consumer = sink.NewJSONLines(out, uuid.New())
	case config.FormatYAML:
		recorder = stream.NewRecorder()
		consumer = recorder
	default:
		consumer = opPrinter(cmd, flags.tree)
	}

	limit := rate.Inf
	if flags.rate > 0 {
		limit = rate.Limit(flags.rate)
	}
	limiter := rate.NewLimiter(limit, 1)

	patcher := newEngine(cfg).newPatcher(consumer)
	chunks := splitRunes(source, flags.chunk)
	logging.Default().Debug("replaying document",
		logging.FieldPath, path,
		logging.FieldBytes, len(source),
		logging.FieldThreshold, cfg.Stream.FlushThreshold,
	)

	for _, chunk := range chunks {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait: %w", err)
		}
		if err := patcher.Write(ctx, chunk); err != nil {
			return err
		}
	}
	if err := patcher.Close(ctx); err != nil {
		return err
	}

	if recorder == nil {
		return nil
	}
	ops := recorder.Ops()
	records := make([]opRecord, len(ops))
	for i, op := range ops {
		records[i] = opRecord{Op: op.Kind.String(), Nodes: mdast.ToMaps(op.Nodes)}
	}
	return encode(out, cfg.Format, records)
}

func opPrinter(cmd *cobra.Command, withTree bool) *pretty.OpPrinter {
	out := cmd.OutOrStdout()
	st := styles(cmd)
	var tree *pretty.TreeFormatter
	if withTree {
		tree = pretty.NewTreeFormatter(st, pretty.TerminalWidth(out))
	}
	return pretty.NewOpPrinter(out, st, tree)
}

// splitRunes splits s into pieces of at most n runes.
func splitRunes(s string, n int) []string {
	var chunks []string
	for len(s) > 0 {
		end, count := 0, 0
		for end < len(s) && count < n {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
			count++
		}
		chunks = append(chunks, s[:end])
		s = s[end:]
	}
	return chunks
}
