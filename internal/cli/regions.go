package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/ui/pretty"
	"github.com/yaklabco/mdstream/pkg/config"
	"github.com/yaklabco/mdstream/pkg/region"
)

type regionsFlags struct {
	format string
	from   int
}

func newRegionsCommand() *cobra.Command {
	flags := &regionsFlags{}

	cmd := &cobra.Command{
		Use:   "regions [file]",
		Short: "Print the regions an edit must not split",
		Long: `Print the tables, code fences, math and citation blocks of a document.

A region is a span the incremental parser re-parses as a whole when an edit
touches it. Use --from to show only the regions an edit starting at that byte
offset would affect.

Examples:
  mdstream regions README.md
  mdstream regions --from 120 --format json answer.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", string(config.FormatTree), "output format: tree, yaml, json")
	cmd.Flags().IntVar(&flags.from, "from", 0, "byte offset of the edit")

	return cmd
}

func runRegions(cmd *cobra.Command, args []string, flags *regionsFlags) error {
	if flags.from < 0 {
		return fmt.Errorf("%w: --from must not be negative", ErrInvalidUsage)
	}

	cliCfg := &config.Config{}
	if cmd.Flags().Changed("format") {
		cliCfg.Format = config.OutputFormat(flags.format)
	}
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

	regions := region.Detect(source, flags.from)
	out := cmd.OutOrStdout()

	if cfg.Format != config.FormatTree {
		if regions == nil {
			regions = []region.Region{}
		}
		return encode(out, cfg.Format, regions)
	}

	st := styles(cmd)
	table := pretty.NewTableFormatter(st, pretty.TerminalWidth(out)).FormatRegions(source, regions)
	if table == "" {
		table = st.Dim.Render("no regions") + "\n"
	}
	if _, err := io.WriteString(out, table); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
