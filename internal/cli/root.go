// Package cli provides the Cobra command structure for mdstream.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root mdstream command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "mdstream",
		Short: "An incremental Markdown parser for streamed text",
		Long: `mdstream parses Markdown that arrives in pieces, such as the output of a
language model, and turns it into a typed syntax tree.

It extends GitHub Flavored Markdown with LaTeX math and <citation> blocks,
reuses the settled prefix of a document between parses, and emits append and
replace operations over top-level nodes so that a renderer only redraws what
changed.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddGroup(commandGroups()...)
	addToGroup(rootCmd, groupStream, newReplayCommand(), newFollowCommand(), newServeCommand())
	addToGroup(rootCmd, groupInspect, newParseCommand(), newRegionsCommand())
	addToGroup(rootCmd, groupSetup, newInitCommand(), newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}

func addToGroup(root *cobra.Command, group string, cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		cmd.GroupID = group
		root.AddCommand(cmd)
	}
}
