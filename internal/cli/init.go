package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/configloader"
	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/config"
)

// defaultConfigName is the file init writes when no --output is given.
const defaultConfigName = ".mdstream.yml"

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new mdstream configuration file",
		Long: `Create a new .mdstream.yml configuration file in the current directory
with the default settings.

Examples:
  mdstream init                      Create a minimal .mdstream.yml
  mdstream init --full               Document every setting
  mdstream init --output custom.yml  Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(commandContext(cmd), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Generate full template with every setting documented")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultConfigName, "Output file path")

	return cmd
}

func runInit(ctx context.Context, flags *initFlags) error {
	logger := logging.NewInteractive()

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	backup, err := configloader.WriteConfig(ctx, absPath, config.GenerateTemplate(flags.full), flags.force)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrInvalidUsage, flags.output)
	}
	if err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	if backup != "" {
		logger.Info("previous configuration saved", logging.FieldPath, backup)
	}
	if flags.full {
		logger.Info("full template documents every setting")
	}
	logger.Info("customize your configuration by editing the file")

	return nil
}
