package cli

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/internal/sink"
	"github.com/yaklabco/mdstream/pkg/config"
	"github.com/yaklabco/mdstream/pkg/fsutil"
	"github.com/yaklabco/mdstream/pkg/stream"
)

type followFlags struct {
	documentFlags
	tree bool
}

func newFollowCommand() *cobra.Command {
	flags := &followFlags{}

	cmd := &cobra.Command{
		Use:   "follow <file>",
		Short: "Stream a growing file through the patcher",
		Long: `Watch a file and feed every byte appended to it into a streaming patcher,
printing the operations it emits. When the file is truncated or replaced the
document is reset and read again from the start. Interrupt to stop; buffered
text is flushed before exiting.

Examples:
  mdstream follow /tmp/answer.md
  mdstream follow --format json /tmp/answer.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFollow(cmd, args[0], flags)
		},
	}

	addDocumentFlags(cmd, &flags.documentFlags)
	cmd.Flags().BoolVar(&flags.tree, "tree", false, "print the nodes of each operation")

	return cmd
}

func runFollow(cmd *cobra.Command, path string, flags *followFlags) error {
	cfg, err := loadConfig(cmd, flags.cliConfig(cmd))
	if err != nil {
		return err
	}

	var consumer stream.Consumer
	switch cfg.Format {
	case config.FormatJSON:
		consumer = sink.NewJSONLines(cmd.OutOrStdout(), uuid.New())
	case config.FormatTree:
		consumer = opPrinter(cmd, flags.tree)
	default:
		return fmt.Errorf("%w: follow supports tree and json output", ErrInvalidUsage)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	f := newFollower(path, newEngine(cfg).newPatcher(consumer))
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx).With(logging.FieldPath, path)
	logger.Debug("following file")

	if err := f.catchUp(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return f.patcher.Close(context.WithoutCancel(ctx))

		case event, ok := <-watcher.Events:
			if !ok {
				return f.patcher.Close(ctx)
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				logger.Debug("file replaced")
				if err := f.restart(ctx); err != nil {
					return err
				}
				// The old inode is gone; watch the new file once it exists.
				if err := watcher.Add(path); err != nil {
					logger.Warn("file disappeared", logging.FieldError, err)
					return f.patcher.Close(ctx)
				}
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := f.catchUp(ctx); err != nil {
					return err
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return f.patcher.Close(ctx)
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}

// follower feeds the unread tail of a file into a patcher.
type follower struct {
	tail    *fsutil.Tail
	patcher *stream.Patcher
}

func newFollower(path string, patcher *stream.Patcher) *follower {
	return &follower{tail: fsutil.NewTail(path), patcher: patcher}
}

// catchUp writes everything appended since the last read. A file that
// shrank or was replaced restarts the document.
func (f *follower) catchUp(ctx context.Context) error {
	text, restarted, err := f.tail.Read(ctx)
	if err != nil {
		return err
	}
	if restarted {
		if err := f.patcher.Reset(ctx); err != nil {
			return err
		}
	}
	if text == "" {
		return nil
	}
	return f.patcher.Write(ctx, text)
}

// restart resets the document and reads the file from the start.
func (f *follower) restart(ctx context.Context) error {
	if err := f.patcher.Reset(ctx); err != nil {
		return err
	}
	f.tail = fsutil.NewTail(f.tail.Path())
	return f.catchUp(ctx)
}
