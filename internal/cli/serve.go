package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/internal/sink"
	"github.com/yaklabco/mdstream/pkg/config"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// streamPath is the websocket endpoint of the serve command.
const streamPath = "/stream"

type serveFlags struct {
	documentFlags
	addr      string
	readLimit int64
	metrics   bool
}

func newServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve streaming parses over a websocket",
		Long: `Listen for websocket connections on /stream. Each connection is one
document: clients send {"type":"text","text":"..."} increments, "flush" to lex
buffered text and "reset" to start over, and receive append, replace and reset
operations as JSON messages.

With metrics enabled, Prometheus metrics are served on the configured path.

Examples:
  mdstream serve
  mdstream serve --addr :8080 --metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	addDocumentFlags(cmd, &flags.documentFlags)
	cmd.Flags().StringVar(&flags.addr, "addr", config.DefaultServeAddr, "listen address")
	cmd.Flags().Int64Var(&flags.readLimit, "read-limit", config.DefaultReadLimit, "largest accepted client message in bytes")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "serve Prometheus metrics")

	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	cliCfg := flags.cliConfig(cmd)
	if cmd.Flags().Changed("addr") {
		cliCfg.Serve.Addr = flags.addr
	}
	if cmd.Flags().Changed("read-limit") {
		cliCfg.Serve.ReadLimit = flags.readLimit
	}
	if cmd.Flags().Changed("metrics") {
		cliCfg.Metrics.Enabled = config.Bool(flags.metrics)
	}

	cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)
	eng := newEngine(cfg)

	server := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           newServeMux(eng),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			logging.FieldAddr, cfg.Serve.Addr,
			logging.FieldFlavor, cfg.Flavor,
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newServeMux routes the websocket endpoint and, when enabled, metrics.
func newServeMux(eng *engine) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(streamPath, sink.NewServer(
		func() stream.Lexer { return eng.newLexer() },
		sink.WithReadLimit(eng.cfg.Serve.ReadLimit),
		sink.WithPatcherOptions(eng.patcherOptions()...),
	))
	if eng.collector != nil {
		mux.Handle(eng.cfg.Metrics.Path, eng.collector.Handler())
	}
	return mux
}
