package sink

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// Client message types.
const (
	InputText  = "text"
	InputFlush = "flush"
	InputReset = "reset"
)

// DefaultReadLimit bounds a single client message in bytes.
const DefaultReadLimit = 1 << 20

// ErrUnknownInput is returned for client messages of an unknown type.
var ErrUnknownInput = errors.New("unknown input type")

// Input is a message sent by a client.
type Input struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// LexerFactory creates the lexer of a new document.
type LexerFactory func() stream.Lexer

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithReadLimit bounds the size of client messages.
func WithReadLimit(limit int64) ServerOption {
	return func(s *Server) {
		if limit > 0 {
			s.readLimit = limit
		}
	}
}

// WithPatcherOptions applies opts to every patcher the server creates.
func WithPatcherOptions(opts ...stream.Option) ServerOption {
	return func(s *Server) {
		s.patcherOpts = append(s.patcherOpts, opts...)
	}
}

// WithCheckOrigin overrides the origin check of the upgrader.
func WithCheckOrigin(check func(r *http.Request) bool) ServerOption {
	return func(s *Server) {
		s.upgrader.CheckOrigin = check
	}
}

// Server is an http.Handler streaming markdown over websockets. Each
// connection is one document: clients send Input messages and receive
// Message operations.
type Server struct {
	newLexer    LexerFactory
	upgrader    websocket.Upgrader
	readLimit   int64
	patcherOpts []stream.Option
}

// NewServer creates a Server lexing with lexers from newLexer.
func NewServer(newLexer LexerFactory, opts ...ServerOption) *Server {
	s := &Server{
		newLexer:  newLexer,
		readLimit: DefaultReadLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP upgrades the request and runs the document until the client
// disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logging.FieldError, err)
		return
	}
	defer conn.Close()

	document := uuid.New()
	ctx := logging.WithDocument(r.Context(), document.String())
	logger = logging.FromContext(ctx)
	logger.Info("document opened")

	err = s.run(ctx, conn, document)
	switch {
	case err == nil, peerClosed(err), errors.Is(err, websocket.ErrCloseSent):
		logger.Info("document closed")
	default:
		logger.Warn("document aborted", logging.FieldError, err)
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
	}
}

func (s *Server) run(ctx context.Context, conn *websocket.Conn, document uuid.UUID) error {
	conn.SetReadLimit(s.readLimit)
	patcher := stream.NewPatcher(s.newLexer(), NewWebSocket(conn, document), s.patcherOpts...)

	for {
		var in Input
		if err := conn.ReadJSON(&in); err != nil {
			if peerClosed(err) {
				// The close frame has been answered; nothing more can be sent.
				logging.FromContext(ctx).Debug("discarding pending text",
					logging.FieldBytes, len(patcher.Pending()))
				return err
			}
			return fmt.Errorf("read input: %w", err)
		}
		if err := Apply(ctx, patcher, in); err != nil {
			return err
		}
	}
}

func peerClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// Apply performs one client input on patcher.
func Apply(ctx context.Context, patcher *stream.Patcher, in Input) error {
	switch in.Type {
	case InputText:
		return patcher.Write(ctx, in.Text)
	case InputFlush:
		return patcher.Flush(ctx)
	case InputReset:
		return patcher.Reset(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownInput, in.Type)
	}
}
