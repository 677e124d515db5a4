package sink_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/internal/sink"
	"github.com/yaklabco/mdstream/pkg/lexer"
	"github.com/yaklabco/mdstream/pkg/stream"
)

func newLexer() stream.Lexer {
	return lexer.New(lexer.WithCache(nil))
}

func TestJSONLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	doc := uuid.New()
	p := stream.NewPatcher(newLexer(), sink.NewJSONLines(&buf, doc))
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, "# A\n\npara\n\nlast"))
	require.NoError(t, p.Reset(ctx))

	var msgs []sink.Message
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var m sink.Message
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		msgs = append(msgs, m)
	}
	require.Len(t, msgs, 3)

	assert.Equal(t, "append", msgs[0].Op)
	assert.Len(t, msgs[0].Nodes, 2)
	assert.Equal(t, "replace", msgs[1].Op)
	assert.Equal(t, "reset", msgs[2].Op)
	assert.Empty(t, msgs[2].Nodes)
	for i, m := range msgs {
		assert.Equal(t, doc.String(), m.Document)
		assert.Equal(t, uint64(i+1), m.Seq)
	}
	assert.Equal(t, "Heading", msgs[0].Nodes[0]["type"])
}

func TestApply_UnknownInput(t *testing.T) {
	t.Parallel()

	p := stream.NewPatcher(newLexer(), stream.NewRecorder())
	err := sink.Apply(context.Background(), p, sink.Input{Type: "bogus"})
	require.ErrorIs(t, err, sink.ErrUnknownInput)
}

func TestServer_RoundTrip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(sink.NewServer(newLexer))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(sink.Input{Type: sink.InputText, Text: "hello"}))
	require.NoError(t, conn.WriteJSON(sink.Input{Type: sink.InputFlush}))

	var msg sink.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "replace", msg.Op)
	assert.Equal(t, uint64(1), msg.Seq)
	_, err = uuid.Parse(msg.Document)
	require.NoError(t, err)
	require.Len(t, msg.Nodes, 1)
	assert.Equal(t, "Paragraph", msg.Nodes[0]["type"])

	require.NoError(t, conn.WriteJSON(sink.Input{Type: sink.InputReset}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "reset", msg.Op)
	assert.Equal(t, uint64(2), msg.Seq)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_ClientCloseDiscardsPending(t *testing.T) {
	t.Parallel()

	var logs syncBuffer
	logger := logging.NewWithWriter(&logs, "debug")
	server := sink.NewServer(newLexer)
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(done)
		server.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// Below the flush threshold, so the text is still pending at close.
	require.NoError(t, conn.WriteJSON(sink.Input{Type: sink.InputText, Text: "abc"}))
	bye := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, bye))

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not finish the document")
	}

	out := logs.String()
	assert.Contains(t, out, "document closed")
	assert.Contains(t, out, "discarding pending text")
	assert.NotContains(t, out, "document aborted")
}
