package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/internal/sink"
	"github.com/yaklabco/mdstream/pkg/config"
)

func TestSplitRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		n     int
		want  []string
	}{
		{"empty", "", 3, nil},
		{"exact", "abcdef", 3, []string{"abc", "def"}},
		{"remainder", "abcde", 2, []string{"ab", "cd", "e"}},
		{"multibyte", "中文字a", 2, []string{"中文", "字a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, splitRunes(tt.input, tt.n))
		})
	}
}

func TestFollower_CatchUp(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/doc.md"
	require.NoError(t, writeString(path, "# Title\n\nFirst"))

	cfg := config.NewConfig()
	var out strings.Builder
	printer := newTestPrinter(&out)
	f := newFollower(path, newEngine(cfg).newPatcher(printer))
	ctx := context.Background()

	require.NoError(t, f.catchUp(ctx))
	assert.Equal(t, "# Title\n\nFirst", f.patcher.Content())

	require.NoError(t, appendString(path, " paragraph.\n"))
	require.NoError(t, f.catchUp(ctx))
	assert.Equal(t, "# Title\n\nFirst paragraph.\n", f.patcher.Content())

	require.NoError(t, writeString(path, "new"))
	require.NoError(t, f.catchUp(ctx))
	assert.Equal(t, "new", f.patcher.Content())
	assert.Contains(t, out.String(), "reset")
}

func TestServeMux(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Metrics.Enabled = config.Bool(true)
	eng := newEngine(cfg)
	server := httptest.NewServer(newServeMux(eng))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + streamPath
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(sink.Input{Type: sink.InputText, Text: "# Hello\n\nworld"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg sink.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "replace", msg.Op)
	require.NotEmpty(t, msg.Nodes)
	assert.Equal(t, "Heading", msg.Nodes[0]["type"])

	metricsResp, err := http.Get(server.URL + cfg.Metrics.Path)
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
	assert.Contains(t, string(body), "mdstream_lex_total")
}

func TestServeMux_MetricsDisabled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(newServeMux(newEngine(config.NewConfig())))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
