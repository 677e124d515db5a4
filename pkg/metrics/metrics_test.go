package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/pkg/metrics"
)

func TestCollector_ObserveParse(t *testing.T) {
	t.Parallel()

	c := metrics.New()
	c.ObserveParse("full", 0)
	c.ObserveParse("incremental", 3)
	c.ObserveParse("incremental", 2)

	count, err := testutil.GatherAndCount(c.Registry(), "mdstream_parse_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per mode")

	expected := `
# HELP mdstream_parse_reused_blocks_total Top-level blocks reused from a previous parse
# TYPE mdstream_parse_reused_blocks_total counter
mdstream_parse_reused_blocks_total 5
`
	err = testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "mdstream_parse_reused_blocks_total")
	assert.NoError(t, err)
}

func TestCollector_ObserveLex(t *testing.T) {
	t.Parallel()

	c := metrics.New()
	c.ObserveLex(false, 2)
	c.ObserveLex(true, 2)
	c.ObserveLex(true, 4)

	expected := `
# HELP mdstream_lex_total Lex calls by cache outcome
# TYPE mdstream_lex_total counter
mdstream_lex_total{cache="hit"} 2
mdstream_lex_total{cache="miss"} 1
`
	err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "mdstream_lex_total")
	assert.NoError(t, err)
}

func TestCollector_ObserveFlush(t *testing.T) {
	t.Parallel()

	c := metrics.New()
	c.ObserveFlush(0, 1)
	c.ObserveFlush(2, 1)

	expected := `
# HELP mdstream_patcher_flushes_total Patcher operations emitted to consumers
# TYPE mdstream_patcher_flushes_total counter
mdstream_patcher_flushes_total{op="append"} 1
mdstream_patcher_flushes_total{op="replace"} 2
`
	err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "mdstream_patcher_flushes_total")
	assert.NoError(t, err)
}

func TestCollector_Handler(t *testing.T) {
	t.Parallel()

	c := metrics.New()
	c.ObserveParse("cached", 0)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mdstream_parse_total{mode="cached"} 1`)
}
