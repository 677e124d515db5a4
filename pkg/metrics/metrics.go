// Package metrics exposes Prometheus counters for parsing, lexing and
// patcher flushes.
//
// A Collector satisfies the observer interfaces of the incremental, lexer
// and stream packages without importing them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mdstream"

// Collector records metrics into its own registry.
type Collector struct {
	registry *prometheus.Registry

	// parses counts parses by mode (full, incremental, cached).
	parses *prometheus.CounterVec

	// reusedBlocks counts top-level blocks taken from a previous tree.
	reusedBlocks prometheus.Counter

	// lexes counts lex calls by cache outcome (hit, miss).
	lexes *prometheus.CounterVec

	// lexNodes observes the number of top-level nodes per lex.
	lexNodes prometheus.Histogram

	// flushes counts patcher flushes by operation (append, replace).
	flushes *prometheus.CounterVec

	// flushedNodes counts nodes emitted by operation.
	flushedNodes *prometheus.CounterVec
}

// New creates a Collector with a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		parses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "total",
			Help:      "Parses by mode",
		}, []string{"mode"}),
		reusedBlocks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "reused_blocks_total",
			Help:      "Top-level blocks reused from a previous parse",
		}),
		lexes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lex",
			Name:      "total",
			Help:      "Lex calls by cache outcome",
		}, []string{"cache"}),
		lexNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lex",
			Name:      "nodes",
			Help:      "Top-level nodes produced per lex call",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),
		flushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "patcher",
			Name:      "flushes_total",
			Help:      "Patcher operations emitted to consumers",
		}, []string{"op"}),
		flushedNodes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "patcher",
			Name:      "nodes_total",
			Help:      "Nodes emitted to consumers by operation",
		}, []string{"op"}),
	}
}

// ObserveParse records one parse.
func (c *Collector) ObserveParse(mode string, reusedBlocks int) {
	c.parses.WithLabelValues(mode).Inc()
	c.reusedBlocks.Add(float64(reusedBlocks))
}

// ObserveLex records one lex call.
func (c *Collector) ObserveLex(cacheHit bool, nodes int) {
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	c.lexes.WithLabelValues(outcome).Inc()
	c.lexNodes.Observe(float64(nodes))
}

// ObserveFlush records one patcher flush. A zero count means the
// operation was not emitted.
func (c *Collector) ObserveFlush(appended, replaced int) {
	if appended > 0 {
		c.flushes.WithLabelValues("append").Inc()
		c.flushedNodes.WithLabelValues("append").Add(float64(appended))
	}
	c.flushes.WithLabelValues("replace").Inc()
	c.flushedNodes.WithLabelValues("replace").Add(float64(replaced))
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
