// Package lexer turns markdown source into top-level mdast nodes.
//
// A Lexer belongs to one logical document: it keeps the incremental parse
// state of that document so that appended text reuses earlier blocks.
// Results are memoized in a process-wide cache keyed by source text.
package lexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/incremental"
	"github.com/yaklabco/mdstream/pkg/lexcache"
	"github.com/yaklabco/mdstream/pkg/mdast"
	"github.com/yaklabco/mdstream/pkg/parser/goldmark"
)

// sharedCache is used by every Lexer without an explicit cache.
//
//nolint:gochecknoglobals // process-wide lex cache
var sharedCache = lexcache.New[[]mdast.Node](lexcache.DefaultSize)

// SharedCache returns the process-wide cache.
func SharedCache() *lexcache.Cache[[]mdast.Node] {
	return sharedCache
}

// Observer is notified once per Lex call.
type Observer interface {
	ObserveLex(cacheHit bool, nodes int)
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithFlavor selects the markdown flavor. Defaults to GFM.
func WithFlavor(flavor string) Option {
	return func(l *Lexer) {
		l.flavor = flavor
	}
}

// WithMath enables or disables LaTeX math. Enabled by default.
func WithMath(enabled bool) Option {
	return func(l *Lexer) {
		l.math = enabled
	}
}

// WithCitations enables or disables citations. Enabled by default.
func WithCitations(enabled bool) Option {
	return func(l *Lexer) {
		l.citations = enabled
	}
}

// WithLanguageDetection enables or disables guessing code block languages.
// Enabled by default.
func WithLanguageDetection(enabled bool) Option {
	return func(l *Lexer) {
		l.detectLanguage = enabled
	}
}

// WithCache replaces the shared cache. A nil cache disables caching.
func WithCache(cache *lexcache.Cache[[]mdast.Node]) Option {
	return func(l *Lexer) {
		l.cache = cache
		l.cacheSet = true
	}
}

// WithObserver registers an observer of lex calls.
func WithObserver(observer Observer) Option {
	return func(l *Lexer) {
		l.observer = observer
	}
}

// WithParseObserver registers an observer of the underlying parses.
func WithParseObserver(observer incremental.Observer) Option {
	return func(l *Lexer) {
		l.parseObserver = observer
	}
}

// Lexer lexes successive snapshots of one document.
// A Lexer is not safe for concurrent use.
type Lexer struct {
	flavor         string
	math           bool
	citations      bool
	detectLanguage bool

	cache         *lexcache.Cache[[]mdast.Node]
	cacheSet      bool
	observer      Observer
	parseObserver incremental.Observer

	controller *incremental.Controller
	state      *incremental.State
	keyPrefix  string
}

// New creates a Lexer.
func New(opts ...Option) *Lexer {
	l := &Lexer{
		flavor:         goldmark.FlavorGFM,
		math:           true,
		citations:      true,
		detectLanguage: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if !l.cacheSet {
		l.cache = sharedCache
	}

	p := goldmark.New(l.flavor, goldmark.WithMath(l.math), goldmark.WithCitations(l.citations))
	var controllerOpts []incremental.Option
	if l.parseObserver != nil {
		controllerOpts = append(controllerOpts, incremental.WithObserver(l.parseObserver))
	}
	l.controller = incremental.NewController(p, controllerOpts...)
	l.flavor = p.Flavor()
	l.keyPrefix = fmt.Sprintf("%s|math=%t|citations=%t|detect=%t\x00",
		l.flavor, l.math, l.citations, l.detectLanguage)
	return l
}

// Lex returns the top-level nodes of source.
// The returned nodes are shared with the cache and must not be modified.
func (l *Lexer) Lex(ctx context.Context, source string) ([]mdast.Node, error) {
	logger := logging.FromContext(ctx)
	key := l.keyPrefix + source

	if l.cache != nil {
		if nodes, ok := l.cache.Get(key); ok {
			logger.Debug("lex cache hit", logging.FieldBytes, len(source), logging.FieldNodes, len(nodes))
			l.observe(true, len(nodes))
			return nodes, nil
		}
	}

	result, state, err := l.controller.ParseIncremental(ctx, source, l.state)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}
	l.state = state

	doc := mdast.Project(result.Tree, source, mdast.WithLanguageDetection(l.detectLanguage))
	if l.cache != nil {
		l.cache.Put(key, doc.Children)
	}
	logger.Debug("lexed",
		logging.FieldBytes, len(source),
		logging.FieldNodes, len(doc.Children),
		logging.FieldMode, result.Mode.String(),
	)
	l.observe(false, len(doc.Children))
	return doc.Children, nil
}

// Reset discards the incremental state. The cache is kept.
func (l *Lexer) Reset() {
	l.state = nil
}

// Flavor returns the effective markdown flavor.
func (l *Lexer) Flavor() string {
	return l.flavor
}

func (l *Lexer) observe(hit bool, nodes int) {
	if l.observer != nil {
		l.observer.ObserveLex(hit, nodes)
	}
}

// Lex lexes source with a fresh default Lexer.
func Lex(ctx context.Context, source string) ([]mdast.Node, error) {
	return New().Lex(ctx, source)
}

// Raw returns the source text a node covers.
func Raw(source string, n mdast.Node) string {
	span := n.Pos()
	if span.Start < 0 || span.End > len(source) || span.Start > span.End {
		return ""
	}
	return source[span.Start:span.End]
}

// Summary renders node types as a comma separated list, for logs.
func Summary(nodes []mdast.Node) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = mdast.Type(n)
	}
	return strings.Join(names, ",")
}
