// Package goldmark provides the grammar engine: goldmark's CommonMark and GFM
// grammar extended with LaTeX math and citation blocks, producing a syntax.Tree
// with exact byte offsets.
package goldmark

import (
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/mdstream/pkg/syntax"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Option configures a Parser.
type Option func(*options)

type options struct {
	math      bool
	citations bool
}

// WithMath enables or disables the LaTeX math grammar. Enabled by default.
func WithMath(enabled bool) Option {
	return func(o *options) {
		o.math = enabled
	}
}

// WithCitations enables or disables citation blocks and inline citation
// references. Enabled by default.
func WithCitations(enabled bool) Option {
	return func(o *options) {
		o.citations = enabled
	}
}

// Parser parses source text into a syntax.Tree.
// A Parser holds no per-document state and is safe for concurrent use.
type Parser struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a new goldmark-based parser for the given flavor.
// Supported flavors are "commonmark" and "gfm".
// Invalid flavors default to "gfm".
func New(flavor string, opts ...Option) *Parser {
	o := options{math: true, citations: true}
	for _, opt := range opts {
		opt(&o)
	}

	f := flavorOrDefault(flavor)
	return &Parser{
		flavor: f,
		md:     newGoldmarkInstance(f, o),
	}
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse converts source into a syntax tree spanning [0, len(source)).
//
// Malformed or unterminated constructs never fail: they degrade to
// paragraphs and text. The only error is context cancellation.
func (p *Parser) Parse(ctx context.Context, source string) (*syntax.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	content := []byte(source)
	pc := parser.NewContext()
	spans := newSpanTable(content)
	pc.Set(spanKey, spans)

	gmDoc := p.md.Parser().Parse(text.NewReader(content), parser.WithContext(pc))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	m := newMapper(content, spans)
	return &syntax.Tree{Source: source, Root: m.mapDocument(gmDoc)}, nil
}

// flavorOrDefault returns the flavor if valid, otherwise defaults to GFM.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorGFM
	}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance whose
// block and inline parsers record the byte spans of the nodes they create.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string, o options) goldmark.Markdown {
	blockParsers := parser.DefaultBlockParsers()
	inlineParsers := parser.DefaultInlineParsers()
	paragraphTransformers := parser.DefaultParagraphTransformers()
	var astTransformers []util.PrioritizedValue

	if o.math {
		blockParsers = append(blockParsers, util.Prioritized(newMathBlockParser(), mathBlockPriority))
		inlineParsers = append(inlineParsers, util.Prioritized(newMathInlineParser(), mathInlinePriority))
	}
	if o.citations {
		blockParsers = append(blockParsers, util.Prioritized(newCitationBlockParser(), citationBlockPriority))
		inlineParsers = append(inlineParsers, util.Prioritized(newCitationRefParser(), citationRefPriority))
	}

	switch flavor {
	case FlavorGFM:
		inlineParsers = append(inlineParsers,
			util.Prioritized(extension.NewStrikethroughParser(), 500),
			util.Prioritized(extension.NewTaskCheckBoxParser(), 0),
		)
		paragraphTransformers = append(paragraphTransformers,
			util.Prioritized(extension.NewTableParagraphTransformer(), 200),
		)
		astTransformers = append(astTransformers,
			util.Prioritized(extension.NewTableASTTransformer(), 0),
		)
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	p := parser.NewParser(
		parser.WithBlockParsers(trackBlockParsers(blockParsers)...),
		parser.WithInlineParsers(trackInlineParsers(inlineParsers)...),
		parser.WithParagraphTransformers(paragraphTransformers...),
		parser.WithASTTransformers(astTransformers...),
	)

	return goldmark.New(goldmark.WithParser(p))
}
