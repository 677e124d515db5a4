package lexer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/pkg/lexcache"
	"github.com/yaklabco/mdstream/pkg/lexer"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

type lexCounter struct {
	hits, misses int
}

func (c *lexCounter) ObserveLex(cacheHit bool, _ int) {
	if cacheHit {
		c.hits++
	} else {
		c.misses++
	}
}

type parseCounter struct {
	modes []string
}

func (c *parseCounter) ObserveParse(mode string, _ int) {
	c.modes = append(c.modes, mode)
}

func TestLex_TopLevelNodes(t *testing.T) {
	t.Parallel()

	source := "# Title\n\nSome *text*.\n\n```go\npackage main\n```\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	nodes, err := lexer.New(lexer.WithCache(nil)).Lex(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, "Heading,Paragraph,CodeBlock,Table", lexer.Summary(nodes))
	assert.Equal(t, "# Title", lexer.Raw(source, nodes[0]))
}

func TestLex_CacheHit(t *testing.T) {
	t.Parallel()

	cache := lexcache.New[[]mdast.Node](4)
	counter := &lexCounter{}
	l := lexer.New(lexer.WithCache(cache), lexer.WithObserver(counter))
	ctx := context.Background()

	first, err := l.Lex(ctx, "hello")
	require.NoError(t, err)
	second, err := lexer.New(lexer.WithCache(cache), lexer.WithObserver(counter)).Lex(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, 1, counter.misses)
	assert.Equal(t, 1, counter.hits)
	require.Len(t, second, 1)
	assert.Same(t, first[0], second[0])
}

func TestLex_CacheKeyIncludesOptions(t *testing.T) {
	t.Parallel()

	cache := lexcache.New[[]mdast.Node](4)
	ctx := context.Background()

	withMath, err := lexer.New(lexer.WithCache(cache)).Lex(ctx, "$x$")
	require.NoError(t, err)
	withoutMath, err := lexer.New(lexer.WithCache(cache), lexer.WithMath(false)).Lex(ctx, "$x$")
	require.NoError(t, err)

	assert.Len(t, mdast.FindByType[*mdast.LatexInline](withMath[0]), 1)
	assert.Empty(t, mdast.FindByType[*mdast.LatexInline](withoutMath[0]))
	assert.Equal(t, 2, cache.Len())
}

func TestLex_IncrementalAcrossCalls(t *testing.T) {
	t.Parallel()

	parses := &parseCounter{}
	l := lexer.New(lexer.WithCache(nil), lexer.WithParseObserver(parses))
	ctx := context.Background()

	_, err := l.Lex(ctx, "one\n\ntwo\n\nthree")
	require.NoError(t, err)
	nodes, err := l.Lex(ctx, "one\n\ntwo\n\nthree\n\nfour")
	require.NoError(t, err)

	assert.Equal(t, []string{"full", "incremental"}, parses.modes)
	assert.Len(t, nodes, 4)

	l.Reset()
	_, err = l.Lex(ctx, "one\n\ntwo\n\nthree\n\nfour")
	require.NoError(t, err)
	assert.Equal(t, "full", parses.modes[2])
}

func TestLex_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lexer.New(lexer.WithCache(nil)).Lex(ctx, "text")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLex_Default(t *testing.T) {
	t.Parallel()

	nodes, err := lexer.Lex(context.Background(), "<citation><url>u</url></citation>")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.IsType(t, &mdast.Citation{}, nodes[0])
}

func TestRaw_OutOfRange(t *testing.T) {
	t.Parallel()

	n := &mdast.Text{Base: mdast.Base{Span: mdast.Span{Start: 2, End: 9}}}
	assert.Empty(t, lexer.Raw("abc", n))
}
