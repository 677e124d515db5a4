package lexer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/yaklabco/mdstream/pkg/lexcache"
	"github.com/yaklabco/mdstream/pkg/lexer"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

var benchSource = strings.Repeat("- item with `code`\n- [ ] task\n\n> quote $a+b$\n\n", 20)

func BenchmarkLex_Uncached(b *testing.B) {
	ctx := context.Background()
	b.ReportAllocs()

	for b.Loop() {
		if _, err := lexer.New(lexer.WithCache(nil)).Lex(ctx, benchSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLex_Cached(b *testing.B) {
	ctx := context.Background()
	l := lexer.New(lexer.WithCache(lexcache.New[[]mdast.Node](lexcache.DefaultSize)))
	if _, err := l.Lex(ctx, benchSource); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()

	for b.Loop() {
		if _, err := l.Lex(ctx, benchSource); err != nil {
			b.Fatal(err)
		}
	}
}
