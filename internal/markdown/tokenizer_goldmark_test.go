package markdown

import (
	"strings"
	"testing"

	"github.com/goliatone/go-mdpub/pkg/interfaces"
)

const tokenizerFixture = "# Title\n" +
	"\n" +
	"Intro paragraph with *emphasis*.\n" +
	"\n" +
	"```go\n" +
	"fmt.Println(\"hi\")\n" +
	"```\n" +
	"\n" +
	"- one\n" +
	"- two\n" +
	"\n" +
	"| a | b |\n" +
	"|---|---|\n" +
	"| 1 | 2 |\n" +
	"\n" +
	"> quoted line\n" +
	"\n" +
	"<div>raw</div>\n" +
	"\n" +
	"![diagram](arch.png)\n" +
	"\n" +
	"---\n" +
	"\n" +
	"Footer text.\n"

func TestTokenizeCoversEveryBlockKind(t *testing.T) {
	t.Parallel()

	tokenizer := NewGoldmarkTokenizer("gfm")
	tokens, err := tokenizer.Tokenize([]byte(tokenizerFixture))
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}

	want := []interfaces.TokenType{
		interfaces.TokenHeading,
		interfaces.TokenParagraph,
		interfaces.TokenCode,
		interfaces.TokenList,
		interfaces.TokenTable,
		interfaces.TokenQuote,
		interfaces.TokenHTML,
		interfaces.TokenParagraph,
		interfaces.TokenRule,
		interfaces.TokenParagraph,
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(tokens), tokens)
	}
	for i, token := range tokens {
		if token.Type != want[i] {
			t.Fatalf("token %d: expected type %s, got %s", i, want[i], token.Type)
		}
	}
}

func TestTokenizeHeadingLevelAndContent(t *testing.T) {
	t.Parallel()

	tokenizer := NewGoldmarkTokenizer("gfm")
	tokens, err := tokenizer.Tokenize([]byte(tokenizerFixture))
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}

	heading := tokens[0]
	if heading.Level != 1 {
		t.Fatalf("expected heading level 1, got %d", heading.Level)
	}
	if heading.Content != "# Title" {
		t.Fatalf("unexpected heading content %q", heading.Content)
	}
	if heading.Span != (interfaces.LineSpan{Start: 0, End: 1}) {
		t.Fatalf("unexpected heading span %+v", heading.Span)
	}
}

func TestTokenizeFencedCodeKeepsDelimiters(t *testing.T) {
	t.Parallel()

	tokenizer := NewGoldmarkTokenizer("gfm")
	tokens, err := tokenizer.Tokenize([]byte(tokenizerFixture))
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}

	code := tokens[2]
	if !strings.HasPrefix(code.Content, "```go") {
		t.Fatalf("code content should open with the fence, got %q", code.Content)
	}
	if !strings.HasSuffix(code.Content, "```") {
		t.Fatalf("code content should close with the fence, got %q", code.Content)
	}
}

func TestTokenizeImageOnlyParagraph(t *testing.T) {
	t.Parallel()

	tokenizer := NewGoldmarkTokenizer("gfm")
	tokens, err := tokenizer.Tokenize([]byte(tokenizerFixture))
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}

	image := tokens[7]
	if !image.ImageOnly {
		t.Fatalf("expected image-only paragraph, got %+v", image)
	}
	if tokens[1].ImageOnly {
		t.Fatal("prose paragraph must not be flagged image-only")
	}
}

func TestTokenizeRuleSpan(t *testing.T) {
	t.Parallel()

	tokenizer := NewGoldmarkTokenizer("gfm")
	tokens, err := tokenizer.Tokenize([]byte(tokenizerFixture))
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}

	rule := tokens[8]
	if rule.Content != "---" {
		t.Fatalf("unexpected rule content %q", rule.Content)
	}
	if rule.Span.End != rule.Span.Start+1 {
		t.Fatalf("rule should span one line, got %+v", rule.Span)
	}
}

func TestTokenizeSetextHeadingIncludesUnderline(t *testing.T) {
	t.Parallel()

	tokenizer := NewGoldmarkTokenizer("gfm")
	tokens, err := tokenizer.Tokenize([]byte("Title\n=====\n\nBody.\n"))
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}

	heading := tokens[0]
	if heading.Type != interfaces.TokenHeading || heading.Level != 1 {
		t.Fatalf("expected level 1 heading, got %+v", heading)
	}
	if !strings.Contains(heading.Content, "=====") {
		t.Fatalf("setext underline missing from %q", heading.Content)
	}
}

func TestTokenizeTableRequiresGFM(t *testing.T) {
	t.Parallel()

	source := []byte("| a | b |\n|---|---|\n| 1 | 2 |\n")

	gfm, err := NewGoldmarkTokenizer("gfm").Tokenize(source)
	if err != nil {
		t.Fatalf("tokenize gfm: %v", err)
	}
	if len(gfm) != 1 || gfm[0].Type != interfaces.TokenTable {
		t.Fatalf("expected one table token, got %+v", gfm)
	}

	plain, err := NewGoldmarkTokenizer("commonmark").Tokenize(source)
	if err != nil {
		t.Fatalf("tokenize commonmark: %v", err)
	}
	for _, token := range plain {
		if token.Type == interfaces.TokenTable {
			t.Fatal("commonmark preset must not produce table tokens")
		}
	}
}

func TestTokenizeEmptySource(t *testing.T) {
	t.Parallel()

	tokens, err := NewGoldmarkTokenizer("gfm").Tokenize(nil)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("expected no tokens, got %d", len(tokens))
	}
}
