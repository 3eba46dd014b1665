package interfaces

// TokenType identifies the structural kind of a top-level markdown token.
type TokenType string

const (
	TokenHeading   TokenType = "heading"
	TokenParagraph TokenType = "paragraph"
	TokenList      TokenType = "list"
	TokenTable     TokenType = "table"
	TokenCode      TokenType = "code"
	TokenHTML      TokenType = "html"
	TokenQuote     TokenType = "quote"
	TokenRule      TokenType = "rule"
)

// LineSpan locates a token within the source text. Lines are zero-based and
// the range is half-open: the token covers lines [Start, End).
type LineSpan struct {
	Start int
	End   int
}

// Token is a single top-level structural element produced by a Tokenizer.
// Content is the verbatim source slice covered by Span, trailing whitespace
// trimmed. Level is only meaningful for headings (1-6, 0 when the marker is
// malformed). ImageOnly reports that a paragraph's sole non-whitespace inline
// content is a single image reference.
type Token struct {
	Type      TokenType
	Span      LineSpan
	Content   string
	Level     int
	ImageOnly bool
}

// Tokenizer converts raw markdown text into an ordered token stream. The
// implementation must be deterministic: identical input yields an identical
// stream across runs and machines.
type Tokenizer interface {
	Tokenize(source []byte) ([]Token, error)
}
