package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-mdpub/pkg/interfaces"
)

// GoldmarkTokenizer implements interfaces.Tokenizer using the goldmark
// engine. The tokenizer is stateless so callers can reuse a single instance
// across documents without additional locking.
type GoldmarkTokenizer struct {
	md goldmark.Markdown
}

var _ interfaces.Tokenizer = (*GoldmarkTokenizer)(nil)

// NewGoldmarkTokenizer constructs a tokenizer for the given preset name.
// Unknown presets fall back to the gfm-like default. The mapping is
// intentionally conservative; unsupported extension names are ignored.
func NewGoldmarkTokenizer(preset string) *GoldmarkTokenizer {
	return &GoldmarkTokenizer{
		md: goldmark.New(
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithExtensions(collectExtensions(preset)...),
		),
	}
}

var presetRegistry = map[string][]goldmark.Extender{
	"gfm-like":   {extension.GFM},
	"gfm":        {extension.GFM},
	"commonmark": {},
	"zero":       {},
}

func collectExtensions(preset string) []goldmark.Extender {
	key := strings.ToLower(strings.TrimSpace(preset))
	if exts, ok := presetRegistry[key]; ok {
		return exts
	}
	return presetRegistry["gfm-like"]
}

// Tokenize converts source markdown into an ordered token stream. Each token
// carries a zero-based half-open line span into source and the verbatim
// slice it covers. Structural elements goldmark produces that carry no
// content significance are dropped.
func (t *GoldmarkTokenizer) Tokenize(source []byte) ([]interfaces.Token, error) {
	doc := t.md.Parser().Parse(text.NewReader(source))
	lines := splitLines(source)
	starts := lineStarts(lines)

	var tokens []interfaces.Token
	cursor := 0

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		tokenType, ok := classifyNode(node)
		if !ok {
			continue
		}

		var span interfaces.LineSpan
		if tokenType == interfaces.TokenRule {
			span = scanRuleSpan(lines, cursor)
		} else {
			lo, hi, found := subtreeByteRange(node)
			if !found {
				continue
			}
			span = interfaces.LineSpan{
				Start: lineAt(starts, lo),
				End:   lineAt(starts, hi-1) + 1,
			}
			span = adjustSpan(node, span, lines)
		}
		if span.End > len(lines) {
			span.End = len(lines)
		}
		cursor = span.End

		token := interfaces.Token{
			Type:    tokenType,
			Span:    span,
			Content: sliceLines(lines, span),
		}
		if heading, isHeading := node.(*ast.Heading); isHeading {
			token.Level = heading.Level
		}
		if paragraph, isParagraph := node.(*ast.Paragraph); isParagraph {
			token.ImageOnly = paragraphIsImageOnly(paragraph, source)
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

func classifyNode(node ast.Node) (interfaces.TokenType, bool) {
	switch node.(type) {
	case *ast.Heading:
		return interfaces.TokenHeading, true
	case *ast.Paragraph:
		return interfaces.TokenParagraph, true
	case *ast.List:
		return interfaces.TokenList, true
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return interfaces.TokenCode, true
	case *ast.HTMLBlock:
		return interfaces.TokenHTML, true
	case *ast.Blockquote:
		return interfaces.TokenQuote, true
	case *extast.Table:
		return interfaces.TokenTable, true
	case *ast.ThematicBreak:
		return interfaces.TokenRule, true
	default:
		return "", false
	}
}

// subtreeByteRange returns the smallest byte range covering every source
// segment retained in the node's subtree. Container blocks (lists, quotes)
// keep no segments of their own, so the range is collected from descendants.
func subtreeByteRange(node ast.Node) (int, int, bool) {
	lo, hi := -1, -1

	record := func(start, stop int) {
		if stop <= start {
			return
		}
		if lo == -1 || start < lo {
			lo = start
		}
		if stop > hi {
			hi = stop
		}
	}

	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		if n.Type() == ast.TypeBlock {
			segments := n.Lines()
			for i := 0; i < segments.Len(); i++ {
				seg := segments.At(i)
				record(seg.Start, seg.Stop)
			}
		}
		switch typed := n.(type) {
		case *ast.Text:
			record(typed.Segment.Start, typed.Segment.Stop)
		case *ast.FencedCodeBlock:
			if typed.Info != nil {
				record(typed.Info.Segment.Start, typed.Info.Segment.Stop)
			}
		case *ast.HTMLBlock:
			record(typed.ClosureLine.Start, typed.ClosureLine.Stop)
		case *ast.RawHTML:
			for i := 0; i < typed.Segments.Len(); i++ {
				seg := typed.Segments.At(i)
				record(seg.Start, seg.Stop)
			}
		case *ast.Image:
			// Alt text lives in child Text nodes; the destination is not a
			// source segment, so the surrounding lines carry the position.
		}
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			visit(child)
		}
	}
	visit(node)

	if lo == -1 {
		return 0, 0, false
	}
	return lo, hi, true
}

// adjustSpan widens a span to cover delimiter lines goldmark does not retain
// as segments: code fences and setext heading underlines.
func adjustSpan(node ast.Node, span interfaces.LineSpan, lines [][]byte) interfaces.LineSpan {
	switch typed := node.(type) {
	case *ast.FencedCodeBlock:
		if span.Start > 0 && isFenceLine(lines[span.Start-1]) {
			span.Start--
		}
		if span.End < len(lines) && isFenceLine(lines[span.End]) {
			span.End++
		}
	case *ast.Heading:
		if typed.Level <= 2 && span.End < len(lines) && isSetextUnderline(lines[span.End]) {
			span.End++
		}
	}
	return span
}

func isFenceLine(line []byte) bool {
	trimmed := bytes.TrimLeft(line, " ")
	return bytes.HasPrefix(trimmed, []byte("```")) || bytes.HasPrefix(trimmed, []byte("~~~"))
}

func isSetextUnderline(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return false
	}
	marker := trimmed[0]
	if marker != '=' && marker != '-' {
		return false
	}
	for _, c := range trimmed {
		if c != marker {
			return false
		}
	}
	return true
}

// scanRuleSpan locates the first thematic break line at or after cursor.
// Thematic breaks keep no source segments, so the line is found by shape.
func scanRuleSpan(lines [][]byte, cursor int) interfaces.LineSpan {
	for i := cursor; i < len(lines); i++ {
		if isThematicBreakLine(lines[i]) {
			return interfaces.LineSpan{Start: i, End: i + 1}
		}
	}
	return interfaces.LineSpan{Start: cursor, End: cursor}
}

func isThematicBreakLine(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	marker := trimmed[0]
	if marker != '*' && marker != '-' && marker != '_' {
		return false
	}
	count := 0
	for _, c := range trimmed {
		switch c {
		case marker:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

// paragraphIsImageOnly reports whether the paragraph's only non-whitespace
// inline content is a single image reference. Mixed text and image content
// stays a plain paragraph.
func paragraphIsImageOnly(paragraph *ast.Paragraph, source []byte) bool {
	significant := 0
	imageOnly := false

	for child := paragraph.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			value := textNode.Segment.Value(source)
			if len(bytes.TrimSpace(value)) == 0 {
				continue
			}
		}
		significant++
		_, imageOnly = child.(*ast.Image)
	}

	return significant == 1 && imageOnly
}

func splitLines(source []byte) [][]byte {
	if len(source) == 0 {
		return nil
	}
	var lines [][]byte
	start := 0
	for i, c := range source {
		if c == '\n' {
			lines = append(lines, source[start:i+1])
			start = i + 1
		}
	}
	if start < len(source) {
		lines = append(lines, source[start:])
	}
	return lines
}

func lineStarts(lines [][]byte) []int {
	starts := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		starts[i] = offset
		offset += len(line)
	}
	return starts
}

// lineAt returns the index of the line containing byte offset.
func lineAt(starts []int, offset int) int {
	if len(starts) == 0 || offset < 0 {
		return 0
	}
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func sliceLines(lines [][]byte, span interfaces.LineSpan) string {
	var buf bytes.Buffer
	for i := span.Start; i < span.End && i < len(lines); i++ {
		buf.Write(lines[i])
	}
	return strings.TrimRight(buf.String(), " \t\n")
}
