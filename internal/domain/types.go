package domain

// BlockType restricts content blocks to a predefined closed set of elements.
type BlockType string

const (
	// BlockContent is the generic type for code and other verbatim content.
	BlockContent BlockType = "content"
	// BlockHeading is a markdown heading of any depth.
	BlockHeading BlockType = "heading"
	// BlockParagraph is a plain prose paragraph.
	BlockParagraph BlockType = "paragraph"
	// BlockList covers both bulleted and ordered lists.
	BlockList BlockType = "list"
	// BlockTable is a pipe table.
	BlockTable BlockType = "table"
	// BlockFigure is a paragraph whose only non-whitespace inline content is
	// a single image reference.
	BlockFigure BlockType = "figure"
	// BlockFooter retypes any block that appears after a horizontal rule.
	BlockFooter BlockType = "footer"
	// BlockHTML is a raw HTML block.
	BlockHTML BlockType = "html"
	// BlockQuote is a blockquote.
	BlockQuote BlockType = "quote"
)

// Valid reports whether the block type belongs to the closed set.
func (t BlockType) Valid() bool {
	switch t {
	case BlockContent, BlockHeading, BlockParagraph, BlockList, BlockTable,
		BlockFigure, BlockFooter, BlockHTML, BlockQuote:
		return true
	}
	return false
}

// CommitStatus classifies the outcome of reconciling one staged document
// against stored state.
type CommitStatus string

const (
	// StatusCreated indicates the document was stored for the first time.
	StatusCreated CommitStatus = "created"
	// StatusUpdated indicates the stored document was overwritten and a
	// version snapshot was taken.
	StatusUpdated CommitStatus = "updated"
	// StatusUnchanged indicates the fingerprints matched and no write occurred.
	StatusUnchanged CommitStatus = "unchanged"
)
