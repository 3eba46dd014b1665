// Package extract turns a token stream into the staged structural model:
// typed blocks, heading-delimited sections, and content fingerprints.
package extract

import (
	"github.com/goliatone/go-mdpub/internal/checksum"
	"github.com/goliatone/go-mdpub/internal/domain"
	"github.com/goliatone/go-mdpub/internal/staging"
	"github.com/goliatone/go-mdpub/pkg/interfaces"
)

// classifierState tracks the footer boundary. A horizontal rule moves the
// classifier into stateFooter for the remainder of the document.
type classifierState int

const (
	stateBody classifierState = iota
	stateFooter
)

var tokenBlockTypes = map[interfaces.TokenType]domain.BlockType{
	interfaces.TokenHeading: domain.BlockHeading,
	interfaces.TokenList:    domain.BlockList,
	interfaces.TokenCode:    domain.BlockContent,
	interfaces.TokenTable:   domain.BlockTable,
	interfaces.TokenHTML:    domain.BlockHTML,
	interfaces.TokenQuote:   domain.BlockQuote,
}

// Classifier maps tokens to typed staged blocks. It is a small state
// machine rather than a pure per-token function because the footer boundary
// is a document-scoped decision.
type Classifier struct {
	state classifierState
}

// NewClassifier returns a classifier at the start-of-document state.
func NewClassifier() *Classifier {
	return &Classifier{state: stateBody}
}

// Classify returns the staged block for token, or false when the token
// carries no content significance. A horizontal rule emits no block but
// flips the classifier into the footer state permanently.
func (c *Classifier) Classify(token interfaces.Token) (staging.Block, bool) {
	if token.Type == interfaces.TokenRule {
		c.state = stateFooter
		return staging.Block{}, false
	}

	blockType, ok := classifyToken(token)
	if !ok {
		return staging.Block{}, false
	}

	block := staging.Block{
		Type:    blockType,
		Content: token.Content,
		Hash:    checksum.Text(token.Content),
		Level:   headingLevel(token),
	}
	if c.state == stateFooter {
		block.Type = domain.BlockFooter
	}
	return block, true
}

// ClassifyAll runs the token stream through a fresh classifier and returns
// the ordered block sequence.
func ClassifyAll(tokens []interfaces.Token) []staging.Block {
	classifier := NewClassifier()
	var blocks []staging.Block
	for _, token := range tokens {
		if block, ok := classifier.Classify(token); ok {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func classifyToken(token interfaces.Token) (domain.BlockType, bool) {
	if token.Type == interfaces.TokenParagraph {
		if token.ImageOnly {
			return domain.BlockFigure, true
		}
		return domain.BlockParagraph, true
	}
	blockType, ok := tokenBlockTypes[token.Type]
	return blockType, ok
}

// headingLevel returns the captured heading level when it falls in the
// valid 1-6 range, nil otherwise. A malformed marker is not an error.
func headingLevel(token interfaces.Token) *int {
	if token.Type != interfaces.TokenHeading {
		return nil
	}
	if token.Level < 1 || token.Level > 6 {
		return nil
	}
	level := token.Level
	return &level
}
