package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-mdpub/internal/checksum"
	"github.com/goliatone/go-mdpub/internal/markdown"
	"github.com/goliatone/go-mdpub/internal/staging"
	"github.com/goliatone/go-mdpub/pkg/interfaces"
)

// Extractor converts a loaded source document into its staged structural
// model: classified blocks grouped into sections, with fingerprints
// computed at block, section, and document level.
type Extractor struct {
	tokenizer  interfaces.Tokenizer
	maxNesting int
}

// NewExtractor builds an Extractor. maxNesting bounds the heading depth
// that still opens a new section.
func NewExtractor(tokenizer interfaces.Tokenizer, maxNesting int) *Extractor {
	return &Extractor{tokenizer: tokenizer, maxNesting: maxNesting}
}

// Extract tokenizes the document body and assembles the staged document.
// The document hash covers the body only; frontmatter changes surface
// through the frontmatter field, not the fingerprint.
func (e *Extractor) Extract(ctx context.Context, src *markdown.SourceDocument) (*staging.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens, err := e.tokenizer.Tokenize(src.Body)
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", src.Path, err)
	}

	blocks := ClassifyAll(tokens)
	groups := GroupBlocks(blocks, e.maxNesting)

	sections := make([]staging.Section, 0, len(groups))
	for position, group := range groups {
		sections = append(sections, assembleSection(group, position))
	}

	return &staging.Document{
		Slug:        src.Slug,
		Path:        src.Path,
		Markdown:    string(src.Body),
		Hash:        checksum.Bytes(src.Body),
		FrontMatter: src.FrontMatter,
		Sections:    sections,
	}, nil
}

// assembleSection fixes block positions, aggregates enrichment inputs, and
// fingerprints the section. Tags are deduplicated preserving first-seen
// order; metrics use last-write-wins when blocks repeat a name.
func assembleSection(blocks []staging.Block, position int) staging.Section {
	var content strings.Builder
	var tags []string
	seen := map[string]struct{}{}
	var metrics map[string]float64

	for i := range blocks {
		blocks[i].Position = float64(i)
		content.WriteString(blocks[i].Content)

		for _, tag := range blocks[i].Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
		for name, value := range blocks[i].Metrics {
			if metrics == nil {
				metrics = map[string]float64{}
			}
			metrics[name] = value
		}
	}

	return staging.Section{
		Position: position,
		Hash:     checksum.Text(content.String()),
		Tags:     tags,
		Metrics:  metrics,
		Blocks:   blocks,
	}
}
