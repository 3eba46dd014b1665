// Package staging defines the durable intermediate representation written
// by the extract stage and consumed by the commit stage. The contract is
// storage independent: one JSON object per source document, stable enough
// to be written by one process and read by another later.
package staging

import "github.com/goliatone/go-mdpub/internal/domain"

// Block is the atomic typed content unit inside a staged section. Content
// is the verbatim source slice; Hash fingerprints it. Tags and Metrics are
// opaque enrichment inputs that external tooling may attach between extract
// and commit.
type Block struct {
	Type     domain.BlockType   `json:"type"`
	Content  string             `json:"content"`
	Hash     string             `json:"hash"`
	Position float64            `json:"position"`
	Level    *int               `json:"level,omitempty"`
	Tags     []string           `json:"tags,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// Section is an ordered heading-delimited grouping of blocks. Hash covers
// the concatenation of its blocks' content in order. Tags are deduplicated
// preserving first-seen order; Metrics use last-write-wins aggregation.
type Section struct {
	Position int                `json:"position"`
	Hash     string             `json:"hash"`
	Hidden   bool               `json:"hidden,omitempty"`
	Tags     []string           `json:"tags,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Blocks   []Block            `json:"blocks"`
}

// Document is the full staged structural model for one source document.
// Markdown holds the body with frontmatter stripped; Hash fingerprints the
// body only, so it is the sole change-detection signal at commit time.
type Document struct {
	Slug        string         `json:"slug"`
	Path        string         `json:"path"`
	Markdown    string         `json:"markdown"`
	Hash        string         `json:"hash"`
	FrontMatter map[string]any `json:"frontmatter,omitempty"`
	Sections    []Section      `json:"sections"`
}
