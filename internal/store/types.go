// Package store owns the persisted structural model and the commit engine
// that reconciles staged documents against it. Children (sections, blocks,
// tags, metrics) have no identity outside their document: updates replace
// them wholesale instead of diffing.
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-mdpub/internal/domain"
)

// Document is a markdown document and the originating content source of truth.
// The source path is the sole identity key; slugs may collide across paths.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID          uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Slug        string         `bun:"slug,notnull" json:"slug"`
	SourcePath  string         `bun:"source_path,notnull,unique" json:"source_path"`
	Markdown    string         `bun:"markdown,notnull" json:"markdown"`
	Hash        string         `bun:"hash,notnull" json:"hash"`
	FrontMatter map[string]any `bun:"frontmatter,type:jsonb" json:"frontmatter,omitempty"`
	CommittedAt *time.Time     `bun:"committed_at,nullzero" json:"committed_at,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,notnull" json:"updated_at"`

	Sections []*Section `bun:"rel:has-many,join:id=document_id" json:"sections,omitempty"`
}

// Section is a heading-delimited grouping of blocks within a document.
// Sections are destroyed and recreated wholesale whenever the parent
// document's fingerprint changes.
type Section struct {
	bun.BaseModel `bun:"table:sections,alias:s"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	DocumentID uuid.UUID `bun:"document_id,notnull,type:uuid" json:"document_id"`
	Position   int       `bun:"position,notnull" json:"position"`
	Hash       string    `bun:"hash,notnull" json:"hash"`
	Hidden     bool      `bun:"hidden,notnull,default:false" json:"hidden"`
	UpdatedAt  time.Time `bun:"updated_at,notnull" json:"updated_at"`

	Blocks  []*SectionBlock  `bun:"rel:has-many,join:id=section_id" json:"blocks,omitempty"`
	Metrics []*SectionMetric `bun:"rel:has-many,join:id=section_id" json:"metrics,omitempty"`
}

// SectionBlock is the fundamental unit of ordered content within a section.
type SectionBlock struct {
	bun.BaseModel `bun:"table:section_blocks,alias:sb"`

	ID        uuid.UUID        `bun:",pk,type:uuid" json:"id"`
	SectionID uuid.UUID        `bun:"section_id,notnull,type:uuid" json:"section_id"`
	Content   string           `bun:"content,notnull" json:"content"`
	Hash      string           `bun:"hash,notnull" json:"hash"`
	Type      domain.BlockType `bun:"type,notnull" json:"type"`
	Position  float64          `bun:"position,notnull" json:"position"`
	Level     *int             `bun:"level" json:"level,omitempty"`
	UpdatedAt time.Time        `bun:"updated_at,notnull" json:"updated_at"`
}

// Tag is a label that sections reference for categorization and filtering.
// The first writer's category metadata wins and is preserved on reuse.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	Name     string `bun:"name,pk" json:"name"`
	Category string `bun:"category,notnull,default:''" json:"category"`
}

// SectionTag attaches a tag to a section with a relevance weight and an
// ordinal position that drives export ordering and truncation priority.
type SectionTag struct {
	bun.BaseModel `bun:"table:section_tags,alias:st"`

	SectionID uuid.UUID `bun:"section_id,pk,type:uuid" json:"section_id"`
	TagName   string    `bun:"tag_name,pk" json:"tag_name"`
	Relevance float64   `bun:"relevance,notnull" json:"relevance"`
	Position  int       `bun:"position,notnull" json:"position"`
}

// SectionMetric is a named floating-point measurement attached to a section.
type SectionMetric struct {
	bun.BaseModel `bun:"table:section_metrics,alias:sm"`

	SectionID  uuid.UUID `bun:"section_id,pk,type:uuid" json:"section_id"`
	Name       string    `bun:"name,pk" json:"name"`
	Value      float64   `bun:"value,notnull" json:"value"`
	RecordedAt time.Time `bun:"recorded_at,notnull" json:"recorded_at"`
}

// DocumentVersion is an immutable snapshot of a document at a prior state.
// Version numbers are dense and strictly increasing per document, starting
// at 1, and are never reused even after pruning.
type DocumentVersion struct {
	bun.BaseModel `bun:"table:document_versions,alias:dv"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	DocumentID  uuid.UUID `bun:"document_id,notnull,type:uuid" json:"document_id"`
	VersionNum  int       `bun:"version_num,notnull" json:"version_num"`
	Markdown    string    `bun:"markdown,notnull" json:"markdown"`
	Hash        string    `bun:"hash,notnull" json:"hash"`
	FrontMatter *string   `bun:"frontmatter" json:"frontmatter,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

// models enumerates every table in schema-creation order.
func models() []any {
	return []any{
		(*Document)(nil),
		(*Section)(nil),
		(*SectionBlock)(nil),
		(*Tag)(nil),
		(*SectionTag)(nil),
		(*SectionMetric)(nil),
		(*DocumentVersion)(nil),
	}
}
