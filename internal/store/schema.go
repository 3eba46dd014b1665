package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// EnsureSchema creates every table and index the pipeline needs. It is safe
// to call repeatedly.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("store: create table for %T: %w", model, err)
		}
	}

	indexes := []*bun.CreateIndexQuery{
		db.NewCreateIndex().Model((*Document)(nil)).
			Index("idx_documents_slug").Column("slug"),
		db.NewCreateIndex().Model((*Document)(nil)).
			Index("uq_documents_source_path").Column("source_path").Unique(),
		db.NewCreateIndex().Model((*Section)(nil)).
			Index("idx_sections_document").Column("document_id"),
		db.NewCreateIndex().Model((*SectionBlock)(nil)).
			Index("idx_section_blocks_section").Column("section_id"),
		db.NewCreateIndex().Model((*DocumentVersion)(nil)).
			Index("uq_docver_doc_num").Column("document_id", "version_num").Unique(),
	}
	for _, query := range indexes {
		if _, err := query.IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("store: create index: %w", err)
		}
	}
	return nil
}

// ResetSchema drops and recreates every table. Used by `mdpub init --reset`.
func ResetSchema(ctx context.Context, db *bun.DB) error {
	for i := len(models()) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(models()[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("store: drop table for %T: %w", models()[i], err)
		}
	}
	return EnsureSchema(ctx, db)
}
