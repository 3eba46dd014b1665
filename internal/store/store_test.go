package store

import (
	"context"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-mdpub/internal/checksum"
	"github.com/goliatone/go-mdpub/internal/domain"
	"github.com/goliatone/go-mdpub/internal/staging"
	"github.com/goliatone/go-mdpub/pkg/testsupport"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

// stagedDoc builds a minimal staged document whose body doubles as its only
// block's content.
func stagedDoc(path, slug, body string) *staging.Document {
	return &staging.Document{
		Slug:     slug,
		Path:     path,
		Markdown: body,
		Hash:     checksum.Text(body),
		Sections: []staging.Section{
			{
				Position: 0,
				Hash:     checksum.Text(body),
				Blocks: []staging.Block{
					{
						Type:     domain.BlockParagraph,
						Content:  body,
						Hash:     checksum.Text(body),
						Position: 0,
					},
				},
			},
		},
	}
}
