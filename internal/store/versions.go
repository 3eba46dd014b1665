package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-mdpub/internal/identity"
)

// VersionStore manages the bounded per-document history of immutable
// snapshots. Numbers are dense and strictly increasing per document and are
// never reused, so a pruned v1 leaves v2 as the oldest surviving version.
type VersionStore struct {
	db *bun.DB
}

// NewVersionStore constructs a VersionStore over the given database.
func NewVersionStore(db *bun.DB) *VersionStore {
	return &VersionStore{db: db}
}

// Save snapshots the document's current state as a new version and prunes
// history beyond maxVersions. A limit of zero disables pruning.
func (s *VersionStore) Save(ctx context.Context, doc *Document, maxVersions int) (*DocumentVersion, error) {
	var version *DocumentVersion
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		saved, err := saveVersionTx(ctx, tx, doc, maxVersions)
		if err != nil {
			return err
		}
		version = saved
		return nil
	})
	return version, err
}

// saveVersionTx writes a snapshot inside an existing transaction. The commit
// path calls this before overwriting an updated document so history and the
// overwrite land atomically.
func saveVersionTx(ctx context.Context, tx bun.IDB, doc *Document, maxVersions int) (*DocumentVersion, error) {
	var current sql.NullInt64
	err := tx.NewSelect().Model((*DocumentVersion)(nil)).
		ColumnExpr("max(version_num)").
		Where("?TableAlias.document_id = ?", doc.ID).
		Scan(ctx, &current)
	if err != nil {
		return nil, fmt.Errorf("max version for document %s: %w", doc.ID, err)
	}

	next := 1
	if current.Valid {
		next = int(current.Int64) + 1
	}

	meta, err := encodeFrontMatter(doc.FrontMatter)
	if err != nil {
		return nil, err
	}

	version := &DocumentVersion{
		ID:          identity.UUID("go-mdpub:version:" + doc.ID.String() + ":" + strconv.Itoa(next)),
		DocumentID:  doc.ID,
		VersionNum:  next,
		Markdown:    doc.Markdown,
		Hash:        doc.Hash,
		FrontMatter: meta,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := tx.NewInsert().Model(version).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert version %d: %w", next, err)
	}

	if maxVersions > 0 {
		if _, err := pruneTx(ctx, tx, doc.ID, maxVersions); err != nil {
			return nil, err
		}
	}
	return version, nil
}

// Prune deletes the oldest versions beyond keep and reports how many were
// removed. keep of zero disables pruning entirely.
func (s *VersionStore) Prune(ctx context.Context, documentID uuid.UUID, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	var pruned int
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n, err := pruneTx(ctx, tx, documentID, keep)
		pruned = n
		return err
	})
	return pruned, err
}

func pruneTx(ctx context.Context, tx bun.IDB, documentID uuid.UUID, keep int) (int, error) {
	var versionNums []int
	err := tx.NewSelect().Model((*DocumentVersion)(nil)).
		Column("version_num").
		Where("?TableAlias.document_id = ?", documentID).
		Order("version_num ASC").
		Scan(ctx, &versionNums)
	if err != nil {
		return 0, fmt.Errorf("list versions for prune: %w", err)
	}
	excess := len(versionNums) - keep
	if excess <= 0 {
		return 0, nil
	}

	doomed := versionNums[:excess]
	_, err = tx.NewDelete().Model((*DocumentVersion)(nil)).
		Where("?TableAlias.document_id = ?", documentID).
		Where("?TableAlias.version_num IN (?)", bun.In(doomed)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune versions: %w", err)
	}
	return excess, nil
}

// List returns every surviving version of a document in ascending order.
func (s *VersionStore) List(ctx context.Context, documentID uuid.UUID) ([]*DocumentVersion, error) {
	var versions []*DocumentVersion
	err := s.db.NewSelect().Model(&versions).
		Where("?TableAlias.document_id = ?", documentID).
		Order("version_num ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// Get returns one version by number.
func (s *VersionStore) Get(ctx context.Context, documentID uuid.UUID, versionNum int) (*DocumentVersion, error) {
	return getVersion(ctx, s.db, documentID, versionNum)
}

func getVersion(ctx context.Context, idb bun.IDB, documentID uuid.UUID, versionNum int) (*DocumentVersion, error) {
	version := new(DocumentVersion)
	err := idb.NewSelect().Model(version).
		Where("?TableAlias.document_id = ?", documentID).
		Where("?TableAlias.version_num = ?", versionNum).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &VersionNotFoundError{DocumentID: documentID, VersionNum: versionNum}
		}
		return nil, fmt.Errorf("version %d for document %s: %w", versionNum, documentID, err)
	}
	return version, nil
}

// Diff renders a unified diff between two versions' markdown, labeled
// v<from> and v<to>. Identical content yields an empty string.
func (s *VersionStore) Diff(ctx context.Context, documentID uuid.UUID, fromNum, toNum int) (string, error) {
	from, err := s.Get(ctx, documentID, fromNum)
	if err != nil {
		return "", err
	}
	to, err := s.Get(ctx, documentID, toNum)
	if err != nil {
		return "", err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(from.Markdown),
		B:        difflib.SplitLines(to.Markdown),
		FromFile: "v" + strconv.Itoa(fromNum),
		ToFile:   "v" + strconv.Itoa(toNum),
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff v%d..v%d: %w", fromNum, toNum, err)
	}
	return diff, nil
}

// Revert restores a document's content fields from a prior version. The
// current state is snapshotted first, so the revert itself survives in
// history and can be reverted again. Sections are not rebuilt here; the
// next extract-and-commit pass reconciles structure from the restored
// markdown.
func (s *VersionStore) Revert(ctx context.Context, documentID uuid.UUID, versionNum, maxVersions int) (*Document, error) {
	var result *Document
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		target, err := getVersion(ctx, tx, documentID, versionNum)
		if err != nil {
			return err
		}

		doc := new(Document)
		err = tx.NewSelect().Model(doc).Where("?TableAlias.id = ?", documentID).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &DocumentNotFoundError{Key: documentID.String()}
			}
			return fmt.Errorf("document %s: %w", documentID, err)
		}

		if _, err := saveVersionTx(ctx, tx, doc, maxVersions); err != nil {
			return err
		}

		meta, err := decodeFrontMatter(target.FrontMatter)
		if err != nil {
			return err
		}
		doc.Markdown = target.Markdown
		doc.Hash = target.Hash
		doc.FrontMatter = meta
		doc.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().Model(doc).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("apply revert to v%d: %w", versionNum, err)
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func encodeFrontMatter(meta map[string]any) (*string, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	encoded := string(raw)
	return &encoded, nil
}

func decodeFrontMatter(raw *string) (map[string]any, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(*raw), &meta); err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	return meta, nil
}
