package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-mdpub/internal/domain"
	"github.com/goliatone/go-mdpub/internal/identity"
	"github.com/goliatone/go-mdpub/internal/staging"
)

// DocumentStore is the persistence surface for documents and their owned
// children. All reconciliation for one document happens inside a single
// transaction so a concurrent reader never observes a document with zero
// sections mid-replacement.
type DocumentStore struct {
	db   *bun.DB
	repo repository.Repository[*Document]
}

// NewDocumentStore constructs a DocumentStore over the given database.
func NewDocumentStore(db *bun.DB) *DocumentStore {
	return &DocumentStore{
		db:   db,
		repo: NewDocumentRepository(db),
	}
}

// DB exposes the underlying bun handle for callers that compose their own
// queries (schema management, version store).
func (s *DocumentStore) DB() *bun.DB {
	return s.db
}

// GetByPath returns the document with the given source path. The match is
// exact: the path is the sole identity key.
func (s *DocumentStore) GetByPath(ctx context.Context, path string) (*Document, error) {
	return getByPath(ctx, s.db, path)
}

func getByPath(ctx context.Context, idb bun.IDB, path string) (*Document, error) {
	doc := new(Document)
	err := idb.NewSelect().Model(doc).Where("?TableAlias.source_path = ?", path).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &DocumentNotFoundError{Key: path}
		}
		return nil, fmt.Errorf("document by path %s: %w", path, err)
	}
	return doc, nil
}

// GetBySlug returns the first document with the given slug. Slugs are not
// unique; callers that need identity must use GetByPath.
func (s *DocumentStore) GetBySlug(ctx context.Context, slug string) (*Document, error) {
	doc, err := s.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, &DocumentNotFoundError{Key: slug}
		}
		return nil, fmt.Errorf("document by slug %s: %w", slug, err)
	}
	return doc, nil
}

// ListAll returns every stored document ordered by source path.
func (s *DocumentStore) ListAll(ctx context.Context) ([]*Document, error) {
	var docs []*Document
	if err := s.db.NewSelect().Model(&docs).Order("source_path ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// LastCommitted returns the documents stamped by the most recent commit
// batch, or an empty slice when nothing has been committed yet.
func (s *DocumentStore) LastCommitted(ctx context.Context) ([]*Document, error) {
	var docs []*Document
	err := s.db.NewSelect().Model(&docs).
		Where("?TableAlias.committed_at IS NOT NULL").
		OrderExpr("committed_at DESC, source_path ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("documents for last commit batch: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	latest := docs[0].CommittedAt
	var batch []*Document
	for _, doc := range docs {
		if doc.CommittedAt != nil && doc.CommittedAt.Equal(*latest) {
			batch = append(batch, doc)
		}
	}
	sort.Slice(batch, func(i, j int) bool {
		return batch[i].SourcePath < batch[j].SourcePath
	})
	return batch, nil
}

// collectionKey returns the top-level directory of a slash-separated path,
// or "." for root-level files.
func collectionKey(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 1 {
		return parts[0]
	}
	return "."
}

// ByCollection returns documents whose path falls under the given top-level
// directory. "." matches root-level documents.
func (s *DocumentStore) ByCollection(ctx context.Context, collection string) ([]*Document, error) {
	docs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var matched []*Document
	for _, doc := range docs {
		if collectionKey(doc.SourcePath) == collection {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

// Collections returns the sorted distinct top-level path components across
// all stored documents.
func (s *DocumentStore) Collections(ctx context.Context) ([]string, error) {
	var paths []string
	err := s.db.NewSelect().Model((*Document)(nil)).Column("source_path").Scan(ctx, &paths)
	if err != nil {
		return nil, fmt.Errorf("list source paths: %w", err)
	}

	seen := map[string]struct{}{}
	var collections []string
	for _, path := range paths {
		key := collectionKey(path)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		collections = append(collections, key)
	}
	sort.Strings(collections)
	return collections, nil
}

// Commit reconciles one staged document against stored state and reports
// whether it was created, updated, or unchanged. The whole change set for
// the document applies atomically: on error nothing is written and the
// failure names the source path.
//
// An unchanged document produces zero writes, not even a timestamp touch.
// An update snapshots the current state as a new version before
// overwriting, then replaces every owned child row wholesale.
func (s *DocumentStore) Commit(ctx context.Context, staged *staging.Document, maxVersions int, committedAt *time.Time) (*Document, domain.CommitStatus, error) {
	var (
		result *Document
		status domain.CommitStatus
	)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := getByPath(ctx, tx, staged.Path)
		if err != nil && !errors.Is(err, ErrDocumentNotFound) {
			return err
		}

		if existing != nil {
			if existing.Hash == staged.Hash {
				result, status = existing, domain.StatusUnchanged
				return nil
			}
			if _, err := saveVersionTx(ctx, tx, existing, maxVersions); err != nil {
				return err
			}

			existing.Slug = staged.Slug
			existing.Markdown = staged.Markdown
			existing.Hash = staged.Hash
			existing.FrontMatter = normalizeFrontMatter(staged.FrontMatter)
			existing.UpdatedAt = time.Now().UTC()
			existing.CommittedAt = committedAt
			if _, err := tx.NewUpdate().Model(existing).WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update document: %w", err)
			}
			if err := replaceSections(ctx, tx, existing.ID, staged.Sections); err != nil {
				return err
			}
			result, status = existing, domain.StatusUpdated
			return nil
		}

		now := time.Now().UTC()
		doc := &Document{
			ID:          identity.DocumentUUID(staged.Path),
			Slug:        staged.Slug,
			SourcePath:  staged.Path,
			Markdown:    staged.Markdown,
			Hash:        staged.Hash,
			FrontMatter: normalizeFrontMatter(staged.FrontMatter),
			CommittedAt: committedAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := tx.NewInsert().Model(doc).Exec(ctx); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		if err := replaceSections(ctx, tx, doc.ID, staged.Sections); err != nil {
			return err
		}
		result, status = doc, domain.StatusCreated
		return nil
	})
	if err != nil {
		return nil, "", &CommitError{Path: staged.Path, Err: err}
	}
	return result, status, nil
}

func normalizeFrontMatter(meta map[string]any) map[string]any {
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// replaceSections deletes every section, block, tag attachment, and metric
// owned by the document and inserts the staged set. Replacement is always
// wholesale; partial merges could orphan or duplicate children when the
// structure changes shape between commits.
func replaceSections(ctx context.Context, tx bun.IDB, docID uuid.UUID, sections []staging.Section) error {
	var sectionIDs []uuid.UUID
	err := tx.NewSelect().Model((*Section)(nil)).
		Column("id").
		Where("?TableAlias.document_id = ?", docID).
		Scan(ctx, &sectionIDs)
	if err != nil {
		return fmt.Errorf("list section ids: %w", err)
	}

	if len(sectionIDs) > 0 {
		deletions := []struct {
			model any
			label string
		}{
			{(*SectionMetric)(nil), "section metrics"},
			{(*SectionTag)(nil), "section tags"},
			{(*SectionBlock)(nil), "section blocks"},
		}
		for _, del := range deletions {
			_, err := tx.NewDelete().Model(del.model).
				Where("?TableAlias.section_id IN (?)", bun.In(sectionIDs)).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("delete %s: %w", del.label, err)
			}
		}
		_, err = tx.NewDelete().Model((*Section)(nil)).
			Where("?TableAlias.document_id = ?", docID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}
	}

	now := time.Now().UTC()
	for _, staged := range sections {
		section := &Section{
			ID:         identity.SectionUUID(docID, staged.Position),
			DocumentID: docID,
			Position:   staged.Position,
			Hash:       staged.Hash,
			Hidden:     staged.Hidden,
			UpdatedAt:  now,
		}
		if _, err := tx.NewInsert().Model(section).Exec(ctx); err != nil {
			return fmt.Errorf("insert section %d: %w", staged.Position, err)
		}

		if len(staged.Blocks) > 0 {
			blocks := make([]*SectionBlock, 0, len(staged.Blocks))
			for _, block := range staged.Blocks {
				blocks = append(blocks, &SectionBlock{
					ID:        identity.BlockUUID(section.ID, block.Position),
					SectionID: section.ID,
					Content:   block.Content,
					Hash:      block.Hash,
					Type:      block.Type,
					Position:  block.Position,
					Level:     block.Level,
					UpdatedAt: now,
				})
			}
			if _, err := tx.NewInsert().Model(&blocks).Exec(ctx); err != nil {
				return fmt.Errorf("insert blocks for section %d: %w", staged.Position, err)
			}
		}

		if err := attachTags(ctx, tx, section.ID, staged.Tags); err != nil {
			return err
		}
		if err := attachMetrics(ctx, tx, section.ID, staged.Metrics, now); err != nil {
			return err
		}
	}
	return nil
}

// attachTags links tag names to a section, creating missing tag rows. An
// existing tag is reused as-is so the first writer's category metadata wins.
func attachTags(ctx context.Context, tx bun.IDB, sectionID uuid.UUID, tags []string) error {
	for position, name := range tags {
		exists, err := tx.NewSelect().Model((*Tag)(nil)).
			Where("?TableAlias.name = ?", name).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check tag %s: %w", name, err)
		}
		if !exists {
			if _, err := tx.NewInsert().Model(&Tag{Name: name}).Exec(ctx); err != nil {
				return fmt.Errorf("insert tag %s: %w", name, err)
			}
		}

		link := &SectionTag{
			SectionID: sectionID,
			TagName:   name,
			Relevance: 1.0,
			Position:  position,
		}
		if _, err := tx.NewInsert().Model(link).Exec(ctx); err != nil {
			return fmt.Errorf("attach tag %s: %w", name, err)
		}
	}
	return nil
}

func attachMetrics(ctx context.Context, tx bun.IDB, sectionID uuid.UUID, metrics map[string]float64, now time.Time) error {
	if len(metrics) == 0 {
		return nil
	}

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]*SectionMetric, 0, len(names))
	for _, name := range names {
		rows = append(rows, &SectionMetric{
			SectionID:  sectionID,
			Name:       name,
			Value:      metrics[name],
			RecordedAt: now,
		})
	}
	if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert section metrics: %w", err)
	}
	return nil
}

// TagRef is a tag attachment resolved with its category metadata.
type TagRef struct {
	Name      string
	Category  string
	Relevance float64
	Position  int
}

// SectionData aggregates one stored section with its owned children, in
// export order: blocks by position, tags by attachment position, metrics by
// name.
type SectionData struct {
	Section *Section
	Blocks  []*SectionBlock
	Tags    []TagRef
	Metrics []*SectionMetric
}

// SectionsWithChildren loads every section of a document together with its
// blocks, tags, and metrics, ordered by section position.
func (s *DocumentStore) SectionsWithChildren(ctx context.Context, docID uuid.UUID) ([]*SectionData, error) {
	var sections []*Section
	err := s.db.NewSelect().Model(&sections).
		Where("?TableAlias.document_id = ?", docID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("sections for document %s: %w", docID, err)
	}
	if len(sections) == 0 {
		return nil, nil
	}

	sectionIDs := make([]uuid.UUID, 0, len(sections))
	for _, section := range sections {
		sectionIDs = append(sectionIDs, section.ID)
	}

	var blocks []*SectionBlock
	err = s.db.NewSelect().Model(&blocks).
		Where("?TableAlias.section_id IN (?)", bun.In(sectionIDs)).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("blocks for document %s: %w", docID, err)
	}

	var links []*SectionTag
	err = s.db.NewSelect().Model(&links).
		Where("?TableAlias.section_id IN (?)", bun.In(sectionIDs)).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tags for document %s: %w", docID, err)
	}

	categories := map[string]string{}
	if len(links) > 0 {
		names := map[string]struct{}{}
		var tagNames []string
		for _, link := range links {
			if _, dup := names[link.TagName]; dup {
				continue
			}
			names[link.TagName] = struct{}{}
			tagNames = append(tagNames, link.TagName)
		}
		var tags []*Tag
		err = s.db.NewSelect().Model(&tags).
			Where("?TableAlias.name IN (?)", bun.In(tagNames)).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("tag categories: %w", err)
		}
		for _, tag := range tags {
			categories[tag.Name] = tag.Category
		}
	}

	var metrics []*SectionMetric
	err = s.db.NewSelect().Model(&metrics).
		Where("?TableAlias.section_id IN (?)", bun.In(sectionIDs)).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("metrics for document %s: %w", docID, err)
	}

	byID := make(map[uuid.UUID]*SectionData, len(sections))
	result := make([]*SectionData, 0, len(sections))
	for _, section := range sections {
		data := &SectionData{Section: section}
		byID[section.ID] = data
		result = append(result, data)
	}
	for _, block := range blocks {
		if data, ok := byID[block.SectionID]; ok {
			data.Blocks = append(data.Blocks, block)
		}
	}
	for _, link := range links {
		if data, ok := byID[link.SectionID]; ok {
			data.Tags = append(data.Tags, TagRef{
				Name:      link.TagName,
				Category:  categories[link.TagName],
				Relevance: link.Relevance,
				Position:  link.Position,
			})
		}
	}
	for _, metric := range metrics {
		if data, ok := byID[metric.SectionID]; ok {
			data.Metrics = append(data.Metrics, metric)
		}
	}
	return result, nil
}
