// Package pipeline orchestrates the three stages over their stores: extract
// sources into staging, commit staged documents into the database, export
// committed documents to disk. Each stage is independently invokable so
// enrichment tooling can run between extract and commit.
package pipeline

import (
	"context"
	"time"

	"github.com/goliatone/go-mdpub/internal/domain"
	"github.com/goliatone/go-mdpub/internal/export"
	"github.com/goliatone/go-mdpub/internal/extract"
	"github.com/goliatone/go-mdpub/internal/logging"
	"github.com/goliatone/go-mdpub/internal/markdown"
	"github.com/goliatone/go-mdpub/internal/staging"
	"github.com/goliatone/go-mdpub/internal/store"
	"github.com/goliatone/go-mdpub/pkg/interfaces"
)

// Pipeline wires the stage components together.
type Pipeline struct {
	loader    *markdown.Loader
	extractor *extract.Extractor
	staged    *staging.Store
	docs      *store.DocumentStore
	provider  interfaces.LoggerProvider
}

// New assembles a Pipeline from its stage components.
func New(loader *markdown.Loader, extractor *extract.Extractor, staged *staging.Store, docs *store.DocumentStore, provider interfaces.LoggerProvider) *Pipeline {
	return &Pipeline{
		loader:    loader,
		extractor: extractor,
		staged:    staged,
		docs:      docs,
		provider:  provider,
	}
}

// ExtractFailure records one source document that could not be staged.
type ExtractFailure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// ExtractSummary reports one extract run.
type ExtractSummary struct {
	Staged []string         `json:"staged"`
	Failed []ExtractFailure `json:"failed,omitempty"`
}

// Extract discovers markdown sources under dir, stages each as JSON, and
// returns the staged file paths. A document that fails to parse is reported
// in the summary without aborting the batch; the remaining sources still
// stage.
func (p *Pipeline) Extract(ctx context.Context, dir string) (*ExtractSummary, error) {
	logger := logging.ExtractLogger(p.provider)

	paths, err := p.loader.Discover(ctx, dir)
	if err != nil {
		return nil, err
	}
	logger.Info("discovered sources", "dir", dir, "count", len(paths))

	summary := &ExtractSummary{}
	for _, path := range paths {
		staged, err := p.stageOne(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.WithDocumentContext(logger, path, "").Error("stage failed", "error", err)
			summary.Failed = append(summary.Failed, ExtractFailure{Path: path, Err: err})
			continue
		}
		summary.Staged = append(summary.Staged, staged)
	}

	logger.Info("extract complete",
		"staged", len(summary.Staged),
		"failed", len(summary.Failed),
	)
	return summary, nil
}

func (p *Pipeline) stageOne(ctx context.Context, path string) (string, error) {
	src, err := p.loader.Load(ctx, path)
	if err != nil {
		return "", err
	}
	doc, err := p.extractor.Extract(ctx, src)
	if err != nil {
		return "", err
	}
	return p.staged.Write(doc)
}

// Change records the commit outcome for one document.
type Change struct {
	Path   string              `json:"path"`
	Slug   string              `json:"slug"`
	Status domain.CommitStatus `json:"status"`
}

// CommitSummary reports one commit run. Counts partition the processed
// documents by outcome.
type CommitSummary struct {
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Changes   []Change `json:"changes"`
}

// Commit reads every staged file in name order and reconciles each against
// the store. Every document in the batch receives the same committed_at
// stamp. The first failed document aborts the run; documents already
// committed stay committed, each inside its own transaction.
func (p *Pipeline) Commit(ctx context.Context, maxVersions int) (*CommitSummary, error) {
	logger := logging.CommitLogger(p.provider)

	files, err := p.staged.List()
	if err != nil {
		return nil, err
	}
	logger.Info("commit batch", "staged_files", len(files))

	committedAt := time.Now().UTC()
	summary := &CommitSummary{}
	for _, file := range files {
		staged, err := p.staged.Read(file)
		if err != nil {
			return summary, err
		}

		doc, status, err := p.docs.Commit(ctx, staged, maxVersions, &committedAt)
		if err != nil {
			return summary, err
		}

		switch status {
		case domain.StatusCreated:
			summary.Created++
		case domain.StatusUpdated:
			summary.Updated++
		case domain.StatusUnchanged:
			summary.Unchanged++
		}
		summary.Changes = append(summary.Changes, Change{
			Path:   doc.SourcePath,
			Slug:   doc.Slug,
			Status: status,
		})
		logging.WithDocumentContext(logger, doc.SourcePath, string(status)).Debug("committed document")
	}

	logger.Info("commit complete",
		"created", summary.Created,
		"updated", summary.Updated,
		"unchanged", summary.Unchanged,
	)
	return summary, nil
}

// ExportScope selects which committed documents an export run covers. The
// zero value means the most recent commit batch.
type ExportScope struct {
	// All exports every stored document.
	All bool
	// Collection, when non-empty, exports documents in one top-level
	// directory. "." selects root-level documents.
	Collection string
}

// ExportSummary reports one export run.
type ExportSummary struct {
	Documents []*export.Result `json:"documents"`
}

// Export renders the scoped documents through the exporter.
func (p *Pipeline) Export(ctx context.Context, exporter *export.Exporter, scope ExportScope) (*ExportSummary, error) {
	logger := logging.ExportLogger(p.provider)

	var (
		docs []*store.Document
		err  error
	)
	switch {
	case scope.All:
		docs, err = p.docs.ListAll(ctx)
	case scope.Collection != "":
		docs, err = p.docs.ByCollection(ctx, scope.Collection)
	default:
		docs, err = p.docs.LastCommitted(ctx)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("export scope resolved", "documents", len(docs))

	summary := &ExportSummary{}
	for _, doc := range docs {
		result, err := exporter.WriteDocument(ctx, doc)
		if err != nil {
			return summary, err
		}
		summary.Documents = append(summary.Documents, result)
	}

	logger.Info("export complete", "written", len(summary.Documents))
	return summary, nil
}
