package commands

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-mdpub/internal/export"
	"github.com/goliatone/go-mdpub/internal/logging"
	"github.com/goliatone/go-mdpub/internal/pipeline"
	"github.com/goliatone/go-mdpub/internal/store"
	"github.com/goliatone/go-mdpub/pkg/interfaces"
)

const (
	extractOperation = "pipeline.extract"
	commitOperation  = "pipeline.commit"
	exportOperation  = "pipeline.export"
	buildOperation   = "pipeline.build"
)

var (
	_ command.Commander[ExtractDirectoryCommand] = (*ExtractDirectoryHandler)(nil)
	_ command.Commander[CommitStagedCommand]     = (*CommitStagedHandler)(nil)
	_ command.Commander[ExportDocumentsCommand]  = (*ExportDocumentsHandler)(nil)
	_ command.Commander[BuildCommand]            = (*BuildHandler)(nil)
)

// ExtractDirectoryHandler stages markdown sources via the shared handler
// foundation.
type ExtractDirectoryHandler struct {
	inner *Handler[ExtractDirectoryCommand]
}

// NewExtractDirectoryHandler binds a handler to the pipeline. sink, when
// non-nil, receives the run summary so callers can render results.
func NewExtractDirectoryHandler(p *pipeline.Pipeline, logger interfaces.Logger, sink func(*pipeline.ExtractSummary), opts ...HandlerOption[ExtractDirectoryCommand]) *ExtractDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ExtractDirectoryCommand) error {
		summary, err := p.Extract(ctx, msg.Directory)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"staged_count": len(summary.Staged),
			"failed_count": len(summary.Failed),
			"directory":    msg.Directory,
		}).Info("pipeline.command.extract.completed")
		if sink != nil {
			sink(summary)
		}
		return nil
	}

	handlerOpts := append([]HandlerOption[ExtractDirectoryCommand]{
		WithLogger[ExtractDirectoryCommand](baseLogger),
		WithOperation[ExtractDirectoryCommand](extractOperation),
	}, opts...)

	return &ExtractDirectoryHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ExtractDirectoryCommand].
func (h *ExtractDirectoryHandler) Execute(ctx context.Context, msg ExtractDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CommitStagedHandler reconciles staged documents via the shared handler
// foundation.
type CommitStagedHandler struct {
	inner *Handler[CommitStagedCommand]
}

// NewCommitStagedHandler binds a handler to the pipeline.
func NewCommitStagedHandler(p *pipeline.Pipeline, logger interfaces.Logger, sink func(*pipeline.CommitSummary), opts ...HandlerOption[CommitStagedCommand]) *CommitStagedHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CommitStagedCommand) error {
		summary, err := p.Commit(ctx, msg.MaxVersions)
		if summary != nil && sink != nil {
			sink(summary)
		}
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"created_count":   summary.Created,
			"updated_count":   summary.Updated,
			"unchanged_count": summary.Unchanged,
		}).Info("pipeline.command.commit.completed")
		return nil
	}

	handlerOpts := append([]HandlerOption[CommitStagedCommand]{
		WithLogger[CommitStagedCommand](baseLogger),
		WithOperation[CommitStagedCommand](commitOperation),
	}, opts...)

	return &CommitStagedHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CommitStagedCommand].
func (h *CommitStagedHandler) Execute(ctx context.Context, msg CommitStagedCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ExportDocumentsHandler renders committed documents via the shared handler
// foundation.
type ExportDocumentsHandler struct {
	inner *Handler[ExportDocumentsCommand]
}

// NewExportDocumentsHandler binds a handler to the pipeline and document
// store. base supplies the configured export defaults; message fields
// override them per run.
func NewExportDocumentsHandler(p *pipeline.Pipeline, docs *store.DocumentStore, base export.Options, logger interfaces.Logger, sink func(*pipeline.ExportSummary), opts ...HandlerOption[ExportDocumentsCommand]) *ExportDocumentsHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ExportDocumentsCommand) error {
		runOpts := base
		if msg.OutDir != "" {
			runOpts.OutDir = msg.OutDir
		}
		if msg.Format != "" {
			runOpts.Format = msg.Format
		}
		if msg.MaxTags > 0 {
			runOpts.MaxTags = msg.MaxTags
		}
		if msg.MaxMetrics > 0 {
			runOpts.MaxMetrics = msg.MaxMetrics
		}

		exporter := export.NewExporter(docs, runOpts, baseLogger)
		summary, err := p.Export(ctx, exporter, pipeline.ExportScope{
			All:        msg.All,
			Collection: msg.Collection,
		})
		if summary != nil && sink != nil {
			sink(summary)
		}
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"written_count": len(summary.Documents),
			"out_dir":       runOpts.OutDir,
			"format":        runOpts.Format,
		}).Info("pipeline.command.export.completed")
		return nil
	}

	handlerOpts := append([]HandlerOption[ExportDocumentsCommand]{
		WithLogger[ExportDocumentsCommand](baseLogger),
		WithOperation[ExportDocumentsCommand](exportOperation),
	}, opts...)

	return &ExportDocumentsHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ExportDocumentsCommand].
func (h *ExportDocumentsHandler) Execute(ctx context.Context, msg ExportDocumentsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildSummary aggregates the stage summaries of one full build run.
type BuildSummary struct {
	Extract *pipeline.ExtractSummary `json:"extract"`
	Commit  *pipeline.CommitSummary  `json:"commit"`
	Export  *pipeline.ExportSummary  `json:"export"`
}

// BuildHandler runs extract, commit, and export as one sequence. The export
// stage covers exactly the batch the commit stage just stamped.
type BuildHandler struct {
	inner *Handler[BuildCommand]
}

// NewBuildHandler binds a handler to the pipeline and document store.
func NewBuildHandler(p *pipeline.Pipeline, docs *store.DocumentStore, base export.Options, logger interfaces.Logger, sink func(*BuildSummary), opts ...HandlerOption[BuildCommand]) *BuildHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildCommand) error {
		summary := &BuildSummary{}
		defer func() {
			if sink != nil {
				sink(summary)
			}
		}()

		extracted, err := p.Extract(ctx, msg.Directory)
		if err != nil {
			return err
		}
		summary.Extract = extracted

		committed, err := p.Commit(ctx, msg.MaxVersions)
		summary.Commit = committed
		if err != nil {
			return err
		}

		runOpts := base
		if msg.OutDir != "" {
			runOpts.OutDir = msg.OutDir
		}
		if msg.Format != "" {
			runOpts.Format = msg.Format
		}
		exporter := export.NewExporter(docs, runOpts, baseLogger)
		exported, err := p.Export(ctx, exporter, pipeline.ExportScope{})
		summary.Export = exported
		if err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"staged_count":  len(extracted.Staged),
			"created_count": committed.Created,
			"updated_count": committed.Updated,
			"written_count": len(exported.Documents),
		}).Info("pipeline.command.build.completed")
		return nil
	}

	handlerOpts := append([]HandlerOption[BuildCommand]{
		WithLogger[BuildCommand](baseLogger),
		WithOperation[BuildCommand](buildOperation),
	}, opts...)

	return &BuildHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[BuildCommand].
func (h *BuildHandler) Execute(ctx context.Context, msg BuildCommand) error {
	return h.inner.Execute(ctx, msg)
}
