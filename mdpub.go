// Package mdpub turns directories of markdown and MDX documents into a
// queryable structural store and publishable normalized output. The pipeline
// runs in three independently invokable stages: extract sources into staged
// JSON, commit staged documents into the database with bounded version
// history, export committed documents back to disk.
package mdpub

import (
	"context"
	"fmt"
	"os"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-mdpub/internal/export"
	"github.com/goliatone/go-mdpub/internal/extract"
	"github.com/goliatone/go-mdpub/internal/logging/gologger"
	"github.com/goliatone/go-mdpub/internal/markdown"
	"github.com/goliatone/go-mdpub/internal/pipeline"
	"github.com/goliatone/go-mdpub/internal/staging"
	"github.com/goliatone/go-mdpub/internal/store"
	"github.com/goliatone/go-mdpub/pkg/interfaces"
)

// Module is the assembled pipeline plus its stores. Construct with New,
// then call Init once to ensure the schema before running stages.
type Module struct {
	cfg      Config
	db       *bun.DB
	ownsDB   bool
	provider interfaces.LoggerProvider

	docs     *store.DocumentStore
	versions *store.VersionStore
	pipe     *pipeline.Pipeline
}

// Option customizes module assembly.
type Option func(*Module)

// WithLoggerProvider injects a logger provider. Without one the module logs
// through go-logger configured from cfg.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// WithDB reuses an existing bun handle instead of opening one from
// cfg.Storage. The caller keeps ownership; Close will not touch it.
func WithDB(db *bun.DB) Option {
	return func(m *Module) {
		m.db = db
		m.ownsDB = false
	}
}

// New validates cfg and assembles the pipeline.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	if m.db == nil {
		db, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		m.db = db
		m.ownsDB = true
	}

	m.docs = store.NewDocumentStore(m.db)
	m.versions = store.NewVersionStore(m.db)
	m.pipe = pipeline.New(
		markdown.NewLoader(os.DirFS(cfg.ContentDir)),
		extract.NewExtractor(markdown.NewGoldmarkTokenizer(cfg.Parser.Preset), cfg.Parser.MaxNesting),
		staging.NewStore(cfg.StagingDir),
		m.docs,
		m.provider,
	)
	return m, nil
}

// Init ensures the database schema exists. Safe to call repeatedly.
func (m *Module) Init(ctx context.Context) error {
	if err := store.EnsureSchema(ctx, m.db); err != nil {
		return fmt.Errorf("mdpub init: %w", err)
	}
	return nil
}

// Reset drops and recreates the schema, discarding all stored documents.
func (m *Module) Reset(ctx context.Context) error {
	if err := store.ResetSchema(ctx, m.db); err != nil {
		return fmt.Errorf("mdpub reset: %w", err)
	}
	return nil
}

// Close releases the database handle when the module opened it.
func (m *Module) Close() error {
	if !m.ownsDB || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Config returns the effective configuration.
func (m *Module) Config() Config {
	return m.cfg
}

// Pipeline returns the stage orchestrator.
func (m *Module) Pipeline() *pipeline.Pipeline {
	return m.pipe
}

// Documents returns the document store.
func (m *Module) Documents() *store.DocumentStore {
	return m.docs
}

// Versions returns the version store.
func (m *Module) Versions() *store.VersionStore {
	return m.versions
}

// LoggerProvider returns the active logger provider.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}

// ExportOptions derives the configured export defaults.
func (m *Module) ExportOptions() export.Options {
	return export.Options{
		Format:     m.cfg.OutputFormat,
		OutDir:     m.cfg.OutputDir,
		MaxTags:    m.cfg.Export.MaxTags,
		MaxMetrics: m.cfg.Export.MaxMetrics,
	}
}
