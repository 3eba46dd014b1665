package mdpub_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	mdpub "github.com/goliatone/go-mdpub"
	"github.com/goliatone/go-mdpub/internal/commands"
	"github.com/goliatone/go-mdpub/internal/pipeline"
	"github.com/goliatone/go-mdpub/pkg/testsupport"
)

func newModule(t *testing.T) *mdpub.Module {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	cfg := mdpub.DefaultConfig()
	cfg.ContentDir = t.TempDir()
	cfg.StagingDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	cfg.Retention.MaxVersions = 3

	module, err := mdpub.New(cfg, mdpub.WithDB(bunDB))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	if err := module.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return module
}

func writeContent(t *testing.T, module *mdpub.Module, rel, body string) {
	t.Helper()
	path := filepath.Join(module.Config().ContentDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write content: %v", err)
	}
}

func TestModule_BuildRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	module := newModule(t)

	writeContent(t, module, "guides/intro.md",
		"---\ntitle: Intro\n---\n# Intro\n\nWelcome aboard.\n\n## Details\n\nFine print.\n")
	writeContent(t, module, "notes.md", "A loose note.\n")

	var summary *commands.BuildSummary
	handler := commands.NewBuildHandler(
		module.Pipeline(),
		module.Documents(),
		module.ExportOptions(),
		nil,
		func(s *commands.BuildSummary) { summary = s },
	)
	err := handler.Execute(ctx, commands.BuildCommand{
		Directory:   ".",
		MaxVersions: module.Config().Retention.MaxVersions,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if summary == nil || summary.Commit == nil {
		t.Fatal("build summary missing")
	}
	if summary.Commit.Created != 2 {
		t.Fatalf("expected 2 created documents, got %+v", summary.Commit)
	}
	if len(summary.Export.Documents) != 2 {
		t.Fatalf("expected 2 exported documents, got %d", len(summary.Export.Documents))
	}

	exported := filepath.Join(module.Config().OutputDir, "guides", "intro.md")
	raw, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(raw), "slug: intro") {
		t.Fatalf("export missing injected slug:\n%s", raw)
	}
}

func TestModule_VersionHistoryAcrossBuilds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	module := newModule(t)

	writeContent(t, module, "post.md", "first draft\n")
	if _, err := module.Pipeline().Extract(ctx, "."); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if _, err := module.Pipeline().Commit(ctx, 3); err != nil {
		t.Fatalf("commit: %v", err)
	}

	writeContent(t, module, "post.md", "second draft\n")
	if _, err := module.Pipeline().Extract(ctx, "."); err != nil {
		t.Fatalf("re-extract: %v", err)
	}
	if _, err := module.Pipeline().Commit(ctx, 3); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	doc, err := module.Documents().GetByPath(ctx, "post.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	history, err := module.Versions().List(ctx, doc.ID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(history) != 1 || history[0].Markdown != "first draft\n" {
		t.Fatalf("expected one snapshot of the first draft, got %+v", history)
	}

	diff, err := module.Versions().Diff(ctx, doc.ID, 1, 1)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if diff != "" {
		t.Fatalf("self-diff should be empty, got %q", diff)
	}
}

func TestModule_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := mdpub.DefaultConfig()
	cfg.OutputFormat = "pdf"
	if _, err := mdpub.New(cfg); err == nil {
		t.Fatal("invalid config must be rejected")
	}
}

func TestModule_ExtractCommitHandlers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	module := newModule(t)

	writeContent(t, module, "a.md", "alpha\n")

	var extracted *pipeline.ExtractSummary
	extract := commands.NewExtractDirectoryHandler(module.Pipeline(), nil,
		func(s *pipeline.ExtractSummary) { extracted = s })
	if err := extract.Execute(ctx, commands.ExtractDirectoryCommand{Directory: "."}); err != nil {
		t.Fatalf("extract handler: %v", err)
	}
	if extracted == nil || len(extracted.Staged) != 1 {
		t.Fatalf("extract summary mismatch: %+v", extracted)
	}

	var committed *pipeline.CommitSummary
	commit := commands.NewCommitStagedHandler(module.Pipeline(), nil,
		func(s *pipeline.CommitSummary) { committed = s })
	if err := commit.Execute(ctx, commands.CommitStagedCommand{}); err != nil {
		t.Fatalf("commit handler: %v", err)
	}
	if committed == nil || committed.Created != 1 {
		t.Fatalf("commit summary mismatch: %+v", committed)
	}

	if err := extract.Execute(ctx, commands.ExtractDirectoryCommand{}); err == nil {
		t.Fatal("validation must reject a missing directory")
	}
}
