package extract

import (
	"context"
	"testing"

	"github.com/goliatone/go-mdpub/internal/checksum"
	"github.com/goliatone/go-mdpub/internal/domain"
	"github.com/goliatone/go-mdpub/internal/markdown"
	"github.com/goliatone/go-mdpub/internal/staging"
)

const extractFixture = "# One\n" +
	"\n" +
	"alpha\n" +
	"\n" +
	"## Two\n" +
	"\n" +
	"beta\n"

func sourceDoc(body string) *markdown.SourceDocument {
	return &markdown.SourceDocument{
		Path:        "guides/sample.md",
		Slug:        "sample",
		Body:        []byte(body),
		FrontMatter: map[string]any{"title": "Sample"},
	}
}

func TestExtractGroupsByNestingDepth(t *testing.T) {
	t.Parallel()

	tokenizer := markdown.NewGoldmarkTokenizer("gfm")

	deep, err := NewExtractor(tokenizer, 2).Extract(context.Background(), sourceDoc(extractFixture))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(deep.Sections) != 2 {
		t.Fatalf("nesting 2: expected 2 sections, got %d", len(deep.Sections))
	}
	for i, section := range deep.Sections {
		if section.Position != i {
			t.Fatalf("section %d has position %d", i, section.Position)
		}
		if len(section.Blocks) != 2 {
			t.Fatalf("section %d: expected 2 blocks, got %d", i, len(section.Blocks))
		}
	}

	shallow, err := NewExtractor(tokenizer, 1).Extract(context.Background(), sourceDoc(extractFixture))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(shallow.Sections) != 1 {
		t.Fatalf("nesting 1: expected 1 section, got %d", len(shallow.Sections))
	}
	if len(shallow.Sections[0].Blocks) != 4 {
		t.Fatalf("nesting 1: expected 4 blocks, got %d", len(shallow.Sections[0].Blocks))
	}
}

func TestExtractFingerprints(t *testing.T) {
	t.Parallel()

	doc, err := NewExtractor(markdown.NewGoldmarkTokenizer("gfm"), 2).
		Extract(context.Background(), sourceDoc(extractFixture))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if doc.Hash != checksum.Text(extractFixture) {
		t.Fatal("document hash must cover the body bytes")
	}

	section := doc.Sections[0]
	concat := ""
	for _, block := range section.Blocks {
		if block.Hash != checksum.Text(block.Content) {
			t.Fatalf("block hash mismatch for %q", block.Content)
		}
		concat += block.Content
	}
	if section.Hash != checksum.Text(concat) {
		t.Fatal("section hash must cover concatenated block content")
	}
}

func TestExtractBlockPositionsAreSectionLocal(t *testing.T) {
	t.Parallel()

	doc, err := NewExtractor(markdown.NewGoldmarkTokenizer("gfm"), 2).
		Extract(context.Background(), sourceDoc(extractFixture))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	for _, section := range doc.Sections {
		for i, block := range section.Blocks {
			if block.Position != float64(i) {
				t.Fatalf("section %d block %d has position %v", section.Position, i, block.Position)
			}
		}
	}
}

func TestExtractAggregatesTagsAndMetrics(t *testing.T) {
	t.Parallel()

	section := assembleSection([]staging.Block{
		{Type: domain.BlockParagraph, Content: "a", Tags: []string{"go", "db"}, Metrics: map[string]float64{"score": 1}},
		{Type: domain.BlockParagraph, Content: "b", Tags: []string{"db", "sql"}, Metrics: map[string]float64{"score": 2, "depth": 3}},
	}, 0)

	wantTags := []string{"go", "db", "sql"}
	if len(section.Tags) != len(wantTags) {
		t.Fatalf("expected tags %v, got %v", wantTags, section.Tags)
	}
	for i, tag := range wantTags {
		if section.Tags[i] != tag {
			t.Fatalf("tag order: expected %v, got %v", wantTags, section.Tags)
		}
	}

	if section.Metrics["score"] != 2 {
		t.Fatalf("metrics must be last-write-wins, got %v", section.Metrics["score"])
	}
	if section.Metrics["depth"] != 3 {
		t.Fatalf("expected depth metric, got %v", section.Metrics)
	}
}

func TestExtractCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(markdown.NewGoldmarkTokenizer("gfm"), 2).
		Extract(ctx, sourceDoc(extractFixture))
	if err == nil {
		t.Fatal("expected a context error")
	}
}
