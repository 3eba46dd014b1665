package markdown

import (
	"context"
	"reflect"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"guides/intro.md": &fstest.MapFile{
			Data: []byte("---\ntitle: Intro\nslug: getting-started\n---\n# Intro\n\nWelcome.\n"),
		},
		"guides/advanced.mdx": &fstest.MapFile{
			Data: []byte("# Advanced\n\nDeep dive.\n"),
		},
		"notes.md": &fstest.MapFile{
			Data: []byte("Loose note.\n"),
		},
		"assets/logo.png": &fstest.MapFile{Data: []byte{0x89}},
		"README.txt":      &fstest.MapFile{Data: []byte("not markdown")},
	}
}

func TestDiscoverWalksSortedMarkdownOnly(t *testing.T) {
	t.Parallel()

	loader := NewLoader(testFS())
	paths, err := loader.Discover(context.Background(), ".")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	want := []string{"guides/advanced.mdx", "guides/intro.md", "notes.md"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
}

func TestDiscoverSingleFile(t *testing.T) {
	t.Parallel()

	loader := NewLoader(testFS())
	paths, err := loader.Discover(context.Background(), "notes.md")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if !reflect.DeepEqual(paths, []string{"notes.md"}) {
		t.Fatalf("expected the single file, got %v", paths)
	}
}

func TestLoadSplitsFrontMatterAndBody(t *testing.T) {
	t.Parallel()

	loader := NewLoader(testFS())
	doc, err := loader.Load(context.Background(), "guides/intro.md")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if doc.Path != "guides/intro.md" {
		t.Fatalf("unexpected path %q", doc.Path)
	}
	if doc.FrontMatter["title"] != "Intro" {
		t.Fatalf("unexpected frontmatter %v", doc.FrontMatter)
	}
	if string(doc.Body) != "# Intro\n\nWelcome.\n" {
		t.Fatalf("unexpected body %q", doc.Body)
	}
	if doc.Checksum == "" {
		t.Fatal("expected a body checksum")
	}
}

func TestSlugPrefersFrontMatter(t *testing.T) {
	t.Parallel()

	loader := NewLoader(testFS())
	doc, err := loader.Load(context.Background(), "guides/intro.md")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Slug != "getting-started" {
		t.Fatalf("expected frontmatter slug, got %q", doc.Slug)
	}
}

func TestSlugFallsBackToFileStem(t *testing.T) {
	t.Parallel()

	loader := NewLoader(testFS())
	doc, err := loader.Load(context.Background(), "guides/advanced.mdx")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Slug != "advanced" {
		t.Fatalf("expected stem slug, got %q", doc.Slug)
	}
}

func TestSplitFrontMatterWithoutHeader(t *testing.T) {
	t.Parallel()

	meta, body, err := SplitFrontMatter([]byte("just a body\n"))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(meta) != 0 {
		t.Fatalf("expected empty metadata, got %v", meta)
	}
	if string(body) != "just a body\n" {
		t.Fatalf("body altered: %q", body)
	}
}

func TestSplitFrontMatterMalformedHeader(t *testing.T) {
	t.Parallel()

	_, _, err := SplitFrontMatter([]byte("---\n: [broken\n---\nbody\n"))
	if err == nil {
		t.Fatal("expected a parse error for malformed frontmatter")
	}
}
