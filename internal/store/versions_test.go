package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-mdpub/internal/domain"
)

func commitBody(t *testing.T, docs *DocumentStore, path, body string, maxVersions int) *Document {
	t.Helper()
	stamp := time.Now().UTC()
	doc, _, err := docs.Commit(context.Background(), stagedDoc(path, "doc", body), maxVersions, &stamp)
	if err != nil {
		t.Fatalf("commit %q: %v", body, err)
	}
	return doc
}

func TestVersionNumbersAreDense(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	versions := NewVersionStore(db)

	doc := commitBody(t, docs, "a.md", "v1 body", 0)
	commitBody(t, docs, "a.md", "v2 body", 0)
	commitBody(t, docs, "a.md", "v3 body", 0)

	history, err := versions.List(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 snapshots after 3 commits, got %d", len(history))
	}
	for i, version := range history {
		if version.VersionNum != i+1 {
			t.Fatalf("expected dense numbering, got v%d at index %d", version.VersionNum, i)
		}
	}
	if history[0].Markdown != "v1 body" || history[1].Markdown != "v2 body" {
		t.Fatalf("snapshots hold wrong content: %+v", history)
	}
}

func TestVersionPruningKeepsNewest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	versions := NewVersionStore(db)

	doc := commitBody(t, docs, "a.md", "body 1", 2)
	for i := 2; i <= 5; i++ {
		commitBody(t, docs, "a.md", "body "+string(rune('0'+i)), 2)
	}

	history, err := versions.List(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("retention 2: expected 2 survivors, got %d", len(history))
	}
	if history[0].VersionNum != 3 || history[1].VersionNum != 4 {
		t.Fatalf("pruning must drop oldest and never renumber, got v%d and v%d",
			history[0].VersionNum, history[1].VersionNum)
	}
}

func TestPruneZeroIsNoOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	versions := NewVersionStore(db)

	doc := commitBody(t, docs, "a.md", "one", 0)
	commitBody(t, docs, "a.md", "two", 0)

	pruned, err := versions.Prune(ctx, doc.ID, 0)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 0 {
		t.Fatalf("keep=0 must disable pruning, removed %d", pruned)
	}
}

func TestVersionGetNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	versions := NewVersionStore(db)

	doc := commitBody(t, docs, "a.md", "one", 0)

	if _, err := versions.Get(ctx, doc.ID, 9); !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}

	var typed *VersionNotFoundError
	_, err := versions.Get(ctx, doc.ID, 9)
	if !errors.As(err, &typed) || typed.VersionNum != 9 {
		t.Fatalf("expected typed not-found error naming v9, got %v", err)
	}
}

func TestVersionDiff(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	versions := NewVersionStore(db)

	doc := commitBody(t, docs, "a.md", "old line\n", 0)
	commitBody(t, docs, "a.md", "new line\n", 0)
	commitBody(t, docs, "a.md", "final\n", 0)

	diff, err := versions.Diff(ctx, doc.ID, 1, 2)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(diff, "-old line") || !strings.Contains(diff, "+new line") {
		t.Fatalf("unexpected diff:\n%s", diff)
	}
	if !strings.Contains(diff, "v1") || !strings.Contains(diff, "v2") {
		t.Fatalf("diff labels missing:\n%s", diff)
	}

	same, err := versions.Diff(ctx, doc.ID, 1, 1)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if same != "" {
		t.Fatalf("identical versions should produce an empty diff, got %q", same)
	}
}

func TestRevertRestoresContentAndSnapshots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	versions := NewVersionStore(db)

	doc := commitBody(t, docs, "a.md", "original", 0)
	commitBody(t, docs, "a.md", "edited", 0)

	reverted, err := versions.Revert(ctx, doc.ID, 1, 0)
	if err != nil {
		t.Fatalf("revert: %v", err)
	}
	if reverted.Markdown != "original" {
		t.Fatalf("revert did not restore content: %q", reverted.Markdown)
	}

	history, err := versions.List(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("revert must snapshot the pre-revert state, got %d versions", len(history))
	}
	if history[1].Markdown != "edited" {
		t.Fatalf("pre-revert content missing from history: %+v", history[1])
	}

	stored, err := docs.GetByPath(ctx, "a.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Markdown != "original" || stored.Hash != reverted.Hash {
		t.Fatalf("stored document not reverted: %+v", stored)
	}

	status := commitStatusAfterRevert(t, docs, "a.md", "original")
	if status != domain.StatusUnchanged {
		t.Fatalf("recommitting the reverted body should be unchanged, got %s", status)
	}
}

func commitStatusAfterRevert(t *testing.T, docs *DocumentStore, path, body string) domain.CommitStatus {
	t.Helper()
	stamp := time.Now().UTC()
	_, status, err := docs.Commit(context.Background(), stagedDoc(path, "doc", body), 0, &stamp)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return status
}

func TestRevertMissingVersionFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	versions := NewVersionStore(db)

	doc := commitBody(t, docs, "a.md", "one", 0)
	if _, err := versions.Revert(ctx, doc.ID, 5, 0); !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestSaveVersionPreservesFrontMatter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewDocumentStore(db)
	versions := NewVersionStore(db)

	stamp := time.Now().UTC()
	staged := stagedDoc("a.md", "a", "one")
	staged.FrontMatter = map[string]any{"title": "Original"}
	doc, _, err := docs.Commit(ctx, staged, 0, &stamp)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	edited := stagedDoc("a.md", "a", "two")
	edited.FrontMatter = map[string]any{"title": "Edited"}
	if _, _, err := docs.Commit(ctx, edited, 0, &stamp); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if _, err := versions.Revert(ctx, doc.ID, 1, 0); err != nil {
		t.Fatalf("revert: %v", err)
	}
	stored, err := docs.GetByPath(ctx, "a.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.FrontMatter["title"] != "Original" {
		t.Fatalf("revert must restore frontmatter, got %v", stored.FrontMatter)
	}
}
