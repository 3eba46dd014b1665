package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	slug "github.com/goliatone/go-slug"

	"github.com/goliatone/go-mdpub/internal/checksum"
)

// sourceExtensions lists the file suffixes the loader treats as markdown.
var sourceExtensions = map[string]struct{}{
	".md":  {},
	".mdx": {},
}

// SourceDocument is a markdown file read from disk and split into
// frontmatter and body. Checksum fingerprints the body only, so frontmatter
// edits that do not touch content still surface as changes through the
// frontmatter field itself.
type SourceDocument struct {
	// Path is the slash-separated source path relative to the loader root.
	Path string
	// Slug comes from the frontmatter `slug` field when present, otherwise
	// it is derived from the file stem. Slugs are not identity.
	Slug        string
	Raw         []byte
	Body        []byte
	FrontMatter map[string]any
	Checksum    string
}

// Loader discovers and reads markdown documents beneath a filesystem root.
type Loader struct {
	fs fs.FS
}

// NewLoader constructs a Loader over the provided filesystem. Callers
// typically pass os.DirFS(root) so stored paths stay relative to the
// content root.
func NewLoader(filesystem fs.FS) *Loader {
	return &Loader{fs: filesystem}
}

// Discover returns the relative paths of every markdown file under dir,
// sorted so repeated runs visit documents in the same order. Passing a file
// path returns just that file when it has a markdown extension.
func (l *Loader) Discover(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := filepath.ToSlash(filepath.Clean(dir))
	if root == "" {
		root = "."
	}

	if info, err := fs.Stat(l.fs, root); err == nil && !info.IsDir() {
		if isMarkdownPath(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var paths []string
	err := fs.WalkDir(l.fs, root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if isMarkdownPath(path) {
			paths = append(paths, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("markdown loader walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Load reads and splits a single markdown document.
func (l *Loader) Load(ctx context.Context, path string) (*SourceDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := filepath.ToSlash(filepath.Clean(path))
	raw, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}

	meta, body, err := SplitFrontMatter(raw)
	if err != nil {
		return nil, fmt.Errorf("markdown loader %s: %w", rel, err)
	}

	return &SourceDocument{
		Path:        rel,
		Slug:        documentSlug(rel, meta),
		Raw:         raw,
		Body:        body,
		FrontMatter: meta,
		Checksum:    checksum.Bytes(body),
	}, nil
}

func isMarkdownPath(path string) bool {
	_, ok := sourceExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// documentSlug prefers an explicit frontmatter slug and falls back to a
// normalized file stem.
func documentSlug(path string, meta map[string]any) string {
	if raw, ok := meta["slug"]; ok {
		if value, ok := raw.(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	normalized, err := slug.Normalize(stem)
	if err != nil || normalized == "" {
		return strings.ToLower(stem)
	}
	return normalized
}
