// Package export renders committed documents back to publishable markdown
// with a normalized frontmatter header, plus a JSON sidecar carrying the
// structural model for downstream tooling.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-mdpub/internal/logging"
	"github.com/goliatone/go-mdpub/internal/store"
	"github.com/goliatone/go-mdpub/pkg/interfaces"
)

// Options controls rendering and truncation for one export run.
type Options struct {
	// Format is the output extension, "md" or "mdx". The body is identical
	// either way; the extension signals downstream toolchains.
	Format string
	// OutDir is the root the exported tree is written under. Directories
	// mirror each document's source path.
	OutDir string
	// MaxTags caps tags per section in the sidecar, keeping the
	// lowest-position attachments. Zero means unlimited.
	MaxTags int
	// MaxMetrics caps metrics per section in the sidecar, keeping the
	// first names in sorted order. Zero means unlimited.
	MaxMetrics int
}

// Exporter renders stored documents to disk.
type Exporter struct {
	store  *store.DocumentStore
	opts   Options
	logger interfaces.Logger
}

// NewExporter constructs an Exporter. A nil logger is replaced with a no-op.
func NewExporter(docs *store.DocumentStore, opts Options, logger interfaces.Logger) *Exporter {
	if logger == nil {
		logger = logging.NoOp()
	}
	if opts.Format == "" {
		opts.Format = "md"
	}
	return &Exporter{store: docs, opts: opts, logger: logger}
}

// Result names the files written for one document.
type Result struct {
	MarkdownPath string `json:"markdown_path"`
	SidecarPath  string `json:"sidecar_path"`
}

// WriteDocument renders one document and its sidecar under the output root,
// mirroring the directory layout of the source path.
func (e *Exporter) WriteDocument(ctx context.Context, doc *store.Document) (*Result, error) {
	sections, err := e.store.SectionsWithChildren(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	body, err := RenderDocument(doc, sections)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", doc.SourcePath, err)
	}
	sidecar, err := renderSidecar(doc, sections, e.opts.MaxTags, e.opts.MaxMetrics)
	if err != nil {
		return nil, fmt.Errorf("sidecar %s: %w", doc.SourcePath, err)
	}

	dir := filepath.Join(e.opts.OutDir, filepath.Dir(filepath.FromSlash(doc.SourcePath)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	mdPath := filepath.Join(dir, doc.Slug+"."+e.opts.Format)
	if err := os.WriteFile(mdPath, []byte(body), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", mdPath, err)
	}
	jsonPath := filepath.Join(dir, doc.Slug+".json")
	if err := os.WriteFile(jsonPath, sidecar, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", jsonPath, err)
	}

	e.logger.Debug("exported document",
		"slug", doc.Slug,
		"markdown", mdPath,
		"sidecar", jsonPath,
	)
	return &Result{MarkdownPath: mdPath, SidecarPath: jsonPath}, nil
}

// RenderDocument produces the full normalized output: a YAML frontmatter
// header with deterministically ordered keys and the document slug
// injected, then the body rebuilt from visible sections.
func RenderDocument(doc *store.Document, sections []*store.SectionData) (string, error) {
	header, err := renderFrontMatter(doc.FrontMatter, doc.Slug)
	if err != nil {
		return "", err
	}
	return header + "\n" + RenderBody(sections) + "\n", nil
}

// RenderBody joins the blocks of every non-hidden section with blank lines,
// in stored order. Hidden sections are suppressed entirely.
func RenderBody(sections []*store.SectionData) string {
	var parts []string
	for _, section := range sections {
		if section.Section.Hidden {
			continue
		}
		for _, block := range section.Blocks {
			parts = append(parts, block.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// renderFrontMatter emits the fenced YAML header. Keys are sorted so the
// same document always renders byte-identically; the slug key is always
// present and reflects the stored slug even when the source frontmatter
// carried a different value.
func renderFrontMatter(meta map[string]any, slug string) (string, error) {
	merged := make(map[string]any, len(meta)+1)
	for key, value := range meta {
		merged[key] = value
	}
	merged["slug"] = slug

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(merged[key]); err != nil {
			return "", fmt.Errorf("encode frontmatter key %s: %w", key, err)
		}
		mapping.Content = append(mapping.Content, keyNode, valueNode)
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("finalize frontmatter: %w", err)
	}
	return "---\n" + sb.String() + "---\n", nil
}

// SidecarSection is the structural summary of one section in the sidecar.
type SidecarSection struct {
	Position int                `json:"position"`
	Hash     string             `json:"hash"`
	Tags     []string           `json:"tags,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// SidecarDocument is the JSON sidecar payload written next to the markdown.
type SidecarDocument struct {
	Slug        string           `json:"slug"`
	SourcePath  string           `json:"path"`
	CommittedAt *string          `json:"committed_at"`
	FrontMatter map[string]any   `json:"frontmatter,omitempty"`
	Sections    []SidecarSection `json:"sections"`
}

func renderSidecar(doc *store.Document, sections []*store.SectionData, maxTags, maxMetrics int) ([]byte, error) {
	payload := SidecarDocument{
		Slug:        doc.Slug,
		SourcePath:  doc.SourcePath,
		FrontMatter: doc.FrontMatter,
		Sections:    make([]SidecarSection, 0, len(sections)),
	}
	if doc.CommittedAt != nil {
		stamp := doc.CommittedAt.UTC().Format(time.RFC3339)
		payload.CommittedAt = &stamp
	}

	for _, section := range sections {
		if section.Section.Hidden {
			continue
		}
		payload.Sections = append(payload.Sections, SidecarSection{
			Position: section.Section.Position,
			Hash:     section.Section.Hash,
			Tags:     truncateTags(section.Tags, maxTags),
			Metrics:  truncateMetrics(section.Metrics, maxMetrics),
		})
	}
	return json.MarshalIndent(payload, "", "  ")
}

// truncateTags keeps the lowest-position attachments up to limit. The input
// arrives ordered by position already.
func truncateTags(tags []store.TagRef, limit int) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names
}

// truncateMetrics keeps the first limit metrics by sorted name. The input
// arrives ordered by name already.
func truncateMetrics(metrics []*store.SectionMetric, limit int) map[string]float64 {
	if len(metrics) == 0 {
		return nil
	}
	kept := metrics
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	out := make(map[string]float64, len(kept))
	for _, metric := range kept {
		out[metric.Name] = metric.Value
	}
	return out
}
