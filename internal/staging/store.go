package staging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-mdpub/internal/checksum"
)

// Store persists staged documents as one JSON file per source document in a
// staging directory, decoupling extract from commit so the two stages can
// run as separate passes or separate processes.
type Store struct {
	dir string
}

// NewStore constructs a Store rooted at dir. The directory is created on
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

// Dir returns the staging directory path.
func (s *Store) Dir() string {
	return s.dir
}

// FileName derives the staged file name for a document. Slugs may collide
// across source paths, so a short path fingerprint keeps names unique while
// the slug prefix keeps listings readable and sorted deterministically.
func FileName(doc *Document) string {
	return fmt.Sprintf("%s-%s.json", doc.Slug, checksum.Text(doc.Path)[:8])
}

// Write serializes doc into the staging directory and returns the file path.
func (s *Store) Write(doc *Document) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("staging dir %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal staged document %s: %w", doc.Path, err)
	}

	path := filepath.Join(s.dir, FileName(doc))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write staged document %s: %w", path, err)
	}
	return path, nil
}

// List returns the staged file paths in name order. Commit processes files
// in this order so repeated runs over unchanged input classify documents
// identically. A missing staging directory yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read staging dir %s: %w", s.dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(s.dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Read loads and validates one staged file.
func (s *Store) Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read staged file %s: %w", path, err)
	}
	if err := ValidateDocument(data); err != nil {
		return nil, fmt.Errorf("staged file %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode staged file %s: %w", path, err)
	}
	return &doc, nil
}
