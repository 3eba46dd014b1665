package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// SplitFrontMatter extracts the structured frontmatter mapping and the
// markdown body from source. Documents without a frontmatter header return
// an empty map and the body unchanged. A header that fails to parse as a
// mapping is a malformed-input error for the caller to attach a path to.
func SplitFrontMatter(source []byte) (map[string]any, []byte, error) {
	var meta map[string]any

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}

	return meta, body, nil
}
