// Package markdown adapts the goldmark engine into the token stream the
// extraction pipeline consumes, and handles source concerns that sit in
// front of tokenization: file discovery, frontmatter splitting, and slug
// derivation.
package markdown
