// Package yaml parses YAML text into an immutable, position-aware syntax
// tree and answers cursor lookups against it.
//
// The tree is built with tree-sitter, so any input produces a result: broken
// fragments become ERROR nodes and are listed in [Document.Errors]. All
// offsets are byte offsets into the parsed text.
//
// The package also wraps [github.com/goccy/go-yaml] for decoding, encoding,
// YAML paths and schema validation errors.
package yaml
