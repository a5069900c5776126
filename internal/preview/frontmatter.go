package preview

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Frontmatter delimiters.
var (
	yamlDelimiter = []byte("---")
	tomlDelimiter = []byte("+++")
)

// ParseFrontmatter detects and parses frontmatter from raw Markdown bytes.
// It supports YAML (--- delimiters) and TOML (+++ delimiters). It returns
// the parsed metadata as a map, the remaining body content, and any error
// encountered during parsing.
//
// If no frontmatter delimiters are found, it returns nil metadata, the
// full content as body, and no error.
func ParseFrontmatter(raw []byte) (metadata map[string]any, body []byte, err error) {
	trimmed := bytes.TrimLeft(raw, " \t\n\r")

	var delimiter []byte
	var format string

	switch {
	case bytes.HasPrefix(trimmed, yamlDelimiter):
		delimiter = yamlDelimiter
		format = "yaml"
	case bytes.HasPrefix(trimmed, tomlDelimiter):
		delimiter = tomlDelimiter
		format = "toml"
	default:
		// No frontmatter found.
		return nil, raw, nil
	}

	// Find the end of the opening delimiter line.
	rest := trimmed[len(delimiter):]
	nlIdx := bytes.IndexByte(rest, '\n')
	if nlIdx == -1 {
		// Only the opening delimiter, no closing one.
		return nil, raw, nil
	}
	rest = rest[nlIdx+1:]

	// Find the closing delimiter.
	before, after, ok := bytes.Cut(rest, delimiter)
	if !ok {
		return nil, raw, fmt.Errorf("closing frontmatter delimiter %q not found", string(delimiter))
	}

	// Skip to end of the closing delimiter line.
	nlIdx = bytes.IndexByte(after, '\n')
	if nlIdx == -1 {
		body = nil
	} else {
		body = after[nlIdx+1:]
	}

	if len(bytes.TrimSpace(before)) == 0 {
		return make(map[string]any), body, nil
	}

	metadata = make(map[string]any)
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(before, &metadata); err != nil {
			return nil, raw, fmt.Errorf("parsing yaml frontmatter: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(before, &metadata); err != nil {
			return nil, raw, fmt.Errorf("parsing toml frontmatter: %w", err)
		}
	}

	return metadata, body, nil
}

// Title extracts a page title from frontmatter metadata. It returns the
// fallback when no title field is present.
func Title(metadata map[string]any, fallback string) string {
	if metadata != nil {
		if t, ok := metadata["title"].(string); ok && t != "" {
			return t
		}
	}
	return fallback
}
