package interchange

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/imyousuf/stringgraph/internal/graph"
)

// Format is a text representation of a graph.
type Format string

const (
	JSONL Format = "jsonl"
	YAML  Format = "yaml"
	TOML  Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{JSONL, YAML, TOML}

// ParseFormat accepts a format name as written on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "jsonl", "ndjson", "json-lines":
		return JSONL, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", fmt.Errorf("unknown interchange format %q", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot tell the format of %s: no file extension", path)
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", fmt.Errorf("cannot tell the format of %s: %w", path, err)
	}
	return f, nil
}

// Read reads a document in format f from r into c.
func Read(r io.Reader, f Format, c graph.Constructing) error {
	switch f {
	case JSONL:
		return ReadJSONL(r, c)
	case YAML:
		return ReadYAML(r, c)
	case TOML:
		return ReadTOML(r, c)
	}
	return fmt.Errorf("unknown interchange format %q", f)
}

// Write writes g to w in format f.
func Write(w io.Writer, g *graph.Graph, f Format) error {
	switch f {
	case JSONL:
		return WriteJSONL(w, g)
	case YAML:
		return WriteYAML(w, g)
	case TOML:
		return WriteTOML(w, g)
	}
	return fmt.Errorf("unknown interchange format %q", f)
}

// Load reads the document at path into c, picking the format from the
// file extension.
func Load(path string, c graph.Constructing) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	if err := Read(file, f, c); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
