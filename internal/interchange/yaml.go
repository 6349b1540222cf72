package interchange

import (
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/imyousuf/stringgraph/internal/graph"
)

// WriteYAML writes g as a YAML Document.
func WriteYAML(w io.Writer, g *graph.Graph) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// ReadYAML reads a YAML Document from r into c. Unknown fields are
// rejected; an empty input is an empty graph.
func ReadYAML(r io.Reader, c graph.Constructing) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d Document
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return d.Apply(c)
}
