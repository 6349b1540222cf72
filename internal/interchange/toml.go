package interchange

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/imyousuf/stringgraph/internal/graph"
)

// WriteTOML writes g as a TOML Document.
func WriteTOML(w io.Writer, g *graph.Graph) error {
	if err := toml.NewEncoder(w).Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	return nil
}

// ReadTOML reads a TOML Document from r into c. Unknown fields are
// rejected.
func ReadTOML(r io.Reader, c graph.Constructing) error {
	var d Document
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&d); err != nil {
		return fmt.Errorf("decode toml: %w", err)
	}
	return d.Apply(c)
}
