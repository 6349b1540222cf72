package interchange

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/imyousuf/stringgraph/internal/graph"
)

// Record kinds of the JSON-lines format.
const (
	KindNode     = "node"
	KindEdge     = "edge"
	KindProperty = "property"
)

// record is one line of the JSON-lines format.
type record struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type nodeData struct {
	ID string `json:"id"`
}

// WriteJSONL writes g as JSON lines: node records, then edge records, then
// property records.
func WriteJSONL(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	emit := func(kind string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", kind, err)
		}
		if err := enc.Encode(record{Kind: kind, Data: data}); err != nil {
			return fmt.Errorf("encode %s: %w", kind, err)
		}
		return nil
	}

	d := FromGraph(g)
	for _, n := range d.Nodes {
		if err := emit(KindNode, nodeData{ID: n}); err != nil {
			return err
		}
	}
	for _, e := range d.Edges {
		if err := emit(KindEdge, e); err != nil {
			return err
		}
	}
	for _, p := range d.Properties {
		if err := emit(KindProperty, p); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadJSONL reads JSON lines from r into c. Blank lines are skipped. A
// property record must come after a record that adds its node.
func ReadJSONL(r io.Reader, c graph.Constructing) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer for potentially large lines.
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("line %d: unmarshal record: %w", line, err)
		}

		switch rec.Kind {
		case KindNode:
			var n nodeData
			if err := json.Unmarshal(rec.Data, &n); err != nil {
				return fmt.Errorf("line %d: unmarshal node: %w", line, err)
			}
			c.AddNode(n.ID)
		case KindEdge:
			var e EdgeDoc
			if err := json.Unmarshal(rec.Data, &e); err != nil {
				return fmt.Errorf("line %d: unmarshal edge: %w", line, err)
			}
			c.AddEdge(e.From, e.Label, e.To)
		case KindProperty:
			var p PropertyDoc
			if err := json.Unmarshal(rec.Data, &p); err != nil {
				return fmt.Errorf("line %d: unmarshal property: %w", line, err)
			}
			if err := c.SetNodeProperty(p.Node, p.Name, p.Value); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
		default:
			return fmt.Errorf("line %d: unknown record kind: %q", line, rec.Kind)
		}
	}
	return scanner.Err()
}
