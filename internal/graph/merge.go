package graph

import "fmt"

// Merge combines graphs into a new graph holding the union of their nodes
// and edges. When several graphs set the same property of a node, the value
// from the later graph wins.
func Merge(graphs ...*Graph) (*Graph, error) {
	b := NewBuilder()
	for i, g := range graphs {
		if err := g.Replay(b); err != nil {
			return nil, fmt.Errorf("merge graph %d: %w", i, err)
		}
	}
	return b.Build(), nil
}
