package graph

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyousuf/stringgraph/internal/strpool"
)

// newSampleGraph builds the graph used across the query tests:
// isolated nodes a and b, a self loop on c and i, an unlabeled edge d->e,
// and three edges out of o.
func newSampleGraph(t *testing.T) *Graph {
	t.Helper()
	b := NewBuilder()
	b.AddNode("a")
	b.AddNode("b")
	b.AddEdge("d", "", "e")
	b.AddEdge("f", "h", "g")
	b.AddEdge("i", "cycle", "i")
	b.AddEdge("c", "cycle", "c")
	b.AddEdge("o", "field", "m1")
	b.AddEdge("o", "field", "m2")
	b.AddEdge("o", "", "m3")
	require.NoError(t, b.SetNodeProperty("a", "prop1", ""))
	require.NoError(t, b.SetNodeProperty("a", "prop2", "foo"))
	return b.Build()
}

func edgeStrings(es EdgeSet) []string {
	var out []string
	for _, e := range es.Sorted() {
		out = append(out, e.String())
	}
	return out
}

func TestSampleScenario(t *testing.T) {
	g := newSampleGraph(t)

	assert.Equal(t, 12, g.Nodes().Len())
	assert.Equal(t, 7, g.Edges().Len())
	assert.Equal(t, []string{"c -[cycle]-> c", "i -[cycle]-> i"}, edgeStrings(g.EdgesLabeled("cycle")))
	assert.Equal(t, []string{"m1", "m2", "m3"}, g.NodesFromNode("o").Strings())
	assert.Equal(t, []string{"", "field"}, g.EdgeLabelsFromNode("o").Strings())
	assert.True(t, g.HasEdge("o", "field", "m1"))
	assert.False(t, g.HasEdge("x", "y", "z"))
	assert.False(t, g.HasEdge("o", "field", "m3"))
}

func TestDedup(t *testing.T) {
	b := NewBuilder()
	b.AddNode("x")
	b.AddNode("x")
	b.AddEdge("x", "l", "y")
	b.AddEdge("x", "l", "y")
	b.AddEdge("x", "", "y")
	assert.Equal(t, 2, b.NodeCount())
	assert.Equal(t, 2, b.EdgeCount())

	g := b.Build()
	assert.Equal(t, 2, g.Nodes().Len())
	assert.Equal(t, 2, g.Edges().Len())
}

func TestUnknownStringsGiveEmptyResults(t *testing.T) {
	g := newSampleGraph(t)

	for _, s := range []string{"nope", "cycle", "h", "a"} {
		assert.True(t, g.NodesFromNode(s).IsEmpty(), "NodesFromNode(%q)", s)
		assert.True(t, g.NodesToNode(s).IsEmpty(), "NodesToNode(%q)", s)
		assert.True(t, g.EdgesFromNode(s).IsEmpty(), "EdgesFromNode(%q)", s)
		assert.True(t, g.EdgeLabelsToNode(s).IsEmpty(), "EdgeLabelsToNode(%q)", s)
	}
	assert.True(t, g.EdgesLabeled("no-such-label").IsEmpty())
	assert.True(t, g.NodesFromNodeVia("o", "no-such-label").IsEmpty())
	assert.True(t, g.NodeProperties("nope").Len() == 0)
	assert.False(t, g.HasNode("cycle"), "labels are not nodes")
	assert.True(t, g.HasNode("m3"))
}

func TestNodesMatching(t *testing.T) {
	g := newSampleGraph(t)
	tests := []struct {
		from, label, to Pattern
		want            []string
	}{
		{P("?"), Any, Any, []string{"c", "d", "f", "i", "o"}},
		{Any, Any, P("?x"), []string{"c", "e", "g", "i", "m1", "m2", "m3"}},
		{P("?"), Any, P("?"), []string{"a", "b", "c", "d", "e", "f", "g", "i", "m1", "m2", "m3", "o"}},
		{P("?"), Any, P("m1"), []string{"o"}},
		{P("o"), Any, P("?"), []string{"m1", "m2", "m3"}},
		{P("?"), P("field"), P("m1"), []string{"o"}},
		{P("?"), P("field"), P("m3"), nil},
		{P("o"), P("field"), P("?"), []string{"m1", "m2"}},
		{P("?"), P("cycle"), Any, []string{"c", "i"}},
		{Any, P("field"), P("?"), []string{"m1", "m2"}},
		{P("?"), P("cycle"), P("?"), []string{"c", "i"}},
		{P("?"), P(""), P("?"), []string{"d", "e", "m3", "o"}},
		{P("?"), P("nope"), P("?"), nil},
		{P("unknown"), Any, P("?"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+" "+tt.label.String()+" "+tt.to.String(), func(t *testing.T) {
			got, err := g.NodesMatching(tt.from, tt.label, tt.to)
			require.NoError(t, err)
			if tt.want == nil {
				assert.True(t, got.IsEmpty(), "got %v", got.Strings())
				return
			}
			assert.Equal(t, tt.want, got.Strings())
		})
	}
}

func TestNodesMatchingErrors(t *testing.T) {
	g := newSampleGraph(t)

	invalid := [][3]Pattern{
		{P("a"), Any, P("b")},
		{Any, Any, Any},
		{Any, P("?l"), Any},
		{P("o"), P("field"), Any},
	}
	for _, p := range invalid {
		_, err := g.NodesMatching(p[0], p[1], p[2])
		var ie *InvalidQueryError
		if assert.ErrorAs(t, err, &ie, "%v", p) {
			assert.Equal(t, p[0], ie.From)
			assert.Equal(t, p[2], ie.To)
		}
	}

	unsupported := [][3]Pattern{
		{P("?x"), P("?l"), P("b")},
		{P("?x"), P("?l"), P("?y")},
		{P("?x"), Any, Any}, // sanity: supported
	}
	for _, p := range unsupported[:2] {
		_, err := g.NodesMatching(p[0], p[1], p[2])
		var ue *UnsupportedQueryError
		require.ErrorAs(t, err, &ue)
		assert.Contains(t, err.Error(), `"?l"`)
	}
	_, err := g.NodesMatching(unsupported[2][0], unsupported[2][1], unsupported[2][2])
	assert.NoError(t, err)
}

func TestPatternEquivalence(t *testing.T) {
	g := newSampleGraph(t)

	fromParts := map[string]bool{}
	for e := range g.Edges().All() {
		fromParts[e.From().String()] = true
	}
	got, err := g.NodesMatching(P("?"), Any, Any)
	require.NoError(t, err)
	assert.Equal(t, len(fromParts), got.Len())
	for n := range got.All() {
		assert.True(t, fromParts[n.String()], n.String())
	}

	labeled, err := g.NodesMatching(P("?"), P("field"), P("?"))
	require.NoError(t, err)
	union := g.EdgesLabeled("field").fromNodes().Union(g.EdgesLabeled("field").toNodes())
	assert.Equal(t, union.Strings(), labeled.Strings())
}

func TestEdgesMatching(t *testing.T) {
	g := newSampleGraph(t)
	tests := []struct {
		name            string
		from, label, to Pattern
		want            int
	}{
		{"all", Any, Any, Any, 7},
		{"query slots are unconstrained", P("?f"), Any, P("?t"), 7},
		{"from", P("o"), Any, Any, 3},
		{"label", Any, P("field"), Any, 2},
		{"empty label", Any, P(""), Any, 2},
		{"to", Any, Any, P("c"), 1},
		{"from and label", P("o"), P("field"), Any, 2},
		{"label and to", Any, P("cycle"), P("i"), 1},
		{"from and to", P("o"), Any, P("m3"), 1},
		{"triple", P("o"), P("field"), P("m2"), 1},
		{"missing triple", P("o"), P("cycle"), P("m2"), 0},
		{"unknown from", P("zz"), Any, Any, 0},
		{"unknown label", P("o"), P("zz"), Any, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.EdgesMatching(tt.from, tt.label, tt.to).Len())
		})
	}
}

func TestEdgesSortedOrder(t *testing.T) {
	g := newSampleGraph(t)
	assert.Equal(t, []string{
		"c -[cycle]-> c",
		"d -[]-> e",
		"f -[h]-> g",
		"i -[cycle]-> i",
		"o -[]-> m3",
		"o -[field]-> m1",
		"o -[field]-> m2",
	}, edgeStrings(g.Edges()))
}

func TestNodeProperties(t *testing.T) {
	g := newSampleGraph(t)

	props := g.NodeProperties("a")
	assert.Equal(t, 2, props.Len())
	assert.Equal(t, map[string]string{"prop1": "", "prop2": "foo"}, props.Map())
	assert.Equal(t, []string{"prop1", "prop2"}, props.Names())
	assert.True(t, g.HasNodeProperty("a", "prop1"))
	assert.False(t, g.HasNodeProperty("b", "prop1"))

	v, err := g.NodePropertyValue("a", "prop2")
	require.NoError(t, err)
	assert.Equal(t, "foo", v)

	_, err = g.NodeProperty("a", "prop3")
	var pe *NoSuchPropertyError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "a", pe.Node)
	assert.Equal(t, "prop3", pe.Name)

	assert.Equal(t, "dflt", g.NodePropertyValueOr("a", "prop3", "dflt"))
	assert.Equal(t, "", g.NodePropertyValueOr("a", "prop1", "dflt"))
}

func TestSetNodePropertyReplacesAndValidates(t *testing.T) {
	b := NewBuilder()
	b.AddEdge("x", "label", "y")
	require.NoError(t, b.SetNodeProperty("x", "k", "1"))
	require.NoError(t, b.SetNodeProperty("x", "k", "2"))

	err := b.SetNodeProperty("label", "k", "v")
	var ne *NoSuchNodeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "label", ne.Node)
	require.ErrorAs(t, b.SetNodeProperty("ghost", "k", "v"), &ne)

	g := b.Build()
	assert.Equal(t, 1, g.NodeProperties("x").Len())
	assert.Equal(t, "2", g.NodePropertyValueOr("x", "k", ""))
}

func TestNewStoreValidation(t *testing.T) {
	in := strpool.NewInterner()
	a := in.Intern("a")
	b := in.Intern("b")
	l := in.Intern("l")
	pool := in.Freeze()

	_, err := NewStore(pool, []ID{a, b}, []ID{a, b}, nil)
	assert.Error(t, err, "edge array not a multiple of three")

	_, err = NewStore(pool, []ID{a, 99}, nil, nil)
	var ue *strpool.UnknownIDError
	assert.True(t, errors.As(err, &ue), "unknown node id: %v", err)

	_, err = NewStore(pool, []ID{a}, []ID{a, b, l}, nil)
	assert.Error(t, err, "edge endpoint not a node")

	_, err = NewStore(pool, []ID{a, b}, []ID{a, b, l, a, b, l}, nil)
	assert.Error(t, err, "duplicate edge")

	_, err = NewStore(pool, []ID{a, b}, nil, map[ID][]ID{l: {a, b}})
	assert.Error(t, err, "properties on a non-node")

	s, err := NewStore(pool, []ID{a, b}, []ID{a, b, l}, map[ID][]ID{a: {l, b}})
	require.NoError(t, err)
	assert.Equal(t, 1, s.EdgeCount())
	assert.Equal(t, []ID{a}, s.NodesWithProperties())
}

func TestMergeAndReplay(t *testing.T) {
	first := newSampleGraph(t)

	b := NewBuilder()
	b.AddEdge("o", "field", "m1")
	b.AddEdge("o", "extra", "z")
	require.NoError(t, b.SetNodeProperty("o", "kind", "object"))
	b.AddNode("a")
	require.NoError(t, b.SetNodeProperty("a", "prop2", "bar"))
	second := b.Build()

	merged, err := Merge(first, second)
	require.NoError(t, err)
	assert.Equal(t, 13, merged.Nodes().Len())
	assert.Equal(t, 8, merged.Edges().Len())
	assert.Equal(t, "bar", merged.NodePropertyValueOr("a", "prop2", ""))
	assert.Equal(t, "", merged.NodePropertyValueOr("a", "prop1", "missing"))
	assert.Equal(t, "object", merged.NodePropertyValueOr("o", "kind", ""))
}

func TestConcurrentReads(t *testing.T) {
	g := newSampleGraph(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if g.EdgesLabeled("field").Len() != 2 {
					t.Error("EdgesLabeled(field) changed size")
					return
				}
				if g.Nodes().Intersect(g.FromNodes()).Len() != 5 {
					t.Error("intersection changed size")
					return
				}
				if !g.Nodes().Contains("m2") {
					t.Error("Contains(m2) = false")
					return
				}
			}
		}()
	}
	wg.Wait()
}
