package codec

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyousuf/stringgraph/internal/graph"
	"github.com/imyousuf/stringgraph/internal/strpool"
)

func newSampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
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

func encode(t *testing.T, g *graph.Graph) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g.Store()))
	return buf.Bytes()
}

type rawBlock struct {
	tag  string
	body []byte
}

// rawStream writes a stream with an arbitrary header and block list.
func rawStream(t *testing.T, h Header, blocks ...rawBlock) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeHeader(w, h))
	for _, b := range blocks {
		require.NoError(t, writeBlock(w, b.tag, b.body))
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

// sampleBlocks returns the four standard blocks of g.
func sampleBlocks(t *testing.T, g *graph.Graph) (edges, nodes, props, end rawBlock) {
	t.Helper()
	s := g.Store()
	eb, err := edgesBody(s)
	require.NoError(t, err)
	nb, err := nodesBody(s)
	require.NoError(t, err)
	pb, err := propertiesBody(s)
	require.NoError(t, err)
	pool, err := s.Pool().MarshalBinary()
	require.NoError(t, err)
	return rawBlock{TagEdges, eb}, rawBlock{TagNodes, nb}, rawBlock{TagNodeProperties, pb}, rawBlock{TagEnd, pool}
}

var current = Header{Format: FormatName, Major: MajorVersion, Minor: MinorVersion}

// assertSameGraph compares node sets, edge triples and properties.
func assertSameGraph(t *testing.T, want, got *graph.Graph) {
	t.Helper()
	assert.Equal(t, want.Nodes().Strings(), got.Nodes().Strings())
	assert.Equal(t, edgeTriples(want), edgeTriples(got))
	for n := range want.Nodes().All() {
		assert.Equal(t, want.NodeProperties(n.String()).Map(), got.NodeProperties(n.String()).Map(), "properties of %s", n)
	}
}

func edgeTriples(g *graph.Graph) []string {
	var out []string
	for e := range g.Edges().All() {
		out = append(out, e.From().String()+"|"+e.Label()+"|"+e.To().String())
	}
	sort.Strings(out)
	return out
}

func decodeGraph(t *testing.T, data []byte) *graph.Graph {
	t.Helper()
	s, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return graph.New(s)
}

func TestRoundTrip(t *testing.T) {
	g := newSampleGraph(t)
	got := decodeGraph(t, encode(t, g))
	assertSameGraph(t, g, got)
	assert.True(t, got.HasEdge("o", "field", "m1"))
}

func TestRoundTripNonUTF8Strings(t *testing.T) {
	b := graph.NewBuilder()
	b.AddEdge("a\xff", "l", "b")
	b.AddEdge("b", "\xc3\x28", "\x00\xfe")
	require.NoError(t, b.SetNodeProperty("b", "raw\x80", "\xff\xff"))
	g := b.Build()

	got := decodeGraph(t, encode(t, g))
	assertSameGraph(t, g, got)
	assert.True(t, got.HasEdge("a\xff", "l", "b"))
	assert.Equal(t, "\xff\xff", got.NodePropertyValueOr("b", "raw\x80", ""))
}

func TestRoundTripEmptyGraph(t *testing.T) {
	g := graph.NewBuilder().Build()
	got := decodeGraph(t, encode(t, g))
	assert.Equal(t, 0, got.Nodes().Len())
	assert.Equal(t, 0, got.Edges().Len())
}

func TestHeaderLayout(t *testing.T) {
	data := encode(t, newSampleGraph(t))
	want := append([]byte{0x80 | byte(len(FormatName))}, FormatName...)
	want = append(want, 0x81, 0x80)
	assert.Equal(t, want, data[:len(want)])

	h, err := ReadHeader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, current, h)
}

func TestScanListsBlocksInWriteOrder(t *testing.T) {
	h, blocks, err := Scan(bytes.NewReader(encode(t, newSampleGraph(t))))
	require.NoError(t, err)
	assert.Equal(t, current, h)

	var tags []string
	for _, b := range blocks {
		tags = append(tags, b.Tag)
	}
	assert.Equal(t, []string{TagEdges, TagNodes, TagNodeProperties, TagEnd}, tags)
}

func TestMinorVersionMismatchAccepted(t *testing.T) {
	g := newSampleGraph(t)
	edges, nodes, props, end := sampleBlocks(t, g)
	data := rawStream(t, Header{Format: FormatName, Major: MajorVersion, Minor: 9}, edges, nodes, props, end)
	assertSameGraph(t, g, decodeGraph(t, data))
}

func TestMajorVersionMismatchRejected(t *testing.T) {
	g := newSampleGraph(t)
	edges, nodes, props, end := sampleBlocks(t, g)
	data := rawStream(t, Header{Format: FormatName, Major: 2, Minor: 0}, edges, nodes, props, end)

	_, err := Decode(bytes.NewReader(data))
	var ie *IncompatibleFormatError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, uint32(2), ie.Found.Major)
	assert.Equal(t, uint32(MajorVersion), ie.SupportedMajor)
}

func TestUnknownBlocksSkippedAndOrderIgnored(t *testing.T) {
	g := newSampleGraph(t)
	edges, nodes, props, end := sampleBlocks(t, g)
	future := rawBlock{"future-index", []byte{0x00, 0x01, 0xff, 0x7f, 0x80}}
	trailer := rawBlock{"after-end", []byte("never read")}

	data := rawStream(t, current, future, props, rawBlock{"empty", nil}, nodes, edges, end)
	assertSameGraph(t, g, decodeGraph(t, data))

	data = rawStream(t, current, nodes, edges, props, future, end, trailer)
	assertSameGraph(t, g, decodeGraph(t, data))
}

func TestDuplicateBlockRejected(t *testing.T) {
	g := newSampleGraph(t)
	edges, nodes, props, end := sampleBlocks(t, g)
	for _, dup := range []rawBlock{edges, nodes, props} {
		t.Run(dup.tag, func(t *testing.T) {
			data := rawStream(t, current, edges, nodes, props, dup, end)
			_, err := Decode(bytes.NewReader(data))
			assert.ErrorIs(t, err, ErrDuplicateBlock)
			assert.ErrorContains(t, err, dup.tag)
		})
	}

	// an unknown tag may repeat
	future := rawBlock{"future-index", []byte{0x80}}
	data := rawStream(t, current, future, edges, nodes, future, props, end)
	assertSameGraph(t, g, decodeGraph(t, data))
}

func TestExtendedBlockBodyAccepted(t *testing.T) {
	g := newSampleGraph(t)
	edges, nodes, props, end := sampleBlocks(t, g)
	nodes.body = append(nodes.body, 0x85, 0x86)
	assertSameGraph(t, g, decodeGraph(t, rawStream(t, current, edges, nodes, props, end)))
}

func TestTruncatedStream(t *testing.T) {
	data := encode(t, newSampleGraph(t))
	for cut := 0; cut < len(data); cut++ {
		_, err := Decode(bytes.NewReader(data[:cut]))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("Decode(first %d of %d bytes) error = %v, want io.ErrUnexpectedEOF", cut, len(data), err)
		}
	}
}

func TestMissingEndBlock(t *testing.T) {
	g := newSampleGraph(t)
	edges, nodes, props, _ := sampleBlocks(t, g)
	_, err := Decode(bytes.NewReader(rawStream(t, current, edges, nodes, props)))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBadMagic(t *testing.T) {
	for _, data := range [][]byte{
		[]byte("hello, world"),
		rawStream(t, Header{Format: "other.format", Major: 1}),
	} {
		_, err := Decode(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrBadMagic)
	}
}

func TestUnknownIDRejected(t *testing.T) {
	in := strpool.NewInterner()
	in.Intern("only")
	pool, err := in.Freeze().MarshalBinary()
	require.NoError(t, err)

	// nodes block: count 2, ids 1 and 7
	nodes := rawBlock{TagNodes, []byte{0x82, 0x81, 0x87}}
	_, err = Decode(bytes.NewReader(rawStream(t, current, nodes, rawBlock{TagEnd, pool})))
	var ue *strpool.UnknownIDError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, strpool.ID(7), ue.ID)
}

func TestDecodeIntoMerges(t *testing.T) {
	data := encode(t, newSampleGraph(t))

	b := graph.NewBuilder()
	b.AddEdge("o", "field", "m9")
	require.NoError(t, DecodeInto(bytes.NewReader(data), b))
	merged := b.Build()

	assert.Equal(t, 13, merged.Nodes().Len())
	assert.Equal(t, 8, merged.Edges().Len())
	assert.Equal(t, []string{"m1", "m2", "m9"}, merged.NodesFromNodeVia("o", "field").Strings())
	assert.Equal(t, "foo", merged.NodePropertyValueOr("a", "prop2", ""))
}
