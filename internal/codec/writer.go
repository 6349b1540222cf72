package codec

import (
	"bufio"
	"fmt"
	"io"

	"github.com/imyousuf/stringgraph/internal/graph"
	"github.com/imyousuf/stringgraph/internal/vlq"
)

// Encode writes s to w.
func Encode(w io.Writer, s *graph.Store) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, Header{Format: FormatName, Major: MajorVersion, Minor: MinorVersion}); err != nil {
		return err
	}

	blocks := []struct {
		tag  string
		body func() ([]byte, error)
	}{
		{TagEdges, func() ([]byte, error) { return edgesBody(s) }},
		{TagNodes, func() ([]byte, error) { return nodesBody(s) }},
		{TagNodeProperties, func() ([]byte, error) { return propertiesBody(s) }},
		{TagEnd, s.Pool().MarshalBinary},
	}
	for _, b := range blocks {
		body, err := b.body()
		if err != nil {
			return fmt.Errorf("codec: encoding %s block: %w", b.tag, err)
		}
		if err := writeBlock(bw, b.tag, body); err != nil {
			return fmt.Errorf("codec: writing %s block: %w", b.tag, err)
		}
	}
	return bw.Flush()
}

func writeHeader(w *bufio.Writer, h Header) error {
	if err := writeString(w, h.Format); err != nil {
		return fmt.Errorf("codec: writing header: %w", err)
	}
	if err := vlq.Write(w, h.Major); err != nil {
		return fmt.Errorf("codec: writing header: %w", err)
	}
	if err := vlq.Write(w, h.Minor); err != nil {
		return fmt.Errorf("codec: writing header: %w", err)
	}
	return nil
}

func writeString(w *bufio.Writer, s string) error {
	if err := vlq.Write(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func writeBlock(w *bufio.Writer, tag string, body []byte) error {
	if err := writeString(w, tag); err != nil {
		return err
	}
	if err := vlq.Write(w, uint32(len(body))); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// appender collects vlq-encoded ids and keeps the first error.
type appender struct {
	buf []byte
	err error
}

func (a *appender) put(v uint32) {
	if a.err != nil {
		return
	}
	a.buf, a.err = vlq.Append(a.buf, v)
}

func edgesBody(s *graph.Store) ([]byte, error) {
	a := &appender{}
	a.put(uint32(s.EdgeCount()))
	for e := 0; e < s.EdgeCount(); e++ {
		a.put(uint32(s.FromID(e)))
		a.put(uint32(s.ToID(e)))
		a.put(uint32(s.LabelID(e)))
	}
	return a.buf, a.err
}

func nodesBody(s *graph.Store) ([]byte, error) {
	a := &appender{}
	a.put(uint32(s.NodeCount()))
	for _, id := range s.NodeIDs() {
		a.put(uint32(id))
	}
	return a.buf, a.err
}

func propertiesBody(s *graph.Store) ([]byte, error) {
	a := &appender{}
	nodes := s.NodesWithProperties()
	a.put(uint32(len(nodes)))
	for _, node := range nodes {
		list, _ := s.PropertiesOf(node)
		a.put(uint32(node))
		a.put(uint32(len(list) / 2))
		for _, id := range list {
			a.put(uint32(id))
		}
	}
	return a.buf, a.err
}
