package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/imyousuf/stringgraph/internal/graph"
	"github.com/imyousuf/stringgraph/internal/strpool"
	"github.com/imyousuf/stringgraph/internal/vlq"
)

type byteReader interface {
	io.Reader
	io.ByteReader
}

func asByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// BlockInfo describes one block of a stream.
type BlockInfo struct {
	Tag  string
	Size uint32
}

// Decode reads a store from r. A store is returned only after the end block
// has been read; blocks after it are not consumed. A known block that
// appears twice fails with ErrDuplicateBlock. Bytes following the
// known fields of a block are ignored so that later minor versions can
// extend blocks.
func Decode(r io.Reader) (*graph.Store, error) {
	br := asByteReader(r)
	if _, err := readHeader(br); err != nil {
		return nil, err
	}

	var (
		nodes, edges []graph.ID
		props        map[graph.ID][]graph.ID
		pool         *strpool.Pool
		seen         = make(map[string]bool, 4)
	)
	for pool == nil {
		tag, size, err := readBlockHeader(br)
		if err != nil {
			return nil, err
		}
		if !isKnown(tag) {
			if err := skip(br, size); err != nil {
				return nil, fmt.Errorf("codec: skipping %q block: %w", tag, err)
			}
			continue
		}
		if seen[tag] {
			return nil, fmt.Errorf("codec: %w: %q", ErrDuplicateBlock, tag)
		}
		seen[tag] = true

		body, err := readBody(br, size)
		if err != nil {
			return nil, fmt.Errorf("codec: reading %s block: %w", tag, err)
		}
		c := &cursor{buf: body, tag: tag}
		switch tag {
		case TagEdges:
			edges, err = c.edges()
		case TagNodes:
			nodes, err = c.nodes()
		case TagNodeProperties:
			props, err = c.properties()
		case TagEnd:
			pool, err = strpool.Decode(body)
			if err != nil {
				err = fmt.Errorf("codec: end block: %w", err)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	s, err := graph.NewStore(pool, nodes, edges, props)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	return s, nil
}

// DecodeInto reads a store from r and replays it into c.
func DecodeInto(r io.Reader, c graph.Constructing) error {
	s, err := Decode(r)
	if err != nil {
		return err
	}
	return s.Replay(c)
}

// ReadHeader reads and validates the header at the start of r.
func ReadHeader(r io.Reader) (Header, error) {
	return readHeader(asByteReader(r))
}

// Scan reads the header and lists the blocks of r without decoding their
// bodies. Listing stops after the end block.
func Scan(r io.Reader) (Header, []BlockInfo, error) {
	br := asByteReader(r)
	h, err := readHeader(br)
	if err != nil {
		return h, nil, err
	}
	var blocks []BlockInfo
	for {
		tag, size, err := readBlockHeader(br)
		if err != nil {
			return h, blocks, err
		}
		if err := skip(br, size); err != nil {
			return h, blocks, fmt.Errorf("codec: skipping %q block: %w", tag, err)
		}
		blocks = append(blocks, BlockInfo{Tag: tag, Size: size})
		if tag == TagEnd {
			return h, blocks, nil
		}
	}
}

func isKnown(tag string) bool {
	switch tag {
	case TagEdges, TagNodes, TagNodeProperties, TagEnd:
		return true
	}
	return false
}

func readHeader(br byteReader) (Header, error) {
	var h Header
	format, err := readString(br)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return h, fmt.Errorf("codec: reading header: %w", io.ErrUnexpectedEOF)
		}
		return h, ErrBadMagic
	}
	if format != FormatName {
		return h, ErrBadMagic
	}
	h.Format = format
	if h.Major, err = vlq.Read(br); err != nil {
		return h, fmt.Errorf("codec: reading major version: %w", unexpected(err))
	}
	if h.Minor, err = vlq.Read(br); err != nil {
		return h, fmt.Errorf("codec: reading minor version: %w", unexpected(err))
	}
	if h.Major != MajorVersion {
		return h, &IncompatibleFormatError{Found: h, SupportedMajor: MajorVersion}
	}
	return h, nil
}

func readBlockHeader(br byteReader) (string, uint32, error) {
	tag, err := readString(br)
	if err != nil {
		return "", 0, fmt.Errorf("codec: reading block tag: %w", unexpected(err))
	}
	size, err := vlq.Read(br)
	if err != nil {
		return "", 0, fmt.Errorf("codec: reading %q block length: %w", tag, unexpected(err))
	}
	return tag, size, nil
}

func readString(br byteReader) (string, error) {
	n, err := vlq.Read(br)
	if err != nil {
		return "", err
	}
	if n > maxTagLen {
		return "", fmt.Errorf("codec: string length %d exceeds %d", n, maxTagLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return "", unexpected(err)
	}
	return string(buf), nil
}

func readBody(br byteReader, size uint32) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(br, int64(size)))
	if err != nil {
		return nil, err
	}
	if len(body) != int(size) {
		return nil, io.ErrUnexpectedEOF
	}
	return body, nil
}

func skip(br byteReader, size uint32) error {
	_, err := io.CopyN(io.Discard, br, int64(size))
	return unexpected(err)
}

// unexpected turns a clean EOF into io.ErrUnexpectedEOF; every caller is in
// the middle of a stream that must continue up to the end block.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// cursor decodes vlq ids from a block body.
type cursor struct {
	buf []byte
	tag string
}

func (c *cursor) next() (uint32, error) {
	v, n, err := vlq.Decode(c.buf)
	if err != nil {
		return 0, fmt.Errorf("codec: %s block: %w", c.tag, unexpected(err))
	}
	c.buf = c.buf[n:]
	return v, nil
}

// count reads an element count and checks that the body can hold count
// elements of at least perElem bytes each.
func (c *cursor) count(perElem int) (int, error) {
	n, err := c.next()
	if err != nil {
		return 0, err
	}
	if uint64(n)*uint64(perElem) > uint64(len(c.buf)) {
		return 0, fmt.Errorf("codec: %s block declares %d entries in %d bytes: %w", c.tag, n, len(c.buf), io.ErrUnexpectedEOF)
	}
	return int(n), nil
}

func (c *cursor) ids(n int) ([]graph.ID, error) {
	out := make([]graph.ID, n)
	for i := range out {
		v, err := c.next()
		if err != nil {
			return nil, err
		}
		out[i] = graph.ID(v)
	}
	return out, nil
}

func (c *cursor) edges() ([]graph.ID, error) {
	n, err := c.count(3)
	if err != nil {
		return nil, err
	}
	return c.ids(3 * n)
}

func (c *cursor) nodes() ([]graph.ID, error) {
	n, err := c.count(1)
	if err != nil {
		return nil, err
	}
	return c.ids(n)
}

func (c *cursor) properties() (map[graph.ID][]graph.ID, error) {
	n, err := c.count(2)
	if err != nil {
		return nil, err
	}
	props := make(map[graph.ID][]graph.ID, n)
	for i := 0; i < n; i++ {
		node, err := c.next()
		if err != nil {
			return nil, err
		}
		pc, err := c.count(2)
		if err != nil {
			return nil, err
		}
		list, err := c.ids(2 * pc)
		if err != nil {
			return nil, err
		}
		if _, dup := props[graph.ID(node)]; dup {
			return nil, fmt.Errorf("codec: %s block lists node %d twice", c.tag, node)
		}
		props[graph.ID(node)] = list
	}
	return props, nil
}
