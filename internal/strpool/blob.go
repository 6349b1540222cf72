package strpool

import (
	"errors"
	"fmt"
	"io"

	"github.com/imyousuf/stringgraph/internal/vlq"
)

// MarshalBinary encodes the pool as vlq(count) followed by vlq(len) and the
// bytes of every string in id order.
func (p *Pool) MarshalBinary() ([]byte, error) {
	size := vlq.Len(uint32(len(p.strs)))
	for _, s := range p.strs {
		size += vlq.Len(uint32(len(s))) + len(s)
	}
	buf := make([]byte, 0, size)

	buf, err := vlq.Append(buf, uint32(len(p.strs)))
	if err != nil {
		return nil, fmt.Errorf("strpool: encoding count: %w", err)
	}
	for i, s := range p.strs {
		buf, err = vlq.Append(buf, uint32(len(s)))
		if err != nil {
			return nil, fmt.Errorf("strpool: encoding string %d: %w", i+1, err)
		}
		buf = append(buf, s...)
	}
	return buf, nil
}

// Decode rebuilds a Pool from the output of MarshalBinary. Strings are
// opaque bytes and need not be valid UTF-8. Trailing bytes after the last
// string are rejected.
func Decode(data []byte) (*Pool, error) {
	count, n, err := vlq.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("strpool: reading count: %w", eofToUnexpected(err))
	}
	data = data[n:]
	// Every string needs at least its length byte.
	if uint64(count) > uint64(len(data)) {
		return nil, fmt.Errorf("strpool: %d strings declared, %d bytes left: %w", count, len(data), io.ErrUnexpectedEOF)
	}

	p := &Pool{
		ids:  make(map[string]ID, count),
		strs: make([]string, 0, count),
	}
	for i := uint32(0); i < count; i++ {
		id := ID(i + 1)
		size, n, err := vlq.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("strpool: reading length of string %d: %w", id, eofToUnexpected(err))
		}
		data = data[n:]
		if uint64(size) > uint64(len(data)) {
			return nil, fmt.Errorf("strpool: string %d: %w", id, io.ErrUnexpectedEOF)
		}
		s := string(data[:size])
		data = data[size:]
		if prev, dup := p.ids[s]; dup {
			return nil, fmt.Errorf("strpool: string %d duplicates string %d", id, prev)
		}
		p.ids[s] = id
		p.strs = append(p.strs, s)
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("strpool: %d trailing bytes after %d strings", len(data), count)
	}
	return p, nil
}

func eofToUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
