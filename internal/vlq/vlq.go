// Package vlq encodes unsigned integers as variable-length byte sequences.
//
// Each byte carries 7 data bits, low-order group first. Unlike the common
// "continuation bit" convention, the high bit is set on the LAST byte of a
// value and clear on every byte before it. Every integer in the binary graph
// format goes through this package.
package vlq

import (
	"errors"
	"fmt"
	"io"
)

const (
	// MaxValue is the largest value that fits the 5-byte encoding
	// (4 bytes of 7 bits plus 3 bits in the fifth byte).
	MaxValue = 1<<31 - 1

	// MaxLen is the maximum number of bytes of an encoded value.
	MaxLen = 5

	terminalBit = 0x80
	dataMask    = 0x7f
	// fifthByteOverflow marks bits of the fifth byte that do not fit MaxValue.
	fifthByteOverflow = 0x78
)

// OverflowError reports a value that does not fit the encoding.
type OverflowError struct {
	Value uint64 // value being encoded; zero when decoding
	Bytes int    // bytes consumed before the overflow was detected
}

func (e *OverflowError) Error() string {
	if e.Bytes > 0 {
		return fmt.Sprintf("vlq: encoded number too large for an unsigned 31-bit int (after %d bytes)", e.Bytes)
	}
	return fmt.Sprintf("vlq: value %d exceeds maximum %d", e.Value, MaxValue)
}

// Len returns the number of bytes needed to encode v.
func Len(v uint32) int {
	n := 1
	for v > dataMask {
		v >>= 7
		n++
	}
	return n
}

// Append appends the encoding of v to dst.
func Append(dst []byte, v uint32) ([]byte, error) {
	if v > MaxValue {
		return dst, &OverflowError{Value: uint64(v)}
	}
	for {
		b := byte(v & dataMask)
		v >>= 7
		if v == 0 {
			return append(dst, b|terminalBit), nil
		}
		dst = append(dst, b)
	}
}

// Write writes the encoding of v to w.
func Write(w io.ByteWriter, v uint32) error {
	var buf [MaxLen]byte
	enc, err := Append(buf[:0], v)
	if err != nil {
		return err
	}
	for _, b := range enc {
		if err := w.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes one value from r. An EOF before the first byte is returned
// as io.EOF; an EOF inside a value is io.ErrUnexpectedEOF.
func Read(r io.ByteReader) (uint32, error) {
	var value uint32
	for i := 0; i < MaxLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && i > 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		value |= uint32(b&dataMask) << (7 * i)
		if b&terminalBit != 0 {
			if i == MaxLen-1 && b&fifthByteOverflow != 0 {
				return 0, &OverflowError{Bytes: i + 1}
			}
			return value, nil
		}
	}
	return 0, &OverflowError{Bytes: MaxLen}
}

// Decode decodes one value from the front of buf and returns it together
// with the number of bytes consumed.
func Decode(buf []byte) (uint32, int, error) {
	var value uint32
	for i := 0; i < MaxLen; i++ {
		if i >= len(buf) {
			if i == 0 {
				return 0, 0, io.EOF
			}
			return 0, i, io.ErrUnexpectedEOF
		}
		b := buf[i]
		value |= uint32(b&dataMask) << (7 * i)
		if b&terminalBit != 0 {
			if i == MaxLen-1 && b&fifthByteOverflow != 0 {
				return 0, i + 1, &OverflowError{Bytes: i + 1}
			}
			return value, i + 1, nil
		}
	}
	return 0, MaxLen, &OverflowError{Bytes: MaxLen}
}
