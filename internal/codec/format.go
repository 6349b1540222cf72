// Package codec reads and writes graphs in the stringgraph binary format.
//
// A stream is a header followed by tagged blocks:
//
//	header := str(formatName) vlq(major) vlq(minor)
//	block  := str(tag) vlq(bodyLen) body
//	str(s) := vlq(len(s)) bytes(s)
//
// Writers emit the edges, nodes, node-properties and end blocks in that
// order; the end block carries the string pool every other block refers to.
// Readers accept blocks in any order and stop after end. Unknown tags are
// skipped; a known tag seen twice is an error. Every integer is encoded
// with package vlq.
package codec

import (
	"errors"
	"fmt"
)

const (
	// FormatName identifies a stringgraph binary stream.
	FormatName = "stringgraph.binary"
	// MajorVersion is the only major version this package reads.
	MajorVersion = 1
	// MinorVersion is the minor version this package writes.
	MinorVersion = 0
)

// Block tags.
const (
	TagEdges          = "edges"
	TagNodes          = "nodes"
	TagNodeProperties = "node-properties"
	TagEnd            = "end"
)

// maxTagLen bounds tag and format name strings read from a stream.
const maxTagLen = 1024

// ErrBadMagic is returned when a stream does not start with FormatName.
var ErrBadMagic = errors.New("codec: not a stringgraph binary stream")

// ErrDuplicateBlock is returned when a known block appears more than once.
var ErrDuplicateBlock = errors.New("duplicate block")

// Header is the start of every stream.
type Header struct {
	Format string
	Major  uint32
	Minor  uint32
}

func (h Header) String() string {
	return fmt.Sprintf("%s %d.%d", h.Format, h.Major, h.Minor)
}

// IncompatibleFormatError reports a stream whose major version this package
// cannot read.
type IncompatibleFormatError struct {
	Found          Header
	SupportedMajor uint32
}

func (e *IncompatibleFormatError) Error() string {
	return fmt.Sprintf("codec: incompatible format version %d.%d (supported major version %d)",
		e.Found.Major, e.Found.Minor, e.SupportedMajor)
}
