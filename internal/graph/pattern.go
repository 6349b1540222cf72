package graph

import (
	"strconv"
	"strings"
)

// Kind classifies a Pattern. The ordinals take part in the node query
// dispatch and must not be reordered.
type Kind uint8

const (
	// Query draws the matching nodes into the result. Written with a
	// leading '?'.
	Query Kind = iota
	// Bound restricts the match to a literal string.
	Bound
	// Null leaves the slot unconstrained.
	Null
)

func (k Kind) String() string {
	switch k {
	case Query:
		return "query"
	case Bound:
		return "bound"
	case Null:
		return "null"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Pattern is one slot of a (from, label, to) query. Build patterns with
// P, ParsePattern or Any.
type Pattern struct {
	kind Kind
	text string
}

// Any is the unconstrained pattern.
var Any = Pattern{kind: Null}

// P returns a query pattern for strings starting with '?' and a bound
// literal for everything else, including the empty string.
func P(s string) Pattern {
	if strings.HasPrefix(s, "?") {
		return Pattern{kind: Query, text: s}
	}
	return Pattern{kind: Bound, text: s}
}

// ParsePattern reads the command-line spelling of a pattern: "-" is Any,
// everything else goes through P.
func ParsePattern(s string) Pattern {
	if s == "-" {
		return Any
	}
	return P(s)
}

// Kind returns the pattern kind.
func (p Pattern) Kind() Kind { return p.kind }

// Text returns the raw pattern text. It is empty for Any.
func (p Pattern) Text() string { return p.text }

func (p Pattern) String() string {
	if p.kind == Null {
		return "-"
	}
	return strconv.Quote(p.text)
}

// combination packs three pattern kinds into the dispatch index.
func combination(from, label, to Kind) int {
	return int(from) + 3*int(label) + 9*int(to)
}
