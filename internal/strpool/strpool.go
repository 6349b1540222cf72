// Package strpool interns strings as dense integer ids.
//
// An Interner is used while a graph is being built. Freezing it yields an
// immutable Pool that is safe for concurrent reads and serializes to a
// compact, length-prefixed blob that reproduces the same ids on decode.
package strpool

import (
	"fmt"
	"iter"
)

// ID is a dense handle for an interned string. Zero never names a string.
type ID uint32

// None is the id returned for strings that were never interned.
const None ID = 0

// UnknownIDError reports a lookup of an id that was never allocated.
type UnknownIDError struct {
	ID  ID
	Len int // number of strings in the pool
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("strpool: unknown string id %d (pool has %d strings)", e.ID, e.Len)
}

// Interner allocates ids in first-seen order, starting at 1.
type Interner struct {
	ids    map[string]ID
	strs   []string
	frozen bool
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]ID)}
}

// Intern returns the id of s, allocating the next id if s is new.
// It panics after Freeze.
func (in *Interner) Intern(s string) ID {
	if in.frozen {
		panic("strpool: Intern called on a frozen interner")
	}
	if id, ok := in.ids[s]; ok {
		return id
	}
	in.strs = append(in.strs, s)
	id := ID(len(in.strs))
	in.ids[s] = id
	return id
}

// IDOf returns the id of s, or None.
func (in *Interner) IDOf(s string) ID {
	return in.ids[s]
}

// Len returns the number of interned strings.
func (in *Interner) Len() int {
	return len(in.strs)
}

// Freeze seals the interner and hands its table to a Pool.
func (in *Interner) Freeze() *Pool {
	in.frozen = true
	return &Pool{ids: in.ids, strs: in.strs}
}

// Pool is a frozen string table.
type Pool struct {
	ids  map[string]ID
	strs []string // strs[id-1]
}

// Lookup returns the string for id.
func (p *Pool) Lookup(id ID) (string, error) {
	if id == None || int(id) > len(p.strs) {
		return "", &UnknownIDError{ID: id, Len: len(p.strs)}
	}
	return p.strs[id-1], nil
}

// Has reports whether id names a string in the pool.
func (p *Pool) Has(id ID) bool {
	return id != None && int(id) <= len(p.strs)
}

// IDOf returns the id of s, or None when s is not in the pool.
func (p *Pool) IDOf(s string) ID {
	return p.ids[s]
}

// Len returns the number of strings in the pool.
func (p *Pool) Len() int {
	return len(p.strs)
}

// All yields every (id, string) pair in id order.
func (p *Pool) All() iter.Seq2[ID, string] {
	return func(yield func(ID, string) bool) {
		for i, s := range p.strs {
			if !yield(ID(i+1), s) {
				return
			}
		}
	}
}
