package graph

import (
	"iter"
	"slices"
)

// Property is a (name, value) pair owned by one node.
type Property struct {
	s           *Store
	name, value ID
}

// Name returns the property name.
func (p Property) Name() string { return p.s.str(p.name) }

// Value returns the property value.
func (p Property) Value() string { return p.s.str(p.value) }

// NameID returns the interned property name.
func (p Property) NameID() ID { return p.name }

// ValueID returns the interned property value.
func (p Property) ValueID() ID { return p.value }

// Properties are the properties of one node, backed by an interleaved
// (name, value) id array. The zero value has no properties.
type Properties struct {
	s   *Store
	ids []ID
}

// Len returns the number of properties.
func (ps Properties) Len() int { return len(ps.ids) / 2 }

// At returns the i-th property in insertion order.
func (ps Properties) At(i int) Property {
	return Property{s: ps.s, name: ps.ids[2*i], value: ps.ids[2*i+1]}
}

// All yields the properties in insertion order.
func (ps Properties) All() iter.Seq[Property] {
	return func(yield func(Property) bool) {
		for i := 0; i < ps.Len(); i++ {
			if !yield(ps.At(i)) {
				return
			}
		}
	}
}

// Lookup returns the property with the given name.
func (ps Properties) Lookup(name string) (Property, bool) {
	if ps.s == nil {
		return Property{}, false
	}
	id := ps.s.pool.IDOf(name)
	if id == 0 {
		return Property{}, false
	}
	for i := 0; i < len(ps.ids); i += 2 {
		if ps.ids[i] == id {
			return Property{s: ps.s, name: id, value: ps.ids[i+1]}, true
		}
	}
	return Property{}, false
}

// Names returns the sorted property names.
func (ps Properties) Names() []string {
	out := make([]string, 0, ps.Len())
	for p := range ps.All() {
		out = append(out, p.Name())
	}
	slices.Sort(out)
	return out
}

// Map returns the properties as a name to value map.
func (ps Properties) Map() map[string]string {
	out := make(map[string]string, ps.Len())
	for p := range ps.All() {
		out[p.Name()] = p.Value()
	}
	return out
}
