package graph

import "fmt"

// InvalidQueryError is returned by NodesMatching when neither the from nor
// the to pattern is a query pattern.
type InvalidQueryError struct {
	From, Label, To Pattern
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("graph: invalid node query (%s, %s, %s): from or to must be a query pattern", e.From, e.Label, e.To)
}

// UnsupportedQueryError is returned by NodesMatching for a well-formed
// pattern combination that has no resolver.
type UnsupportedQueryError struct {
	From, Label, To Pattern
}

func (e *UnsupportedQueryError) Error() string {
	return fmt.Sprintf("graph: unsupported node query (%s, %s, %s)", e.From, e.Label, e.To)
}

// NoSuchNodeError reports a property set on a node that was never added.
type NoSuchNodeError struct {
	Node string
}

func (e *NoSuchNodeError) Error() string {
	return fmt.Sprintf("graph: no such node %q", e.Node)
}

// NoSuchPropertyError reports a property lookup that found nothing.
type NoSuchPropertyError struct {
	Node, Name string
}

func (e *NoSuchPropertyError) Error() string {
	return fmt.Sprintf("graph: node %q has no property %q", e.Node, e.Name)
}
