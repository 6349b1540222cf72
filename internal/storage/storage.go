// Package storage locates graph byte streams: plain files, file:// URIs
// and named graphs in a BadgerDB catalog.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/imyousuf/stringgraph/internal/graph"
)

// Store persists one graph.
type Store interface {
	// Write replaces the stored graph with g.
	Write(ctx context.Context, g *graph.Graph) error

	// Read loads the stored graph.
	Read(ctx context.Context) (*graph.Graph, error)

	// ReadInto replays the stored graph into c.
	ReadInto(ctx context.Context, c graph.Constructing) error

	// Location returns the location string the store was opened from.
	Location() string
}

// ErrNotFound is returned when a catalog has no graph of the requested name.
var ErrNotFound = errors.New("storage: graph not found")

// StoreError wraps every failure of a store operation with the operation
// and the resource it was working on.
type StoreError struct {
	Op       string // "read", "write", "delete", "open", ...
	Resource string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeError(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) && se.Resource == resource {
		return err
	}
	return &StoreError{Op: op, Resource: resource, Err: err}
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
