package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/imyousuf/stringgraph/internal/codec"
	"github.com/imyousuf/stringgraph/internal/graph"
	"github.com/imyousuf/stringgraph/internal/metrics"
)

const backendFile = "file"

// FileStore keeps a graph in a single file.
type FileStore struct {
	location string
	path     string
	logger   *slog.Logger
}

// NewFileStore returns a store for a plain path or a file:// URI. A nil
// logger means slog.Default().
func NewFileStore(location string, logger *slog.Logger) (*FileStore, error) {
	path, err := filePath(location)
	if err != nil {
		return nil, storeError("open", location, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{location: location, path: path, logger: logger}, nil
}

func filePath(location string) (string, error) {
	if !strings.HasPrefix(location, "file:") {
		if location == "" {
			return "", errors.New("empty path")
		}
		return location, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse file URI: %w", err)
	}
	path := u.Path
	if u.Opaque != "" {
		path = u.Opaque
	}
	if u.Host != "" && u.Host != "localhost" {
		path = u.Host + path
	}
	if path == "" {
		return "", fmt.Errorf("file URI %q has no path", location)
	}
	return filepath.FromSlash(path), nil
}

// Location returns the location the store was created from.
func (s *FileStore) Location() string { return s.location }

// Path returns the file path.
func (s *FileStore) Path() string { return s.path }

// Write encodes g into a temporary file next to the target and renames it
// into place. Missing parent directories are created.
func (s *FileStore) Write(ctx context.Context, g *graph.Graph) (err error) {
	start := time.Now()
	var written int
	defer func() {
		metrics.ObserveStoreOp(backendFile, "write", start, written, err)
		err = storeError("write", s.path, err)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	cw := &countingWriter{w: tmp}
	if err := codec.Encode(cw, g.Store()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	written = cw.n

	s.logger.Debug("graph written",
		"path", s.path,
		"bytes", written,
		"nodes", g.Nodes().Len(),
		"edges", g.Edges().Len())
	return nil
}

// Read decodes the graph in the file.
func (s *FileStore) Read(ctx context.Context) (*graph.Graph, error) {
	st, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return graph.New(st), nil
}

// ReadInto replays the graph in the file into c.
func (s *FileStore) ReadInto(ctx context.Context, c graph.Constructing) error {
	st, err := s.read(ctx)
	if err != nil {
		return err
	}
	return storeError("read", s.path, st.Replay(c))
}

func (s *FileStore) read(ctx context.Context) (st *graph.Store, err error) {
	start := time.Now()
	var read int
	defer func() {
		metrics.ObserveStoreOp(backendFile, "read", start, read, err)
		err = storeError("read", s.path, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := &countingReader{r: f}
	st, err = codec.Decode(bufio.NewReader(cr))
	if err != nil {
		return nil, err
	}
	read = cr.n
	s.logger.Debug("graph read",
		"path", s.path,
		"bytes", read,
		"nodes", st.NodeCount(),
		"edges", st.EdgeCount())
	return st, nil
}
