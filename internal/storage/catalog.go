package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/imyousuf/stringgraph/internal/codec"
	"github.com/imyousuf/stringgraph/internal/graph"
	"github.com/imyousuf/stringgraph/internal/metrics"
)

const backendBadger = "badger"

// Key prefixes of the catalog key scheme.
const (
	prefixGraph = "g:"
	prefixMeta  = "m:"
)

func graphKey(name string) []byte { return []byte(prefixGraph + name) }
func metaKey(name string) []byte  { return []byte(prefixMeta + name) }

// Meta describes a graph stored in a catalog.
type Meta struct {
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	Labels    int       `json:"labels"`
	Bytes     int       `json:"bytes"`
	WrittenAt time.Time `json:"written_at"`
}

// Catalog keeps many named graphs in one BadgerDB directory. Each graph is
// stored as its encoded byte stream next to a JSON metadata record.
type Catalog struct {
	db     *badger.DB
	dir    string
	logger *slog.Logger
}

// OpenCatalog opens (or creates) a catalog in dir. A nil logger means
// slog.Default().
func OpenCatalog(dir string, logger *slog.Logger) (*Catalog, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // suppress badger logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, storeError("open", dir, fmt.Errorf("open badger db: %w", err))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{db: db, dir: dir, logger: logger}, nil
}

// Dir returns the database directory.
func (c *Catalog) Dir() string { return c.dir }

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) resource(name string) string {
	return fmt.Sprintf("%s://%s?graph=%s", backendBadger, c.dir, name)
}

func validName(name string) error {
	if name == "" {
		return errors.New("empty graph name")
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("graph name %q contains a NUL byte", name)
	}
	return nil
}

// Put stores g under name, replacing an earlier graph of that name.
func (c *Catalog) Put(ctx context.Context, name string, g *graph.Graph) (meta Meta, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveStoreOp(backendBadger, "write", start, meta.Bytes, err)
		err = storeError("write", c.resource(name), err)
	}()

	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	if err := validName(name); err != nil {
		return Meta{}, err
	}
	var buf bytes.Buffer
	if err := codec.Encode(&buf, g.Store()); err != nil {
		return Meta{}, err
	}
	meta = Meta{
		Name:      name,
		Nodes:     g.Nodes().Len(),
		Edges:     g.Edges().Len(),
		Labels:    g.EdgeLabels().Len(),
		Bytes:     buf.Len(),
		WrittenAt: time.Now().UTC(),
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return Meta{}, fmt.Errorf("marshal meta: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(graphKey(name), buf.Bytes()); err != nil {
			return err
		}
		return txn.Set(metaKey(name), metaData)
	})
	if err != nil {
		return Meta{}, err
	}
	c.logger.Debug("graph stored in catalog", "dir", c.dir, "graph", name, "bytes", meta.Bytes)
	return meta, nil
}

// Get loads the graph stored under name.
func (c *Catalog) Get(ctx context.Context, name string) (*graph.Graph, error) {
	st, err := c.load(ctx, name)
	if err != nil {
		return nil, err
	}
	return graph.New(st), nil
}

// GetInto replays the graph stored under name into b.
func (c *Catalog) GetInto(ctx context.Context, name string, b graph.Constructing) error {
	st, err := c.load(ctx, name)
	if err != nil {
		return err
	}
	return storeError("read", c.resource(name), st.Replay(b))
}

func (c *Catalog) load(ctx context.Context, name string) (st *graph.Store, err error) {
	start := time.Now()
	var size int
	defer func() {
		metrics.ObserveStoreOp(backendBadger, "read", start, size, err)
		err = storeError("read", c.resource(name), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(graphKey(name))
		if err != nil {
			return notFound(err)
		}
		return item.Value(func(val []byte) error {
			size = len(val)
			st, err = codec.Decode(bytes.NewReader(val))
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("graph loaded from catalog", "dir", c.dir, "graph", name, "bytes", size)
	return st, nil
}

// Meta returns the metadata of the graph stored under name.
func (c *Catalog) Meta(ctx context.Context, name string) (Meta, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	var meta Meta
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(name))
		if err != nil {
			return notFound(err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if err != nil {
		return Meta{}, storeError("meta", c.resource(name), err)
	}
	return meta, nil
}

// List returns the metadata of every graph, sorted by name.
func (c *Catalog) List(ctx context.Context) ([]Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var metas []Meta
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixMeta)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.Valid(); it.Next() {
			var meta Meta
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				return fmt.Errorf("decode meta %s: %w", it.Item().Key(), err)
			}
			metas = append(metas, meta)
		}
		return nil
	})
	if err != nil {
		return nil, storeError("list", c.dir, err)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Name < metas[j].Name })
	return metas, nil
}

// Delete removes the graph stored under name.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(graphKey(name)); err != nil {
			return notFound(err)
		}
		if err := txn.Delete(graphKey(name)); err != nil {
			return err
		}
		return txn.Delete(metaKey(name))
	})
	if err != nil {
		return storeError("delete", c.resource(name), err)
	}
	c.logger.Debug("graph deleted from catalog", "dir", c.dir, "graph", name)
	return nil
}

// Store returns a Store for the graph called name.
func (c *Catalog) Store(name string) Store {
	return &catalogStore{c: c, name: name}
}

func notFound(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

type catalogStore struct {
	c    *Catalog
	name string
}

func (s *catalogStore) Write(ctx context.Context, g *graph.Graph) error {
	_, err := s.c.Put(ctx, s.name, g)
	return err
}

func (s *catalogStore) Read(ctx context.Context) (*graph.Graph, error) {
	return s.c.Get(ctx, s.name)
}

func (s *catalogStore) ReadInto(ctx context.Context, b graph.Constructing) error {
	return s.c.GetInto(ctx, s.name, b)
}

func (s *catalogStore) Location() string { return s.c.resource(s.name) }
