package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/imyousuf/stringgraph/internal/codec"
	"github.com/imyousuf/stringgraph/internal/graph"
)

func newTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	b.AddNode("lonely")
	b.AddEdge("svc", "calls", "db")
	b.AddEdge("svc", "calls", "cache")
	b.AddEdge("db", "", "disk")
	if err := b.SetNodeProperty("svc", "owner", "team-a"); err != nil {
		t.Fatalf("SetNodeProperty: %v", err)
	}
	return b.Build()
}

func assertSameGraph(t *testing.T, want, got *graph.Graph) {
	t.Helper()
	if got.Nodes().Len() != want.Nodes().Len() {
		t.Errorf("nodes = %d, want %d", got.Nodes().Len(), want.Nodes().Len())
	}
	if got.Edges().Len() != want.Edges().Len() {
		t.Errorf("edges = %d, want %d", got.Edges().Len(), want.Edges().Len())
	}
	for e := range want.Edges().All() {
		if !got.HasEdge(e.From().String(), e.Label(), e.To().String()) {
			t.Errorf("missing edge %s", e)
		}
	}
	if v := got.NodePropertyValueOr("svc", "owner", ""); v != "team-a" {
		t.Errorf("svc.owner = %q, want %q", v, "team-a")
	}
}

func TestFileStoreCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "graph.sg")
	s, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	g := newTestGraph(t)
	if err := s.Write(context.Background(), g); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	assertSameGraph(t, g, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the graph file", len(entries))
	}
}

func TestFileURI(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore("file://"+filepath.ToSlash(filepath.Join(dir, "g.sg")), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if want := filepath.Join(dir, "g.sg"); s.Path() != want {
		t.Errorf("Path() = %q, want %q", s.Path(), want)
	}
	if err := s.Write(context.Background(), newTestGraph(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "g.sg")); err != nil {
		t.Errorf("graph file not written: %v", err)
	}
}

func TestFileStoreErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	missing, _ := NewFileStore(filepath.Join(dir, "missing.sg"), nil)
	_, err := missing.Read(ctx)
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("Read(missing) error = %v, want *StoreError", err)
	}
	if se.Op != "read" || se.Resource != filepath.Join(dir, "missing.sg") {
		t.Errorf("StoreError = {%s %s}, want {read %s}", se.Op, se.Resource, filepath.Join(dir, "missing.sg"))
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read(missing) error = %v, want fs.ErrNotExist", err)
	}

	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	unwritable, _ := NewFileStore(filepath.Join(blocker, "sub", "g.sg"), nil)
	if err := unwritable.Write(ctx, newTestGraph(t)); !errors.As(err, &se) {
		t.Errorf("Write under a file error = %v, want *StoreError", err)
	}

	garbage := filepath.Join(dir, "garbage.sg")
	if err := os.WriteFile(garbage, []byte("definitely not a graph"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad, _ := NewFileStore(garbage, nil)
	if _, err := bad.Read(ctx); !errors.Is(err, codec.ErrBadMagic) {
		t.Errorf("Read(garbage) error = %v, want codec.ErrBadMagic", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	s, _ := NewFileStore(filepath.Join(dir, "never.sg"), nil)
	if err := s.Write(canceled, newTestGraph(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Write(canceled) error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "never.sg")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("canceled write created the file")
	}
}

func TestFileStoreReadInto(t *testing.T) {
	s, _ := NewFileStore(filepath.Join(t.TempDir(), "g.sg"), nil)
	ctx := context.Background()
	if err := s.Write(ctx, newTestGraph(t)); err != nil {
		t.Fatal(err)
	}
	b := graph.NewBuilder()
	b.AddEdge("svc", "calls", "queue")
	if err := s.ReadInto(ctx, b); err != nil {
		t.Fatalf("ReadInto: %v", err)
	}
	g := b.Build()
	if got := g.NodesFromNodeVia("svc", "calls").Strings(); len(got) != 3 {
		t.Errorf("svc calls %v, want 3 nodes", got)
	}
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenCatalog(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalogPutGetListDelete(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	g := newTestGraph(t)

	meta, err := c.Put(ctx, "services", g)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if meta.Nodes != 5 || meta.Edges != 3 || meta.Labels != 2 || meta.Bytes == 0 {
		t.Errorf("Put meta = %+v", meta)
	}
	if _, err := c.Put(ctx, "empty", graph.NewBuilder().Build()); err != nil {
		t.Fatalf("Put(empty): %v", err)
	}

	got, err := c.Get(ctx, "services")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	assertSameGraph(t, g, got)

	stored, err := c.Meta(ctx, "services")
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if stored.Bytes != meta.Bytes {
		t.Errorf("Meta().Bytes = %d, want %d", stored.Bytes, meta.Bytes)
	}

	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "empty" || list[1].Name != "services" {
		t.Errorf("List = %+v, want [empty services]", list)
	}

	if err := c.Delete(ctx, "services"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "services"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
	if err := c.Delete(ctx, "services"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if _, err := c.Put(ctx, "", g); err == nil {
		t.Error("Put with an empty name succeeded")
	}
}

func TestNonUTF8GraphSurvivesStorage(t *testing.T) {
	ctx := context.Background()
	b := graph.NewBuilder()
	b.AddEdge("a\xff", "l\x80", "b")
	if err := b.SetNodeProperty("b", "k", "\xfe"); err != nil {
		t.Fatal(err)
	}
	g := b.Build()

	check := func(t *testing.T, got *graph.Graph) {
		t.Helper()
		if !got.HasEdge("a\xff", "l\x80", "b") {
			t.Errorf("missing edge %q -%q-> %q", "a\xff", "l\x80", "b")
		}
		if v := got.NodePropertyValueOr("b", "k", ""); v != "\xfe" {
			t.Errorf("b.k = %q, want %q", v, "\xfe")
		}
	}

	t.Run("file", func(t *testing.T) {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "raw.sg"), nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Write(ctx, g); err != nil {
			t.Fatalf("Write: %v", err)
		}
		got, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		check(t, got)
	})

	t.Run("catalog", func(t *testing.T) {
		c := newTestCatalog(t)
		if _, err := c.Put(ctx, "raw", g); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := c.Get(ctx, "raw")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		check(t, got)
	})
}

func TestFactoryOpen(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(nil)
	t.Cleanup(func() { f.Close() })
	ctx := context.Background()
	g := newTestGraph(t)

	locations := []string{
		filepath.Join(dir, "plain.sg"),
		"file://" + filepath.ToSlash(filepath.Join(dir, "uri.sg")),
		"badger://" + filepath.ToSlash(filepath.Join(dir, "catalog")) + "?graph=one",
		"badger://" + filepath.ToSlash(filepath.Join(dir, "catalog")) + "?graph=two",
	}
	for _, loc := range locations {
		s, err := f.Open(loc)
		if err != nil {
			t.Fatalf("Open(%q): %v", loc, err)
		}
		if err := s.Write(ctx, g); err != nil {
			t.Fatalf("Write(%q): %v", loc, err)
		}
		got, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read(%q): %v", loc, err)
		}
		assertSameGraph(t, g, got)
	}

	c, err := f.Catalog(filepath.Join(dir, "catalog"))
	if err != nil {
		t.Fatal(err)
	}
	list, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("catalog holds %d graphs, want 2", len(list))
	}

	for _, bad := range []string{"s3://bucket/key", "badger://" + filepath.ToSlash(dir) + "/x", ""} {
		if _, err := f.Open(bad); err == nil {
			t.Errorf("Open(%q) succeeded, want error", bad)
		}
	}
}
