package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
)

// Factory opens stores from location strings. Catalogs opened through a
// Factory stay open until Close, since BadgerDB holds a directory lock.
type Factory struct {
	logger *slog.Logger

	mu       sync.Mutex
	catalogs map[string]*Catalog
}

// NewFactory returns a factory whose stores log to logger. A nil logger
// means slog.Default().
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger, catalogs: make(map[string]*Catalog)}
}

// Open returns the store at location. Accepted forms:
//
//	path/to/graph.sg
//	file:///abs/path/graph.sg
//	badger://path/to/catalog?graph=name
func (f *Factory) Open(location string) (Store, error) {
	if !strings.HasPrefix(location, backendBadger+"://") {
		if scheme, _, ok := strings.Cut(location, "://"); ok && scheme != "file" {
			return nil, storeError("open", location, fmt.Errorf("unsupported scheme %q", scheme))
		}
		return NewFileStore(location, f.logger)
	}

	dir, name, err := parseBadgerLocation(location)
	if err != nil {
		return nil, storeError("open", location, err)
	}
	c, err := f.Catalog(dir)
	if err != nil {
		return nil, err
	}
	return c.Store(name), nil
}

// Catalog returns the catalog in dir, opening it on first use.
func (f *Factory) Catalog(dir string) (*Catalog, error) {
	key := filepath.Clean(dir)
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.catalogs[key]; ok {
		return c, nil
	}
	c, err := OpenCatalog(dir, f.logger)
	if err != nil {
		return nil, err
	}
	f.catalogs[key] = c
	return c, nil
}

// Close closes every catalog the factory opened.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var errs []error
	for key, c := range f.catalogs {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close catalog %s: %w", key, err))
		}
		delete(f.catalogs, key)
	}
	return errors.Join(errs...)
}

func parseBadgerLocation(location string) (dir, name string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("parse badger URI: %w", err)
	}
	dir = u.Host + u.Path
	if dir == "" {
		return "", "", fmt.Errorf("badger URI %q has no directory", location)
	}
	name = u.Query().Get("graph")
	if name == "" {
		return "", "", fmt.Errorf("badger URI %q has no graph parameter", location)
	}
	return filepath.FromSlash(dir), name, nil
}
