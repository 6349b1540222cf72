package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("failed to restore working directory: %v", err)
		}
	})
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `store:
  location: badger:///var/lib/graphs?graph=deps
  catalog_dir: /var/lib/graphs
export:
  graph_name: deps
  sort_edges: true
log:
  level: debug
  format: json
watch:
  debounce: 2s
metrics:
  addr: ":9102"
`
	configPath := filepath.Join(tmpDir, DefaultConfigFile+"."+DefaultConfigType)
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	chdir(t, tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Store.Location != "badger:///var/lib/graphs?graph=deps" {
		t.Errorf("Store.Location = %q, want %q", cfg.Store.Location, "badger:///var/lib/graphs?graph=deps")
	}
	if cfg.Store.CatalogDir != "/var/lib/graphs" {
		t.Errorf("Store.CatalogDir = %q, want %q", cfg.Store.CatalogDir, "/var/lib/graphs")
	}
	if cfg.Export.GraphName != "deps" || !cfg.Export.SortEdges {
		t.Errorf("Export = %+v, want graph_name deps and sort_edges", cfg.Export)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Watch.Debounce = %s, want 2s", cfg.Watch.Debounce)
	}
	if cfg.Metrics.Addr != ":9102" {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, ":9102")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "text")
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Watch.Debounce = %s, want 250ms", cfg.Watch.Debounce)
	}
	if cfg.Store.CatalogDir != ".stringgraph/catalog" {
		t.Errorf("Store.CatalogDir = %q, want %q", cfg.Store.CatalogDir, ".stringgraph/catalog")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if *Default() != *cfg {
		t.Errorf("Default() = %+v, want %+v", *Default(), *cfg)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STRINGGRAPH_LOG_LEVEL", "warn")
	t.Setenv("STRINGGRAPH_STORE_LOCATION", "/tmp/g.sg")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Store.Location != "/tmp/g.sg" {
		t.Errorf("Store.Location = %q, want %q", cfg.Store.Location, "/tmp/g.sg")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile() of a missing explicit file succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"file uri", func(c *Config) { c.Store.Location = "file:///tmp/g.sg" }, false},
		{"badger uri", func(c *Config) { c.Store.Location = "badger:///tmp/cat?graph=g" }, false},
		{"bad scheme", func(c *Config) { c.Store.Location = "s3://bucket/g" }, true},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := Default()
	cfg.Export.GraphName = "written"
	cfg.Watch.Debounce = 3 * time.Second
	if err := WriteConfig(cfg, path); err != nil {
		t.Fatalf("WriteConfig() error: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip = %+v, want %+v", *got, *cfg)
	}
}

func TestWriteConfigRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "xml"
	path := filepath.Join(t.TempDir(), "nested", "bad.yaml")
	if err := WriteConfig(cfg, path); err == nil {
		t.Fatal("WriteConfig() accepted an invalid config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("invalid config was written: %v", err)
	}
}
