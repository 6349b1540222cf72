package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// WriteConfig validates cfg, serializes it to YAML and writes it to path,
// creating the parent directory if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	content := "# stringgraph configuration\n" +
		"# Environment variables override these keys, e.g. " + EnvPrefix + "_LOG_LEVEL=debug.\n" +
		string(data)
	return os.WriteFile(path, []byte(content), 0644)
}
