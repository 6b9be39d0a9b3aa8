// Package config loads the exporter configuration from an optional YAML
// file, applies environment overrides, and fills defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeywordConfig configures the keyword record filter. An empty keyword
// disables filtering.
type KeywordConfig struct {
	Keyword       string `json:"keyword" yaml:"keyword"`
	Column        string `json:"column" yaml:"column"` // empty targets all columns
	Mode          string `json:"mode" yaml:"mode"`     // contains | equals
	CaseSensitive bool   `json:"case_sensitive" yaml:"case_sensitive"`
}

// BreadcrumbConfig configures the breadcrumb document filter. An all-empty
// code selection disables filtering.
type BreadcrumbConfig struct {
	SourcePath string   `json:"source_path" yaml:"source_path"`
	Codes      []string `json:"codes" yaml:"codes"`
}

// Config is the full exporter configuration.
type Config struct {
	Input      []string `json:"input" yaml:"input"`
	Output     string   `json:"output" yaml:"output"`
	Format     string   `json:"format" yaml:"format"` // csv | json
	Paths      []string `json:"paths" yaml:"paths"`   // empty selects every leaf path
	Rule       string   `json:"rule" yaml:"rule"`     // join | count | first | last | json
	Separator  string   `json:"separator" yaml:"separator"`
	SampleSize int      `json:"sample_size" yaml:"sample_size"`
	IDFields   []string `json:"id_fields" yaml:"id_fields"`
	Addr       string   `json:"addr" yaml:"addr"`

	Keyword    KeywordConfig    `json:"keyword" yaml:"keyword"`
	Breadcrumb BreadcrumbConfig `json:"breadcrumb" yaml:"breadcrumb"`
}

// Load reads path (when it exists), applies env overrides, and fills
// defaults. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	var cfg Config

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults + env only
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.defaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("JSONTAB_INPUT"); v != "" {
		c.Input = []string{v}
	}
	c.Output = envOr("JSONTAB_OUTPUT", c.Output)
	c.Format = envOr("JSONTAB_FORMAT", c.Format)
	c.Rule = envOr("JSONTAB_RULE", c.Rule)
	c.Separator = envOr("JSONTAB_SEPARATOR", c.Separator)
	c.Addr = envOr("JSONTAB_ADDR", c.Addr)
}

func (c *Config) defaults() {
	if c.Format == "" {
		c.Format = "csv"
	}
	if c.Rule == "" {
		c.Rule = "join"
	}
	if c.Separator == "" {
		c.Separator = "; "
	}
	if c.SampleSize <= 0 {
		c.SampleSize = 200
	}
	if c.Addr == "" {
		c.Addr = ":8085"
	}
	if c.Output == "" {
		c.Output = "export.csv"
	}
}

// Validate checks the fields a batch run cannot proceed without.
func (c Config) Validate() error {
	if len(c.Input) == 0 {
		return fmt.Errorf("at least one input path is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
