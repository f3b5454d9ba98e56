// # internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"docref/internal/errors"
)

type Config struct {
	Roots         []string      `toml:"roots"`
	OutputDir     string        `toml:"output_dir"`
	Exclude       Exclude       `toml:"exclude"`
	Docstring     Docstring     `toml:"docstring"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

type Exclude struct {
	// Dotted-name patterns matched against fully qualified names,
	// with * wildcards at name-segment granularity (e.g. "pkg.tests.*").
	Patterns []string `toml:"patterns"`
	// Directory/file basename globs skipped while scanning and watching.
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Docstring struct {
	// Style forces a docstring convention ("google" or "numpy").
	// Empty means per-docstring auto-detection.
	Style string `toml:"style"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// RebuildsPerSecond throttles how often watch mode may trigger a
	// rebuild; bursts of editor saves collapse into one build.
	RebuildsPerSecond float64 `toml:"rebuilds_per_second"`
}

type History struct {
	// Path to the sqlite build-history database. Empty disables history.
	Path string `toml:"path"`
}

type Observability struct {
	// Listen address for the /metrics and /health HTTP server. Empty disables it.
	Listen string `toml:"listen"`
	// OTLPEndpoint enables trace export when set (host:port, gRPC).
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "parse config").WithContext(errors.CtxPath, path)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.Roots) == 0 {
		c.Roots = []string{"."}
	}
	if c.OutputDir == "" {
		c.OutputDir = "docs/api"
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Watch.RebuildsPerSecond == 0 {
		c.Watch.RebuildsPerSecond = 2
	}
	if len(c.Exclude.Dirs) == 0 {
		c.Exclude.Dirs = []string{".*", "__pycache__", "venv", "node_modules"}
	}
}

func (c *Config) validate() error {
	switch c.Docstring.Style {
	case "", "google", "numpy":
	default:
		return errors.Newf(errors.CodeValidationError, "unknown docstring style %q (want google, numpy or empty)", c.Docstring.Style)
	}
	for _, root := range c.Roots {
		if root == "" {
			return errors.New(errors.CodeValidationError, "roots must not contain empty entries")
		}
	}
	return nil
}
