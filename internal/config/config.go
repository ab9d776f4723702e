// # internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	SourceRoots []string      `toml:"source_roots"`
	OutputDir   string        `toml:"output_dir"`
	Exclude     Exclude       `toml:"exclude"`
	Watch       Watch         `toml:"watch"`
	Cache       Cache         `toml:"cache"`
	Diagnostics Diagnostics   `toml:"diagnostics"`
	Observe     Observability `toml:"observability"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// RebuildsPerSecond bounds watch-mode recompiles; bursts up to
	// RebuildBurst are allowed.
	RebuildsPerSecond float64 `toml:"rebuilds_per_second"`
	RebuildBurst      int     `toml:"rebuild_burst"`
}

type Cache struct {
	// MaxEntries is the in-memory LRU ceiling.
	MaxEntries int `toml:"max_entries"`
	// Path enables the persistent sqlite store when non-empty.
	Path string `toml:"path"`
}

type Diagnostics struct {
	// SuggestionDistance is the "did you mean" edit-distance threshold.
	SuggestionDistance int `toml:"suggestion_distance"`
	// Color controls caret-snippet rendering in CLI output.
	Color bool `toml:"color"`
}

type Observability struct {
	// Addr serves /metrics and /health when non-empty, e.g. ":9090".
	Addr string `toml:"addr"`
	// OTLPEndpoint enables trace export when non-empty.
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.SourceRoots) == 0 {
		c.SourceRoots = []string{"."}
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if len(c.Exclude.Dirs) == 0 {
		c.Exclude.Dirs = []string{"**/node_modules", "**/.git", "**/dist"}
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 300 * time.Millisecond
	}
	if c.Watch.RebuildsPerSecond == 0 {
		c.Watch.RebuildsPerSecond = 4
	}
	if c.Watch.RebuildBurst == 0 {
		c.Watch.RebuildBurst = 2
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 256
	}
	if c.Diagnostics.SuggestionDistance == 0 {
		c.Diagnostics.SuggestionDistance = 2
	}
}
