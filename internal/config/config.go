// # internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Exclude       Exclude       `toml:"exclude"`
	Format        Format        `toml:"format"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Format struct {
	// Command is the external formatter invocation. The formatter must read
	// source from stdin and write the formatted result to stdout.
	Command []string `toml:"command"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// Rate limits reprocessing in watch mode: files per second and burst size.
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

type History struct {
	Path string `toml:"path"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
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

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.Exclude.Dirs) == 0 {
		c.Exclude.Dirs = []string{".git", "__pycache__", ".venv", "venv", ".tox", ".mypy_cache", "node_modules"}
	}
	if len(c.Format.Command) == 0 {
		c.Format.Command = []string{"black", "-", "--quiet"}
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Watch.Rate == 0 {
		c.Watch.Rate = 20
	}
	if c.Watch.Burst == 0 {
		c.Watch.Burst = 40
	}
}
