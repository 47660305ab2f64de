// Package config loads the optional TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultPath = "tagcrawl.toml"

type Config struct {
	LogLevel string  `toml:"logLevel"`
	LogFile  string  `toml:"logFile"`
	Fetcher  Fetcher `toml:"fetcher"`
	Display  Display `toml:"display"`
}

type Fetcher struct {
	// Timeout in milliseconds.
	Timeout   int               `toml:"timeout"`
	Proxy     []string          `toml:"proxy"`
	UserAgent string            `toml:"userAgent"`
	Headers   map[string]string `toml:"headers"`
}

func (f Fetcher) TimeoutDuration() time.Duration {
	return time.Duration(f.Timeout) * time.Millisecond
}

type Display struct {
	// Preview is the number of entries shown per result; 0 disables tables.
	Preview int `toml:"preview"`
}

func Default() Config {
	return Config{
		LogLevel: "INFO",
		Fetcher:  Fetcher{Timeout: 5000},
		Display:  Display{Preview: 5},
	}
}

// Load reads path over the defaults. A missing file is only an error when
// required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}
