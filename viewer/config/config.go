// package config loads and validates the viewer's TOML configuration.
// Every field has a default, so a missing config file is not an error; the
// file only overrides what it names.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Window contains window geometry and title configuration.
type Window struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	MinWidth  int    `toml:"min_width"`
	MinHeight int    `toml:"min_height"`
}

// Grid contains grid geometry configuration.
type Grid struct {
	CellSize float32 `toml:"cell_size"`
	Gap      float32 `toml:"gap"`
}

// Display contains presentation defaults.
type Display struct {
	// Mode selects the startup presentation: "single" or "grid".
	Mode string `toml:"mode"`

	// Scale is the uniform scale applied to loaded rigs (> 0).
	Scale float32 `toml:"scale"`

	// Outlines controls whether bounding outlines start visible.
	Outlines bool `toml:"outlines"`
}

// Loader contains bind worker configuration.
type Loader struct {
	// BindWorkers bounds how many binds may run concurrently.
	BindWorkers int `toml:"bind_workers"`
}

// Logging contains log output configuration.
type Logging struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Window  Window  `toml:"window"`
	Grid    Grid    `toml:"grid"`
	Display Display `toml:"display"`
	Loader  Loader  `toml:"loader"`
	Logging Logging `toml:"logging"`
}

// Load reads a config file over the defaults. A missing file is not an
// error; the defaults are returned and exists is false.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the merged, validated configuration
//   - bool: true if the file existed and was read
//   - error: error if the file was unreadable, malformed, or invalid
func Load(path string) (Config, bool, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, false, nil
		}
		return Config{}, false, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, true, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, true, err
	}
	return cfg, true, nil
}

// WriteSample writes the annotated sample config to path, creating parent
// directories as needed. Fails if the file already exists.
//
// Parameters:
//   - path: destination path for the sample
//
// Returns:
//   - error: error if the file exists or cannot be written
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
