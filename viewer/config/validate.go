package config

import "fmt"

// Validate checks field constraints after defaults and overrides are merged.
//
// Returns:
//   - error: the first constraint violation found
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 {
		return fmt.Errorf("config: window minimum size must not be negative")
	}
	if c.Grid.CellSize <= 0 {
		return fmt.Errorf("config: grid cell_size must be positive, got %v", c.Grid.CellSize)
	}
	if c.Grid.Gap < 0 {
		return fmt.Errorf("config: grid gap must not be negative, got %v", c.Grid.Gap)
	}
	switch c.Display.Mode {
	case "single", "grid":
	default:
		return fmt.Errorf("config: display mode must be %q or %q, got %q", "single", "grid", c.Display.Mode)
	}
	if c.Display.Scale <= 0 {
		return fmt.Errorf("config: display scale must be positive, got %v", c.Display.Scale)
	}
	if c.Loader.BindWorkers < 1 {
		return fmt.Errorf("config: loader bind_workers must be at least 1, got %d", c.Loader.BindWorkers)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging level %q", c.Logging.Level)
	}
	return nil
}
