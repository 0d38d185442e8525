package config

const (
	defaultWindowTitle  = "Rig Viewer"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 900
	defaultMinWidth     = 480
	defaultMinHeight    = 360
	defaultCellSize     = 160
	defaultGap          = 12
	defaultMode         = "single"
	defaultScale        = 1.0
	defaultOutlines     = true
	defaultBindWorkers  = 2
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Window: Window{
			Title:     defaultWindowTitle,
			Width:     defaultWindowWidth,
			Height:    defaultWindowHeight,
			MinWidth:  defaultMinWidth,
			MinHeight: defaultMinHeight,
		},
		Grid: Grid{
			CellSize: defaultCellSize,
			Gap:      defaultGap,
		},
		Display: Display{
			Mode:     defaultMode,
			Scale:    defaultScale,
			Outlines: defaultOutlines,
		},
		Loader: Loader{
			BindWorkers: defaultBindWorkers,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
