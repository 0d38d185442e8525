package cli

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/rigview-go/viewer"
	"github.com/Carmen-Shannon/rigview-go/viewer/atlas"
	"github.com/Carmen-Shannon/rigview-go/viewer/config"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. Typically
// called by the main package with values injected via ldflags at build time.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2026-08-23T14:32:01Z")
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the rigview CLI and returns an error if any command fails.
//
// The root command opens the previewer window:
//
//	rigview [flags] <skeleton> <atlas> [images...]
//
// Logging defaults to the configured level and switches to debug with
// --verbose (-v).
func Execute() error {
	var (
		verbose    bool
		configPath string
		mode       string
	)

	root := &cobra.Command{
		Use:          "rigview [flags] <skeleton> <atlas> [images...]",
		Short:        "rigview previews animated skeletal rigs",
		Long:         `rigview opens a previewer window for animated skeletal rig assets: a skeleton blob, an atlas descriptor, and the atlas page images. It shows one centered rig or a 5x5 grid of independently controlled rigs.`,
		Version:      version,
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, exists, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if mode != "" {
				cfg.Display.Mode = mode
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			level := parseLevel(cfg.Logging.Level)
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			if exists {
				logger.Debug("loaded config", "path", configPath)
			}

			descriptor, err := loadDescriptor(args[0], args[1], args[2:])
			if err != nil {
				return err
			}

			v := viewer.NewViewer(cfg,
				viewer.WithLogger(logger),
				viewer.WithDescriptor(descriptor),
			)
			defer v.Shutdown()
			return v.Run()
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("rigview %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "config file path")
	root.Flags().StringVarP(&mode, "mode", "m", "", `startup mode: "single" or "grid" (overrides config)`)

	root.AddCommand(newPagesCmd())
	root.AddCommand(newInitConfigCmd())

	return root.Execute()
}

// defaultConfigPath returns the per-user config location, falling back to a
// relative path when the user config dir is unavailable.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "rigview.toml"
	}
	return dir + "/rigview/config.toml"
}

// newPagesCmd creates the "pages" subcommand, which parses an atlas
// descriptor and prints its declared page image names.
func newPagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages <atlas>",
		Short: "List the page image names an atlas descriptor declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read atlas %s: %w", args[0], err)
			}
			pages, err := atlas.Pages(string(data))
			if err != nil {
				return err
			}
			for _, page := range pages {
				fmt.Fprintln(cmd.OutOrStdout(), page)
			}
			return nil
		},
	}
}

// newInitConfigCmd creates the "init-config" subcommand, which writes the
// annotated sample config.
func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write an annotated sample config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
