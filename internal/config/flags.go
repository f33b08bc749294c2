package config

import (
	"flag"
	"time"
)

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging and the bounding-box overlay")
	flagModel        = flag.String("model", "", "Model URL or path (.glb/.gltf)")
	flagEnv          = flag.String("env", "", "Environment image URL or path")
	flagWindowed     = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen   = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth        = flag.Int("width", 0, "Window width")
	flagHeight       = flag.Int("height", 0, "Window height")
	flagCapture      = flag.String("capture", "", "Write a screenshot (.png or .webp) and exit")
	flagCaptureAfter = flag.Duration("capture-after", 0, "Delay before --capture is taken")
	flagSaveConfig   = flag.Bool("save-config", false, "Write the effective config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Scene.ShowBounds = true
	}
	if *flagModel != "" {
		cfg.Scene.ModelURL = *flagModel
	}
	if *flagEnv != "" {
		cfg.Scene.EnvironmentURL = *flagEnv
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagCapture != "" {
		cfg.Capture.Path = *flagCapture
		if cfg.Capture.After == 0 {
			cfg.Capture.After = 2 * time.Second
		}
	}
	if *flagCaptureAfter > 0 {
		cfg.Capture.After = *flagCaptureAfter
	}
}
