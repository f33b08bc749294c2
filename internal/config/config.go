// Package config handles teaser configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/logo-teaser/internal/logger"
	"github.com/Faultbox/logo-teaser/internal/motion"
)

// Config holds all teaser settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Scene   SceneConfig   `yaml:"scene"`
	Motion  motion.Config `yaml:"motion"`
	Input   InputConfig   `yaml:"input"`
	Capture CaptureConfig `yaml:"capture"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// Orientation is a set of Euler angles in radians.
type Orientation struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// LightConfig positions the key light.
type LightConfig struct {
	Azimuth   float32 `yaml:"azimuth"`   // degrees around Y
	Elevation float32 `yaml:"elevation"` // degrees above the horizon
	Intensity float32 `yaml:"intensity"`
}

// SceneConfig holds what is shown and how it is framed.
type SceneConfig struct {
	ModelURL       string `yaml:"model_url"`
	EnvironmentURL string `yaml:"environment_url"`

	FOV    float32 `yaml:"fov"`    // vertical, degrees
	Margin float32 `yaml:"margin"` // framing headroom, >= 1

	// BaseOrientation is the rig's rest pose, including any fixed correction
	// needed to make the asset face the viewer.
	BaseOrientation Orientation `yaml:"base_orientation"`

	ClearColor [3]float32  `yaml:"clear_color"`
	Light      LightConfig `yaml:"light"`
	ShowBounds bool        `yaml:"show_bounds"`

	Exposure     float32 `yaml:"exposure"`      // ACES filmic exposure
	EnvIntensity float32 `yaml:"env_intensity"` // environment reflection scale
}

// InputConfig selects input sources.
type InputConfig struct {
	Pointer   bool    `yaml:"pointer"`
	Tilt      bool    `yaml:"tilt"`
	TiltRange float32 `yaml:"tilt_range"` // degrees that saturate an axis
}

// CaptureConfig controls screenshots.
type CaptureConfig struct {
	Dir   string        `yaml:"dir"`   // F12 screenshots
	Path  string        `yaml:"path"`  // one-shot capture written after After, then exit
	After time.Duration `yaml:"after"` // delay before the one-shot capture
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Logo Teaser",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Scene: SceneConfig{
			ModelURL:        "assets/logo.glb",
			EnvironmentURL:  "",
			FOV:             35,
			Margin:          1.18,
			BaseOrientation: Orientation{X: 1.5707964, Y: 3.1415927, Z: 0},
			ClearColor:      [3]float32{0, 0, 0},
			Light: LightConfig{
				Azimuth:   45,
				Elevation: 35.26,
				Intensity: 1.2,
			},
			Exposure:     1.1,
			EnvIntensity: 1.2,
		},
		Motion: motion.DefaultConfig(),
		Input: InputConfig{
			Pointer:   true,
			Tilt:      true,
			TiltRange: motion.DefaultTiltRange,
		},
		Capture: CaptureConfig{
			Dir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the teaser cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Scene.FOV <= 0 || c.Scene.FOV >= 180 {
		errs = append(errs, fmt.Errorf("scene.fov must be in (0, 180), got %v", c.Scene.FOV))
	}
	if c.Scene.Margin < 1 {
		errs = append(errs, fmt.Errorf("scene.margin must be >= 1, got %v", c.Scene.Margin))
	}
	if c.Scene.Exposure <= 0 {
		errs = append(errs, fmt.Errorf("scene.exposure must be positive, got %v", c.Scene.Exposure))
	}
	if c.Scene.EnvIntensity < 0 {
		errs = append(errs, fmt.Errorf("scene.env_intensity must not be negative, got %v", c.Scene.EnvIntensity))
	}
	if c.Motion.Smoothing <= 0 || c.Motion.Smoothing > 1 {
		errs = append(errs, fmt.Errorf("motion.smoothing must be in (0, 1], got %v", c.Motion.Smoothing))
	}
	if c.Motion.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("motion.idle_timeout must be positive, got %v", c.Motion.IdleTimeout))
	}
	if c.Motion.PitchLimit < 0 {
		errs = append(errs, fmt.Errorf("motion.pitch_limit must not be negative, got %v", c.Motion.PitchLimit))
	}
	if c.Input.TiltRange <= 0 {
		errs = append(errs, fmt.Errorf("input.tilt_range must be positive, got %v", c.Input.TiltRange))
	}
	if _, ok := logger.ParseLevel(c.Logging.Level); !ok {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	return errors.Join(errs...)
}
