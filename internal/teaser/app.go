// Package teaser binds the stage to an SDL window, GL renderer and asset
// pipeline and runs the frame loop.
package teaser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/logo-teaser/internal/assets"
	"github.com/Faultbox/logo-teaser/internal/config"
	"github.com/Faultbox/logo-teaser/internal/engine/debug"
	"github.com/Faultbox/logo-teaser/internal/engine/input"
	"github.com/Faultbox/logo-teaser/internal/engine/renderer"
	"github.com/Faultbox/logo-teaser/internal/engine/window"
	"github.com/Faultbox/logo-teaser/internal/logger"
	"github.com/Faultbox/logo-teaser/internal/stage"
)

// ErrRunning is returned when Run is called while the loop is already running.
var ErrRunning = errors.New("teaser is already running")

var (
	overlayColor = [4]float32{0, 0, 0, 0.6}
	boundsColor  = [4]float32{0.2, 1, 0.4, 1}
)

// App is the teaser bound to a window and GL renderer.
type App struct {
	cfg *config.Config
	log *zap.Logger

	win      *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	stage    *stage.Stage

	pipeline    *assets.Pipeline
	loadCtx     context.Context
	pending     []<-chan assets.Result
	screenshots *debug.ScreenshotCapture

	running bool
}

// New mounts the window, creates the renderer and prepares the stage.
// It fails if no window can be created; nothing is left open in that case.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:         cfg,
		log:         logger.Named("app"),
		pipeline:    assets.NewPipeline(nil),
		screenshots: debug.NewScreenshotCapture(cfg.Capture.Dir, "teaser"),
	}

	win, err := a.mount()
	if err != nil {
		return nil, err
	}

	width, height := win.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:        width,
		Height:       height,
		ClearColor:   cfg.Scene.ClearColor,
		Exposure:     cfg.Scene.Exposure,
		EnvIntensity: cfg.Scene.EnvIntensity,
	})
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New(cfg.Input.Tilt)
	a.stage = stage.New(cfg, width, height, time.Now())

	a.log.Info("teaser initialized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.String("model", cfg.Scene.ModelURL),
	)
	return a, nil
}

// mount returns the window, creating it on first use.
func (a *App) mount() (*window.Window, error) {
	if a.win != nil {
		return a.win, nil
	}
	win, err := window.New(window.Config{
		Title:      a.cfg.Window.Title,
		Width:      a.cfg.Window.Width,
		Height:     a.cfg.Window.Height,
		Fullscreen: a.cfg.Window.Fullscreen,
		VSync:      a.cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	a.win = win
	return win, nil
}

// Run starts the asset loads and drives the frame loop until the window is
// closed, Escape is pressed, ctx is cancelled or a --capture is written.
func (a *App) Run(ctx context.Context) error {
	if a.running {
		return ErrRunning
	}
	a.running = true
	defer func() { a.running = false }()

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.loadCtx = loadCtx
	a.load()

	start := time.Now()
	var captureAt time.Time
	if a.cfg.Capture.Path != "" {
		captureAt = start.Add(a.cfg.Capture.After)
	}

	frameCount := 0
	fpsTimer := start

	a.log.Info("starting frame loop")

	for {
		if ctx.Err() != nil {
			a.log.Info("frame loop cancelled")
			return nil
		}

		if a.input.Update() || a.input.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
			return nil
		}
		a.handleEvents()

		a.collect()

		now := time.Now()
		a.stage.Frame(now)
		a.render()

		if a.input.IsKeyPressed(sdl.SCANCODE_F12) {
			a.screenshot()
		}
		if !captureAt.IsZero() && !now.Before(captureAt) {
			return a.capture()
		}

		a.win.SwapBuffers()

		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			hits, misses := a.pipeline.Cache().Stats()
			a.log.Debug("fps",
				zap.Float64("fps", float64(frameCount)/elapsed.Seconds()),
				zap.Stringer("mode", a.stage.Controller.Mode()),
				zap.Int("asset_cache_hits", hits),
				zap.Int("asset_cache_misses", misses),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

// load starts background loads for the configured model and environment.
func (a *App) load() {
	if url := a.cfg.Scene.ModelURL; url != "" {
		a.pending = append(a.pending, a.pipeline.Go(a.loadCtx, assets.KindModel, url))
	}
	if url := a.cfg.Scene.EnvironmentURL; url != "" {
		a.pending = append(a.pending, a.pipeline.Go(a.loadCtx, assets.KindEnvironment, url))
	}
}

// reload drops cached bytes and fetches the assets again, picking up edits
// to local files or a redeployed remote model.
func (a *App) reload() {
	if len(a.pending) > 0 {
		a.log.Info("reload skipped, loads still pending", zap.Int("pending", len(a.pending)))
		return
	}
	a.pipeline.Cache().Clear()
	a.load()
	a.log.Info("reloading assets", zap.Int("pending", len(a.pending)))
}

// handleEvents applies this frame's input. Escape and F12 are polled by Run.
func (a *App) handleEvents() {
	now := time.Now()
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			width, height := a.win.DrawableSize()
			a.renderer.Resize(width, height)
			a.stage.Resize(width, height)

		case input.EventPointerMove:
			w, h := a.win.GetSize()
			a.stage.OnPointer(float32(event.X), float32(event.Y), w, h, now)

		case input.EventTilt:
			a.stage.OnTilt(event.Beta, event.Gamma, now)

		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_H:
				a.log.Info("help overlay", zap.Bool("shown", a.stage.ToggleOverlay()))
			case sdl.SCANCODE_B:
				a.log.Info("bounds overlay", zap.Bool("shown", a.stage.ToggleBounds()))
			case sdl.SCANCODE_R:
				a.reload()
			}
		}
	}
}

// collect installs finished asset loads without blocking.
func (a *App) collect() {
	kept := a.pending[:0]
	for _, ch := range a.pending {
		select {
		case res, ok := <-ch:
			if !ok {
				continue
			}
			if previous := a.stage.Apply(res); previous != nil {
				a.renderer.Release(previous)
			}
			if res.Model != nil && res.Err == nil {
				a.renderer.Upload(res.Model)
			}
		default:
			kept = append(kept, ch)
		}
	}
	a.pending = kept
}

func (a *App) render() {
	a.renderer.Render(a.stage.Scene, a.stage.Camera)
	if a.stage.ShowBounds() {
		a.renderer.DrawBounds(a.stage.Bounds(), a.stage.Camera, boundsColor)
	}
	if a.stage.Overlay() {
		a.renderer.DrawOverlay(overlayColor)
	}
}

func (a *App) screenshot() {
	pixels, width, height := a.renderer.ReadPixels()
	path, err := a.screenshots.CaptureFromPixels(pixels, width, height)
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// capture writes the --capture frame and ends the loop.
func (a *App) capture() error {
	pixels, width, height := a.renderer.ReadPixels()
	if err := debug.SavePixels(a.cfg.Capture.Path, pixels, width, height); err != nil {
		return fmt.Errorf("writing capture: %w", err)
	}
	a.log.Info("capture saved",
		zap.String("path", a.cfg.Capture.Path),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return nil
}

// Close releases the renderer, input and window.
func (a *App) Close() {
	a.log.Info("closing teaser")

	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.input != nil {
		a.input.Close()
	}
	if a.win != nil {
		a.win.Close()
	}
}
