// Package stage holds the windowless half of the teaser: viewport, camera
// framing, scene graph and motion controller, advanced once per frame.
package stage

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/logo-teaser/internal/assets"
	"github.com/Faultbox/logo-teaser/internal/config"
	"github.com/Faultbox/logo-teaser/internal/engine/camera"
	"github.com/Faultbox/logo-teaser/internal/engine/framing"
	"github.com/Faultbox/logo-teaser/internal/engine/lighting"
	"github.com/Faultbox/logo-teaser/internal/engine/scene"
	"github.com/Faultbox/logo-teaser/internal/logger"
	"github.com/Faultbox/logo-teaser/internal/motion"
	"github.com/Faultbox/logo-teaser/pkg/math"
)

// Initial clip planes, replaced by the first fit.
const (
	defaultNear = 0.1
	defaultFar  = 1000
)

// Stage is the per-frame state of the teaser without any GPU or window:
// viewport, camera, scene, rig and motion controller. All methods must be
// called from the frame loop goroutine.
type Stage struct {
	Camera     *camera.Perspective
	Scene      *scene.Scene
	Controller *motion.Controller

	width, height int
	margin        float32
	input         config.InputConfig

	overlay    bool
	showBounds bool
	fit        framing.Result
	fitted     bool

	log *zap.Logger
}

// New builds a stage for a viewport of width x height pixels.
func New(cfg *config.Config, width, height int, now time.Time) *Stage {
	sc := cfg.Scene
	base := math.Vec3{X: sc.BaseOrientation.X, Y: sc.BaseOrientation.Y, Z: sc.BaseOrientation.Z}

	s := &Stage{
		Camera:     camera.NewPerspective(sc.FOV, 1, defaultNear, defaultFar),
		Scene:      scene.NewScene(base, lighting.NewDirectional(sc.Light.Azimuth, sc.Light.Elevation, sc.Light.Intensity)),
		Controller: motion.New(cfg.Motion, base, now),
		margin:     sc.Margin,
		input:      cfg.Input,
		showBounds: sc.ShowBounds,
		log:        logger.Named("stage"),
	}
	s.Scene.ClearColor = sc.ClearColor
	s.Controller.SetGate(motion.GateFunc(s.Overlay))
	s.Resize(width, height)
	return s
}

// Resize updates the viewport and re-fits the camera when a model is attached.
// Sizes below 1 are clamped to 1.
func (s *Stage) Resize(width, height int) {
	s.width = max(width, 1)
	s.height = max(height, 1)
	s.Camera.SetViewport(s.width, s.height)
	if s.Scene.Model() != nil {
		s.refit()
	}
}

// Size returns the viewport size in pixels.
func (s *Stage) Size() (int, int) {
	return s.width, s.height
}

// AttachModel puts model on the rig, replacing any previous one, and fits
// the camera to it.
func (s *Stage) AttachModel(model *scene.Node) framing.Result {
	s.Scene.SetModel(model)
	if model == nil {
		s.fitted = false
		return framing.Result{}
	}
	return s.refit()
}

func (s *Stage) refit() framing.Result {
	s.fit = framing.Fit(s.Camera, s.Scene.Model(), s.margin)
	s.fitted = true
	return s.fit
}

// LastFit returns the most recent fit and whether one has happened.
func (s *Stage) LastFit() (framing.Result, bool) {
	return s.fit, s.fitted
}

// SetEnvironment replaces the ambient term; nil restores the default.
func (s *Stage) SetEnvironment(env *lighting.Environment) {
	s.Scene.SetEnvironment(env)
}

// OnPointer feeds a pointer position measured against a surface of the given
// size (window coordinates, which may differ from pixels on high-DPI screens).
// It reports whether the controller accepted the sample.
func (s *Stage) OnPointer(x, y float32, surfaceW, surfaceH int, at time.Time) bool {
	if !s.input.Pointer {
		return false
	}
	return s.Controller.Ingest(motion.PointerSample(x, y, surfaceW, surfaceH, at))
}

// OnTilt feeds device tilt angles in degrees.
func (s *Stage) OnTilt(beta, gamma float32, at time.Time) bool {
	if !s.input.Tilt {
		return false
	}
	return s.Controller.Ingest(motion.TiltSample(beta, gamma, s.input.TiltRange, at))
}

// Frame advances the controller to now and applies its output to the rig.
func (s *Stage) Frame(now time.Time) math.Vec3 {
	before := s.Controller.Mode()
	rot := s.Controller.Step(now)
	s.Scene.Rig.Rotation = rot
	if after := s.Controller.Mode(); after != before {
		s.log.Debug("motion mode changed",
			zap.Stringer("from", before),
			zap.Stringer("to", after),
		)
	}
	return rot
}

// ToggleOverlay shows or hides the help overlay. While it is shown input is
// gated off.
func (s *Stage) ToggleOverlay() bool {
	s.overlay = !s.overlay
	return s.overlay
}

// Overlay reports whether the help overlay is shown.
func (s *Stage) Overlay() bool {
	return s.overlay
}

// ToggleBounds shows or hides the bounding-box wireframe.
func (s *Stage) ToggleBounds() bool {
	s.showBounds = !s.showBounds
	return s.showBounds
}

// ShowBounds reports whether the bounding-box wireframe is drawn.
func (s *Stage) ShowBounds() bool {
	return s.showBounds
}

// Bounds returns the model's current world-space bounds, empty without a model.
func (s *Stage) Bounds() math.Box3 {
	if m := s.Scene.Model(); m != nil {
		return m.WorldBounds()
	}
	return math.EmptyBox3()
}

// Apply installs a finished asset load. Failed loads are logged and dropped;
// the scene keeps rendering without them. It returns the model that was
// replaced, if any, so its GPU resources can be released.
func (s *Stage) Apply(res assets.Result) *scene.Node {
	if res.Err != nil {
		s.log.Error("asset load failed",
			zap.Stringer("kind", res.Kind),
			zap.String("url", res.URL),
			zap.Error(res.Err),
		)
		return nil
	}

	switch res.Kind {
	case assets.KindModel:
		if res.Model == nil {
			return nil
		}
		previous := s.Scene.Model()
		fit := s.AttachModel(res.Model)
		s.log.Info("model attached",
			zap.String("url", res.URL),
			zap.Duration("elapsed", res.Elapsed),
			zap.Float32("distance", fit.Distance),
			zap.Bool("degenerate", fit.Degenerate),
		)
		return previous
	case assets.KindEnvironment:
		s.SetEnvironment(res.Environment)
		s.log.Info("environment applied",
			zap.String("url", res.URL),
			zap.Duration("elapsed", res.Elapsed),
		)
	}
	return nil
}
