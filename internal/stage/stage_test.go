package stage

import (
	"errors"
	gomath "math"
	"testing"
	"time"

	"github.com/Faultbox/logo-teaser/internal/assets"
	"github.com/Faultbox/logo-teaser/internal/config"
	"github.com/Faultbox/logo-teaser/internal/engine/framing"
	"github.com/Faultbox/logo-teaser/internal/engine/lighting"
	"github.com/Faultbox/logo-teaser/internal/engine/scene"
	"github.com/Faultbox/logo-teaser/internal/motion"
	"github.com/Faultbox/logo-teaser/pkg/math"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func approx(a, b, eps float32) bool {
	return gomath.Abs(float64(a-b)) <= float64(eps)
}

// cubeModel returns a model node holding a box of the given edge length whose
// centre is offset from the origin.
func cubeModel(edge float32, offset math.Vec3) *scene.Node {
	h := edge / 2
	box := math.Box3{
		Min: offset.Sub(math.Vec3{X: h, Y: h, Z: h}),
		Max: offset.Add(math.Vec3{X: h, Y: h, Z: h}),
	}
	var verts []scene.Vertex
	for _, c := range box.Corners() {
		verts = append(verts, scene.Vertex{Position: c.Array()})
	}
	n := scene.NewNode("model")
	n.Mesh = scene.NewMesh(verts, []uint32{0, 1, 2, 4, 5, 6})
	return n
}

func newTestStage(t *testing.T, width, height int) *Stage {
	t.Helper()
	return New(config.Default(), width, height, t0)
}

func TestNew(t *testing.T) {
	s := newTestStage(t, 1920, 1080)
	cfg := config.Default()

	want := math.Vec3{X: cfg.Scene.BaseOrientation.X, Y: cfg.Scene.BaseOrientation.Y}
	if s.Scene.Rig.Rotation != want {
		t.Errorf("rig rotation = %+v, want base %+v", s.Scene.Rig.Rotation, want)
	}
	if s.Controller.Base() != want {
		t.Errorf("controller base = %+v, want %+v", s.Controller.Base(), want)
	}
	if !approx(s.Camera.Aspect, 1920.0/1080.0, 1e-6) {
		t.Errorf("aspect = %v, want 16:9", s.Camera.Aspect)
	}
	if s.Camera.FOV != 35 {
		t.Errorf("fov = %v, want 35", s.Camera.FOV)
	}
	if _, ok := s.LastFit(); ok {
		t.Error("stage should not be fitted before a model is attached")
	}
}

func TestAttachModelFitsCamera(t *testing.T) {
	s := newTestStage(t, 1920, 1080)
	model := cubeModel(2, math.Vec3{X: 3, Y: -1, Z: 0.5})

	res := s.AttachModel(model)

	want := framing.Distance(2, 35, 1920.0/1080.0, 1.18)
	if !approx(res.Distance, want, 1e-3) {
		t.Errorf("distance = %v, want %v", res.Distance, want)
	}
	if !approx(s.Camera.Position.Z, res.Distance, 1e-6) || s.Camera.Position.X != 0 || s.Camera.Position.Y != 0 {
		t.Errorf("camera position = %+v", s.Camera.Position)
	}
	if !approx(s.Camera.Near, res.Distance/100, 1e-6) || !approx(s.Camera.Far, res.Distance*100, 1e-3) {
		t.Errorf("clip planes = %v/%v", s.Camera.Near, s.Camera.Far)
	}

	// The model is re-centred on the rig origin.
	c := s.Bounds().Center()
	if !approx(c.X, 0, 1e-4) || !approx(c.Y, 0, 1e-4) || !approx(c.Z, 0, 1e-4) {
		t.Errorf("model centre = %+v, want origin", c)
	}
	if fit, ok := s.LastFit(); !ok || fit != res {
		t.Error("LastFit should return the attach fit")
	}
}

func TestResizeRefits(t *testing.T) {
	s := newTestStage(t, 1920, 1080)
	landscape := s.AttachModel(cubeModel(2, math.Vec3{})).Distance

	s.Resize(540, 1080)
	portrait, _ := s.LastFit()
	if portrait.Distance <= landscape {
		t.Errorf("portrait distance %v should exceed landscape %v", portrait.Distance, landscape)
	}
	want := framing.Distance(2, 35, 0.5, 1.18)
	if !approx(portrait.Distance, want, 1e-3) {
		t.Errorf("portrait distance = %v, want %v", portrait.Distance, want)
	}

	// Resizing back restores the landscape placement.
	s.Resize(1920, 1080)
	again, _ := s.LastFit()
	if !approx(again.Distance, landscape, 1e-3) {
		t.Errorf("distance after resize back = %v, want %v", again.Distance, landscape)
	}
}

func TestResizeClampsToOnePixel(t *testing.T) {
	s := newTestStage(t, 800, 600)
	s.Resize(0, -5)
	if w, h := s.Size(); w != 1 || h != 1 {
		t.Errorf("size = %dx%d, want 1x1", w, h)
	}
	if s.Camera.Aspect != 1 {
		t.Errorf("aspect = %v, want 1", s.Camera.Aspect)
	}
}

func TestOverlayGatesPointer(t *testing.T) {
	s := newTestStage(t, 800, 600)

	if !s.OnPointer(600, 150, 800, 600, t0.Add(100*time.Millisecond)) {
		t.Fatal("pointer sample should be accepted without overlay")
	}
	target, last := s.Controller.Target(), s.Controller.LastSample()

	if !s.ToggleOverlay() {
		t.Fatal("overlay should be shown after first toggle")
	}
	if s.OnPointer(0, 0, 800, 600, t0.Add(200*time.Millisecond)) {
		t.Error("pointer sample should be suppressed while the overlay is shown")
	}
	if s.OnTilt(30, 30, t0.Add(250*time.Millisecond)) {
		t.Error("tilt sample should be suppressed while the overlay is shown")
	}
	if s.Controller.Target() != target {
		t.Errorf("target changed to %+v while gated", s.Controller.Target())
	}
	if !s.Controller.LastSample().Equal(last) {
		t.Errorf("lastSample changed to %v while gated", s.Controller.LastSample())
	}

	s.ToggleOverlay()
	if !s.OnPointer(0, 0, 800, 600, t0.Add(300*time.Millisecond)) {
		t.Error("pointer sample should be accepted after the overlay closes")
	}
}

func TestDisabledInputSources(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Pointer = false
	cfg.Input.Tilt = false
	s := New(cfg, 800, 600, t0)

	if s.OnPointer(10, 10, 800, 600, t0) {
		t.Error("pointer should be ignored when disabled")
	}
	if s.OnTilt(10, 10, t0) {
		t.Error("tilt should be ignored when disabled")
	}
}

func TestFrameDrivesRig(t *testing.T) {
	s := newTestStage(t, 800, 600)
	s.OnPointer(800, 300, 800, 600, t0)

	var rot math.Vec3
	for i := 1; i <= 10; i++ {
		rot = s.Frame(t0.Add(time.Duration(i) * 16 * time.Millisecond))
	}

	if s.Scene.Rig.Rotation != rot {
		t.Errorf("rig rotation %+v does not match frame output %+v", s.Scene.Rig.Rotation, rot)
	}
	want := s.Controller.Base().Add(s.Controller.Offset())
	if rot != want {
		t.Errorf("rotation = %+v, want base+offset %+v", rot, want)
	}
	if s.Controller.Offset().Y <= 0 {
		t.Errorf("pointer at the right edge should yaw positive, offset %+v", s.Controller.Offset())
	}
}

func TestFrameGoesIdle(t *testing.T) {
	s := newTestStage(t, 800, 600)
	s.Frame(t0.Add(900 * time.Millisecond))
	if s.Controller.Mode() != motion.ModeActive {
		t.Fatal("controller should still be active at the timeout")
	}
	s.Frame(t0.Add(901 * time.Millisecond))
	if s.Controller.Mode() != motion.ModeIdle {
		t.Error("controller should be idle just after the timeout")
	}
}

func TestToggleBounds(t *testing.T) {
	s := newTestStage(t, 800, 600)
	if s.ShowBounds() {
		t.Fatal("bounds should be hidden by default")
	}
	if !s.ToggleBounds() || !s.ShowBounds() {
		t.Error("ToggleBounds should show the wireframe")
	}
	if !s.Bounds().IsEmpty() {
		t.Error("bounds should be empty without a model")
	}
}

func TestApplyResults(t *testing.T) {
	s := newTestStage(t, 800, 600)

	if prev := s.Apply(assets.Result{Kind: assets.KindModel, URL: "x.glb", Err: errors.New("boom")}); prev != nil {
		t.Error("failed load should not replace anything")
	}
	if s.Scene.Model() != nil {
		t.Error("failed load should leave the rig empty")
	}

	first := cubeModel(1, math.Vec3{})
	if prev := s.Apply(assets.Result{Kind: assets.KindModel, Model: first}); prev != nil {
		t.Error("first model should not replace anything")
	}
	second := cubeModel(3, math.Vec3{})
	if prev := s.Apply(assets.Result{Kind: assets.KindModel, Model: second}); prev != first {
		t.Error("second model should report the first as replaced")
	}
	if s.Scene.Model() != second {
		t.Error("rig should hold the second model")
	}
	if fit, _ := s.LastFit(); !approx(fit.Distance, framing.Distance(3, 35, 800.0/600.0, 1.18), 1e-3) {
		t.Errorf("fit distance = %v, want fit for the second model", fit.Distance)
	}

	env := &lighting.Environment{Ambient: [3]float32{0.5, 0.5, 0.5}}
	s.Apply(assets.Result{Kind: assets.KindEnvironment, Environment: env})
	if s.Scene.Environment != env {
		t.Error("environment result should be installed")
	}
}
