package framing

import (
	gomath "math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/logo-teaser/internal/engine/camera"
	"github.com/Faultbox/logo-teaser/internal/engine/scene"
	"github.com/Faultbox/logo-teaser/internal/logger"
	"github.com/Faultbox/logo-teaser/pkg/math"
)

// cube returns a node holding an axis-aligned box mesh spanning min..max.
func cube(name string, min, max math.Vec3) *scene.Node {
	var verts []scene.Vertex
	for _, c := range (math.Box3{Min: min, Max: max}).Corners() {
		verts = append(verts, scene.Vertex{Position: c.Array()})
	}
	n := scene.NewNode(name)
	n.Mesh = scene.NewMesh(verts, []uint32{0, 1, 2, 1, 3, 2, 4, 5, 6, 5, 7, 6})
	return n
}

func near(a, b, tol float64) bool {
	return gomath.Abs(a-b) <= tol*gomath.Max(1, gomath.Abs(b))
}

func TestFitScenarioFullHD(t *testing.T) {
	cam := camera.NewPerspective(35, 1, 0.1, 500)
	cam.SetViewport(1920, 1080)
	obj := cube("logo", math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})

	res := Fit(cam, obj, 1.18)

	fov := 35 * gomath.Pi / 180
	fitHeight := 1 / gomath.Tan(fov/2)
	fitWidth := fitHeight / (1920.0 / 1080.0)
	want := 1.18 * gomath.Max(fitHeight, fitWidth)

	if !near(float64(cam.Position.Z), want, 1e-5) {
		t.Errorf("camera z = %v, want %v", cam.Position.Z, want)
	}
	if cam.Position.X != 0 || cam.Position.Y != 0 {
		t.Errorf("camera should sit on the view axis, got %v", cam.Position)
	}
	if !near(float64(cam.Near), want/100, 1e-5) || !near(float64(cam.Far), want*100, 1e-5) {
		t.Errorf("near/far = %v/%v, want %v/%v", cam.Near, cam.Far, want/100, want*100)
	}
	if cam.Target != (math.Vec3{}) {
		t.Errorf("camera should look at the origin, got %v", cam.Target)
	}
	if res.Distance != cam.Position.Z || res.Degenerate {
		t.Errorf("result = %+v does not match camera", res)
	}
}

func TestFitTouchesFrustumOnTighterAxis(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		size          float32
		fov           float32
		margin        float32
	}{
		{"landscape", 1920, 1080, 2, 35, 1.18},
		{"portrait", 390, 844, 2, 35, 1.18},
		{"square", 800, 800, 7.5, 50, 1.25},
		{"tiny object", 1280, 720, 0.01, 35, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := camera.NewPerspective(tt.fov, 1, 0.1, 500)
			cam.SetViewport(tt.width, tt.height)
			h := tt.size / 2
			obj := cube("logo", math.Vec3{X: -h, Y: -h, Z: -h}, math.Vec3{X: h, Y: h, Z: h})

			res := Fit(cam, obj, tt.margin)

			// At d/margin the half-extent subtends exactly the half-fov on the tighter axis.
			unmargined := float64(res.Distance / tt.margin)
			halfTan := gomath.Tan(float64(math.Radians(tt.fov)) / 2)
			aspect := float64(cam.Aspect)
			got := float64(h) / unmargined
			want := halfTan
			if aspect < 1 {
				want = halfTan * aspect
			}
			if !near(got, want, 1e-4) {
				t.Errorf("half-extent/distance = %v, want %v (aspect %v)", got, want, aspect)
			}
		})
	}
}

func TestFitIsIdempotent(t *testing.T) {
	cam := camera.NewPerspective(35, 1, 0.1, 500)
	cam.SetViewport(1280, 720)

	rig := scene.NewNode("rig")
	rig.Rotation = math.Vec3{X: gomath.Pi / 2, Y: gomath.Pi}
	obj := cube("logo", math.Vec3{X: 3, Y: 1, Z: -2}, math.Vec3{X: 7, Y: 2, Z: 0})
	rig.Add(obj)

	first := Fit(cam, obj, DefaultMargin)
	pos := obj.Position
	second := Fit(cam, obj, DefaultMargin)

	if !near(float64(first.Distance), float64(second.Distance), 1e-5) {
		t.Errorf("distance changed between fits: %v then %v", first.Distance, second.Distance)
	}
	if d := obj.Position.Sub(pos).Length(); d > 1e-5 {
		t.Errorf("re-centering moved an already centered object by %v", d)
	}
}

func TestFitRecentersOnCentroid(t *testing.T) {
	cam := camera.NewPerspective(35, 1, 0.1, 500)
	obj := cube("logo", math.Vec3{X: 3, Y: 1, Z: -2}, math.Vec3{X: 7, Y: 2, Z: 0})

	Fit(cam, obj, DefaultMargin)

	c := obj.WorldBounds().Center()
	if c.Length() > 1e-5 {
		t.Errorf("centroid after fit = %v, want origin", c)
	}
	if obj.Position != (math.Vec3{X: -5, Y: -1.5, Z: 1}) {
		t.Errorf("position = %v, want (-5, -1.5, 1)", obj.Position)
	}
}

func TestFitDegenerateBounds(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer logger.Replace(zap.New(core))()

	cam := camera.NewPerspective(35, 1, 0.1, 500)

	empty := scene.NewNode("empty")
	res := Fit(cam, empty, DefaultMargin)
	if !res.Degenerate {
		t.Error("empty node should be reported as degenerate")
	}
	if res.Distance <= 0 || gomath.IsInf(float64(res.Distance), 0) || gomath.IsNaN(float64(res.Distance)) {
		t.Fatalf("distance = %v, want a small positive value", res.Distance)
	}
	if want := Distance(MinExtent, 35, 1, DefaultMargin); res.Distance != want {
		t.Errorf("distance = %v, want %v", res.Distance, want)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		t.Errorf("clip planes = %v/%v, want 0 < near < far", cam.Near, cam.Far)
	}

	if logs.FilterMessage("degenerate bounds, using minimum extent").Len() != 1 {
		t.Errorf("expected one degenerate-bounds warning, got %d entries", logs.Len())
	}

	point := cube("point", math.Vec3{X: 1, Y: 1, Z: 1}, math.Vec3{X: 1, Y: 1, Z: 1})
	if res := Fit(cam, point, DefaultMargin); !res.Degenerate {
		t.Error("zero-volume point should be reported as degenerate")
	}
}

func TestDistanceClampsInputs(t *testing.T) {
	base := Distance(2, 35, 1, 1)
	if got := Distance(2, 35, 1, 0.5); got != base {
		t.Errorf("margin below 1 should act as 1: got %v, want %v", got, base)
	}
	if got := Distance(2, 35, 0, 1); got != base {
		t.Errorf("aspect 0 should act as 1: got %v, want %v", got, base)
	}
	if got := Distance(0, 35, 1, 1); got <= 0 {
		t.Errorf("zero size should still give a positive distance, got %v", got)
	}
}
