// Package framing places the camera so a loaded object fills the viewport.
//
// Fit re-centers the object on its bounding-box centroid, then backs the
// camera off along +Z far enough for the largest extent to fit on whichever
// viewport axis is tighter, with a margin of headroom. Clip planes scale with
// the distance so depth precision is proportional to the object's size.
package framing

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/logo-teaser/internal/engine/camera"
	"github.com/Faultbox/logo-teaser/internal/engine/scene"
	"github.com/Faultbox/logo-teaser/internal/logger"
	"github.com/Faultbox/logo-teaser/pkg/math"
)

const (
	// DefaultMargin is the headroom multiplier applied to the fitted distance.
	DefaultMargin float32 = 1.18

	// MinExtent floors the largest bounding-box extent for empty or flat-to-a-point objects.
	MinExtent float32 = 1e-3

	// clipRatio sets near = d/clipRatio and far = d*clipRatio.
	clipRatio float32 = 100
)

// Result describes the camera placement chosen by Fit.
type Result struct {
	Distance   float32
	Near       float32
	Far        float32
	Size       math.Vec3 // World-space extent of the object
	Center     math.Vec3 // World-space centroid before re-centering
	Degenerate bool      // Largest extent was below MinExtent
}

// Fit re-centers obj and moves cam so obj fits the viewport with the given margin.
// Calling it again with the same object and viewport yields the same camera state.
func Fit(cam *camera.Perspective, obj *scene.Node, margin float32) Result {
	world := obj.WorldBounds()
	res := Result{
		Size:   world.Size(),
		Center: world.Center(),
	}

	// Move the object so its centroid sits on its parent's origin; the rig
	// then rotates it about the visual centre.
	local := obj.ParentBounds()
	if !local.IsEmpty() {
		obj.Position = obj.Position.Sub(local.Center())
	}

	maxSize := res.Size.MaxComponent()
	if maxSize < MinExtent || world.IsEmpty() {
		logger.Warn("degenerate bounds, using minimum extent",
			zap.String("object", obj.Name),
			zap.Float32("max_size", maxSize),
		)
		maxSize = MinExtent
		res.Degenerate = true
	}

	res.Distance = Distance(maxSize, cam.FOV, cam.Aspect, margin)
	res.Near = res.Distance / clipRatio
	res.Far = res.Distance * clipRatio

	cam.Position = math.Vec3{X: 0, Y: 0, Z: res.Distance}
	cam.Near = res.Near
	cam.Far = res.Far
	cam.LookAt(math.Vec3{})

	logger.Debug("camera fitted",
		zap.String("object", obj.Name),
		zap.Float32("distance", res.Distance),
		zap.Float32("near", res.Near),
		zap.Float32("far", res.Far),
		zap.Float32("aspect", cam.Aspect),
	)
	return res
}

// Distance returns the camera distance at which an object whose largest extent
// is maxSize fits a viewport with the given vertical fov (degrees) and aspect.
// Margins below 1 are raised to 1 and non-positive aspects are treated as 1.
func Distance(maxSize, fov, aspect, margin float32) float32 {
	if margin < 1 {
		margin = 1
	}
	if aspect <= 0 {
		aspect = 1
	}
	maxSize = max(maxSize, MinExtent)

	fovRad := float64(math.Radians(fov))
	fitHeight := float64(maxSize) / 2 / gomath.Tan(fovRad/2)
	fitWidth := fitHeight / float64(aspect)
	return margin * float32(gomath.Max(fitHeight, fitWidth))
}
