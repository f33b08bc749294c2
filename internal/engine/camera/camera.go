// Package camera provides the perspective camera the teaser scene is viewed through.
package camera

import (
	"github.com/Faultbox/logo-teaser/pkg/math"
)

// Perspective is a pinhole camera with a vertical field of view.
// Position and Target are in world space; the up vector is +Y.
type Perspective struct {
	FOV    float32 // Vertical field of view, degrees
	Aspect float32 // Width / height
	Near   float32
	Far    float32

	Position math.Vec3
	Target   math.Vec3
}

// NewPerspective creates a camera looking down -Z from (0, 0, 5).
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	return &Perspective{
		FOV:      fov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
		Position: math.Vec3{Z: 5},
	}
}

// SetViewport updates the aspect ratio from a pixel size. Sizes below 1 are clamped to 1.
func (c *Perspective) SetViewport(width, height int) {
	width = max(width, 1)
	height = max(height, 1)
	c.Aspect = float32(width) / float32(height)
}

// LookAt points the camera at target.
func (c *Perspective) LookAt(target math.Vec3) {
	c.Target = target
}

// Distance returns the distance from the camera to its target.
func (c *Perspective) Distance() float32 {
	return c.Position.Sub(c.Target).Length()
}

// ProjectionMatrix returns the perspective projection for the current fov, aspect and clip planes.
func (c *Perspective) ProjectionMatrix() math.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(math.Radians(c.FOV), aspect, c.Near, c.Far)
}

// ViewMatrix returns the view matrix for this camera.
func (c *Perspective) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position, c.Target, up)
}

// ViewProjection returns projection * view.
func (c *Perspective) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}
