// Package lighting provides the key light and environment ambient term for the teaser scene.
package lighting

import "math"

// Directional is a light infinitely far away, shining along -Direction.
type Directional struct {
	// Direction points from the scene towards the light (normalized).
	Direction [3]float32
	Color     [3]float32
	Intensity float32
}

// NewDirectional builds a white directional light from azimuth/elevation angles in degrees.
func NewDirectional(azimuth, elevation, intensity float32) Directional {
	return Directional{
		Direction: SunDirection(azimuth, elevation),
		Color:     [3]float32{1, 1, 1},
		Intensity: intensity,
	}
}

// SunDirection converts azimuth/elevation angles to a light direction vector.
// Azimuth is rotation around the Y axis (0-360), elevation is the angle above the horizon (0-90).
// Returns a normalized direction vector pointing towards the light.
func SunDirection(azimuth, elevation float32) [3]float32 {
	azRad := float64(azimuth) * math.Pi / 180.0
	elRad := float64(elevation) * math.Pi / 180.0

	x := float32(math.Cos(elRad) * math.Sin(azRad))
	y := float32(math.Sin(elRad))
	z := float32(math.Cos(elRad) * math.Cos(azRad))

	return [3]float32{x, y, z}
}

// Radiance returns Color scaled by Intensity.
func (d Directional) Radiance() [3]float32 {
	return [3]float32{d.Color[0] * d.Intensity, d.Color[1] * d.Intensity, d.Color[2] * d.Intensity}
}
