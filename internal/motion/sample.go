package motion

import (
	gomath "math"
	"time"

	"github.com/Faultbox/logo-teaser/pkg/math"
)

// Source identifies where an input sample came from.
type Source int

const (
	SourcePointer Source = iota
	SourceTilt
)

func (s Source) String() string {
	switch s {
	case SourcePointer:
		return "pointer"
	case SourceTilt:
		return "tilt"
	default:
		return "unknown"
	}
}

// Sample is a normalized two-axis input reading.
// X is horizontal (right positive), Y is vertical (down positive), both in [-1, 1].
type Sample struct {
	X, Y   float32
	At     time.Time
	Source Source
}

// PointerSample normalizes a pointer position within a width x height surface.
// The surface centre maps to (0, 0) and the edges to +/-1.
func PointerSample(x, y float32, width, height int, at time.Time) Sample {
	w := float32(max(width, 1))
	h := float32(max(height, 1))
	return Sample{
		X:      clampUnit((x/w - 0.5) * 2),
		Y:      clampUnit((y/h - 0.5) * 2),
		At:     at,
		Source: SourcePointer,
	}
}

// TiltSample normalizes device-orientation angles (degrees) into the pointer range.
// gamma (left/right tilt) drives X and beta (front/back tilt) drives Y; each is divided
// by rangeDeg and clamped, so a tilt of rangeDeg or more saturates the axis.
func TiltSample(beta, gamma, rangeDeg float32, at time.Time) Sample {
	if rangeDeg <= 0 {
		rangeDeg = DefaultTiltRange
	}
	return Sample{
		X:      clampUnit(gamma / rangeDeg),
		Y:      clampUnit(beta / rangeDeg),
		At:     at,
		Source: SourceTilt,
	}
}

// TiltFromAccel derives device-orientation angles in degrees from an
// accelerometer gravity vector:
//
//	beta  = atan2(ay, az)
//	gamma = atan2(-ax, sqrt(ay^2 + az^2))
func TiltFromAccel(ax, ay, az float64) (beta, gamma float32) {
	b := gomath.Atan2(ay, az)
	g := gomath.Atan2(-ax, gomath.Sqrt(ay*ay+az*az))
	return float32(b * 180 / gomath.Pi), float32(g * 180 / gomath.Pi)
}

func clampUnit(v float32) float32 {
	if v != v { // NaN
		return 0
	}
	return math.Clamp(v, -1, 1)
}
