// Package motion drives the logo rig's rotation from pointer and tilt input.
//
// A Controller ingests normalized samples as they arrive and is stepped once
// per rendered frame. While samples keep coming it is ACTIVE and the rig
// follows the latest sample; after IdleTimeout without input it turns IDLE
// and the rig wiggles sinusoidally around the pose it held when input
// stopped. Every frame the rig offset is damped towards the desired offset
// with a one-pole low-pass filter, which keeps both transitions continuous.
package motion

import "time"

// DefaultTiltRange is the tilt in degrees that saturates a normalized axis.
const DefaultTiltRange float32 = 45

// Wave is a sinusoid: Amplitude * sin(Frequency * t) with t in seconds.
type Wave struct {
	Amplitude float32 `yaml:"amplitude"`
	Frequency float32 `yaml:"frequency"` // radians per second
}

// At evaluates the wave at t seconds.
func (w Wave) At(t float64) float32 {
	return w.Amplitude * sinf(float64(w.Frequency)*t)
}

// Config tunes the controller. Offsets are radians.
type Config struct {
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	Smoothing   float32       `yaml:"smoothing"` // fraction of the remaining error closed per frame, (0, 1]

	PitchStrength float32 `yaml:"pitch_strength"` // vertical input -> rotation about X
	YawStrength   float32 `yaml:"yaw_strength"`   // horizontal input -> rotation about Y
	PitchLimit    float32 `yaml:"pitch_limit"`    // |pitch offset| bound while active

	IdlePitch Wave `yaml:"idle_pitch"`
	IdleYaw   Wave `yaml:"idle_yaw"`

	// Roll runs off wall-clock time in every mode.
	Roll Wave `yaml:"roll"`
}

// DefaultConfig returns the tuning the teaser ships with. Pitch ("nodding")
// is weighted more strongly than yaw ("shaking") while following input.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:   900 * time.Millisecond,
		Smoothing:     0.06,
		PitchStrength: 0.95,
		YawStrength:   0.55,
		PitchLimit:    1.05,
		IdlePitch:     Wave{Amplitude: 0.06, Frequency: 0.5},
		IdleYaw:       Wave{Amplitude: 0.18, Frequency: 0.65},
		Roll:          Wave{Amplitude: 0.02, Frequency: 0.32},
	}
}
