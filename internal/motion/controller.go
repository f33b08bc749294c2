package motion

import (
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/logo-teaser/internal/logger"
	"github.com/Faultbox/logo-teaser/pkg/math"
)

// Mode is the controller's input state.
type Mode int

const (
	ModeActive Mode = iota
	ModeIdle
)

func (m Mode) String() string {
	if m == ModeIdle {
		return "idle"
	}
	return "active"
}

// Gate suppresses input while something else owns the screen (a modal, an overlay).
type Gate interface {
	Suppressed() bool
}

// GateFunc adapts a function to Gate.
type GateFunc func() bool

// Suppressed implements Gate.
func (f GateFunc) Suppressed() bool { return f() }

// Controller owns the rig's rotation state. It is not safe for concurrent use:
// Ingest and Step must be called from the same goroutine (the frame loop).
type Controller struct {
	cfg  Config
	base math.Vec3
	gate Gate
	log  *zap.Logger

	// offset is the current rig rotation relative to base: X pitch, Y yaw, Z roll.
	offset  math.Vec3
	desired math.Vec3

	target     math.Vec2
	lastSample time.Time

	mode      Mode
	hold      math.Vec2 // pitch/yaw offset captured on entering idle
	idleStart time.Time
	epoch     time.Time
}

// New creates a controller whose rig rests at base. The controller starts
// active with a neutral target, so it settles and then turns idle after
// IdleTimeout unless input arrives.
func New(cfg Config, base math.Vec3, now time.Time) *Controller {
	if cfg.Smoothing <= 0 || cfg.Smoothing > 1 {
		cfg.Smoothing = DefaultConfig().Smoothing
	}
	return &Controller{
		cfg:        cfg,
		base:       base,
		log:        logger.Named("motion"),
		lastSample: now,
		epoch:      now,
	}
}

// SetGate installs the input gate. A nil gate accepts every sample.
func (c *Controller) SetGate(g Gate) {
	c.gate = g
}

// Ingest records an input sample as the new target. It returns false, leaving
// the target and the last-sample time untouched, when the gate is suppressing input.
func (c *Controller) Ingest(s Sample) bool {
	if c.gate != nil && c.gate.Suppressed() {
		return false
	}
	c.target = math.Vec2{X: clampUnit(s.X), Y: clampUnit(s.Y)}
	c.lastSample = s.At
	return true
}

// Step advances the controller to now and returns the rig rotation (base + offset).
func (c *Controller) Step(now time.Time) math.Vec3 {
	c.updateMode(now)

	var desired math.Vec3
	if c.mode == ModeIdle {
		phase := now.Sub(c.idleStart).Seconds()
		desired.X = c.hold.X + c.cfg.IdlePitch.At(phase)
		desired.Y = c.hold.Y + c.cfg.IdleYaw.At(phase)
	} else {
		desired.X = math.Clamp(-c.target.Y*c.cfg.PitchStrength, -c.cfg.PitchLimit, c.cfg.PitchLimit)
		desired.Y = c.target.X * c.cfg.YawStrength
	}
	desired.Z = c.cfg.Roll.At(now.Sub(c.epoch).Seconds())

	k := c.cfg.Smoothing
	c.offset.X += (desired.X - c.offset.X) * k
	c.offset.Y += (desired.Y - c.offset.Y) * k
	c.offset.Z = desired.Z
	c.desired = desired

	return c.base.Add(c.offset)
}

// updateMode applies the timeout rule once per frame.
func (c *Controller) updateMode(now time.Time) {
	idle := now.Sub(c.lastSample) > c.cfg.IdleTimeout
	switch {
	case idle && c.mode == ModeActive:
		c.mode = ModeIdle
		c.idleStart = now
		// Continue from where the rig is, not from the raw target, so the
		// wiggle starts without a jump.
		c.hold = math.Vec2{X: c.offset.X, Y: c.offset.Y}
		c.log.Debug("input idle",
			zap.Float32("hold_pitch", c.hold.X),
			zap.Float32("hold_yaw", c.hold.Y),
		)
	case !idle && c.mode == ModeIdle:
		c.mode = ModeActive
		c.log.Debug("input active")
	}
}

// Mode returns the mode computed by the last Step.
func (c *Controller) Mode() Mode { return c.mode }

// Base returns the rest orientation.
func (c *Controller) Base() math.Vec3 { return c.base }

// Offset returns the current rotation offset from base.
func (c *Controller) Offset() math.Vec3 { return c.offset }

// Desired returns the offset the last Step was damping towards.
func (c *Controller) Desired() math.Vec3 { return c.desired }

// Hold returns the pitch/yaw offset captured at the last active-to-idle transition.
func (c *Controller) Hold() math.Vec2 { return c.hold }

// Target returns the latest accepted sample.
func (c *Controller) Target() math.Vec2 { return c.target }

// LastSample returns the time of the latest accepted sample.
func (c *Controller) LastSample() time.Time { return c.lastSample }

// Config returns the controller tuning.
func (c *Controller) Config() Config { return c.cfg }

func sinf(x float64) float32 {
	return float32(gomath.Sin(x))
}
