// Package input translates SDL2 events into teaser events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/logo-teaser/internal/logger"
	"github.com/Faultbox/logo-teaser/internal/motion"
)

// EventType identifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventPointerMove
	EventTilt
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int

	// Pointer position in window coordinates.
	X, Y int

	// Device tilt in degrees, derived from the accelerometer.
	Beta, Gamma float32
}

// Input handles all input processing.
type Input struct {
	events  []Event
	sensors []*sdl.Sensor
	log     *zap.Logger
}

// New creates a new input handler. With tilt set it opens every accelerometer
// SDL reports; having none is not an error.
func New(tilt bool) *Input {
	i := &Input{
		events: make([]Event, 0, 16),
		log:    logger.Named("input"),
	}
	if tilt {
		i.openAccelerometers()
	}
	return i
}

func (i *Input) openAccelerometers() {
	if err := sdl.InitSubSystem(sdl.INIT_SENSOR); err != nil {
		i.log.Debug("sensor subsystem unavailable", zap.Error(err))
		return
	}
	for idx := 0; idx < sdl.NumSensors(); idx++ {
		if sdl.SensorGetDeviceType(idx) != sdl.SENSOR_ACCEL {
			continue
		}
		if s := sdl.SensorOpen(idx); s != nil {
			i.sensors = append(i.sensors, s)
		}
	}
	i.log.Debug("accelerometers opened", zap.Int("count", len(i.sensors)))
}

// Close releases any opened sensors.
func (i *Input) Close() {
	for _, s := range i.sensors {
		s.Close()
	}
	i.sensors = nil
}

// Update polls SDL events and converts them to teaser events.
// Returns true if the teaser should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			}

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type: EventPointerMove,
				X:    int(e.X),
				Y:    int(e.Y),
			})

		case *sdl.SensorEvent:
			beta, gamma := motion.TiltFromAccel(float64(e.Data[0]), float64(e.Data[1]), float64(e.Data[2]))
			i.events = append(i.events, Event{
				Type:  EventTilt,
				Beta:  beta,
				Gamma: gamma,
			})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
